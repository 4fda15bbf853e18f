// ABOUTME: Shared-secret token verifiers: plain token and bcrypt hash
// ABOUTME: AnyVerifier combines the verifiers built from configuration

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/lnk/internal/config"
)

// SharedSubject is the subject reported for shared-secret tokens
const SharedSubject = "token"

// StaticVerifier accepts exactly one configured token
type StaticVerifier struct {
	token []byte
}

// NewStaticVerifier returns a verifier for token
func NewStaticVerifier(token string) *StaticVerifier {
	return &StaticVerifier{token: []byte(token)}
}

// Verify compares token in constant time
func (v *StaticVerifier) Verify(token string) (string, error) {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), v.token) != 1 {
		return "", ErrInvalidToken
	}
	return SharedSubject, nil
}

// HashVerifier accepts the token whose bcrypt hash is configured
type HashVerifier struct {
	hash []byte
}

// NewHashVerifier returns a verifier for a bcrypt hash
func NewHashVerifier(hash string) (*HashVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("parsing token hash: %w", err)
	}
	return &HashVerifier{hash: []byte(hash)}, nil
}

// Verify checks token against the stored hash
func (v *HashVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
		return "", ErrInvalidToken
	}
	return SharedSubject, nil
}

// HashToken returns the bcrypt hash to put in auth.token_hash
func HashToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(h), nil
}

// AnyVerifier accepts a token if any of its verifiers does
type AnyVerifier []TokenVerifier

// Verify returns the first successful verification. Expiry is reported over
// a generic invalid-token error so callers can tell the user why.
func (a AnyVerifier) Verify(token string) (string, error) {
	err := ErrInvalidToken
	for _, v := range a {
		sub, verr := v.Verify(token)
		if verr == nil {
			return sub, nil
		}
		if errors.Is(verr, ErrExpiredToken) {
			err = verr
		}
	}
	return "", err
}

// FromConfig builds a verifier accepting every credential configured in cfg
func FromConfig(cfg config.AuthConfig) (TokenVerifier, error) {
	var verifiers AnyVerifier
	if cfg.Token != "" {
		verifiers = append(verifiers, NewStaticVerifier(cfg.Token))
	}
	if cfg.TokenHash != "" {
		hv, err := NewHashVerifier(cfg.TokenHash)
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, hv)
	}
	if cfg.JWTSecret != "" {
		jv, err := NewJWTVerifier([]byte(cfg.JWTSecret))
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, jv)
	}
	if len(verifiers) == 0 {
		return nil, errors.New("no credentials configured")
	}
	return verifiers, nil
}
