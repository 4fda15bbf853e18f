// Package auth verifies the access tokens required to create links.
//
// Three kinds of credential can be configured, and any of them is accepted:
//
//   - auth.token: a shared secret compared in constant time
//   - auth.token_hash: a bcrypt hash of the shared secret
//   - auth.jwt_secret: an HS256 key; tokens carry a "sub" claim and optional expiry
//
// FromConfig combines whatever is configured into one TokenVerifier.
//
// The HTML form passes the token as a form field and is checked directly by the
// handler. The JSON API uses HTTPAuthMiddleware with an Authorization: Bearer header.
// Redirects and info pages are public.
package auth
