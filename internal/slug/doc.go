// Package slug validates and generates the short identifiers used as link keys.
//
// Two alphabets are in play:
//
//   - Whitelist: the 62 ASCII letters and digits accepted for user-chosen slugs.
//   - Alphabet: a 57-symbol subset with the look-alike characters 0, O, 1, I and l
//     removed, used for generated slugs.
//
// Generated slugs are not secrets. Anyone who needs unguessable links must raise the
// slug length or put authorization in front of the redirect.
package slug
