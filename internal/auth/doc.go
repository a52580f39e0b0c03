// Package auth provides bearer-token authorisation for the address book API.
//
// Tokens are HS256 JWTs carrying a subject and a role. Roles map to a
// static permission set:
//   - reader: list books and contacts, subscribe to the event stream
//   - editor: everything a reader can do plus create and remove books and contacts
package auth
