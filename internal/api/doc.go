// Package api implements the HTTP REST API and WebSocket server for the
// address book service.
//
// This package provides:
//   - REST endpoints for address books and contacts
//   - Registry statistics and a health endpoint
//   - WebSocket hub broadcasting registry change events
//   - Optional JWT bearer authorisation with reader/editor roles
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Error responses
//
// Every error is a JSON object {"status", "code", "message"}. Validation
// failures return 400 validation_error with the registry's message
// (for example "Name is mandatory"); unknown books return 404 not_found
// with "Address book not found: <name>".
package api
