// Package handler is the HTTP layer: it binds and validates request
// payloads, calls the synchronization services, and writes the response
// envelopes. No business logic lives here.
package handler
