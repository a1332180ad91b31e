// Package server exposes the load-order solver over HTTP.
//
// # Routes
//
//	POST /v1/plans       solve a descriptor document
//	GET  /v1/plans       list recent resolutions (requires a history store)
//	GET  /v1/plans/{id}  fetch one resolution (requires a history store)
//	POST /v1/lint        lint a descriptor document
//	GET  /healthz        liveness and build version
//	GET  /metrics        Prometheus metrics, when a handler is configured
//
// Errors are JSON objects {"code","message"}. Malformed input maps to 400,
// resolution failures to 422 and unknown resolutions to 404.
//
// Every response carries an X-Request-ID header. A valid UUID sent by the
// client is echoed; otherwise a new one is generated.
package server
