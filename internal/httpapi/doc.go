// Package httpapi exposes URL redaction over HTTP so that logging and
// telemetry pipelines can sanitize payloads before forwarding them.
//
// Routes:
//
//	POST /v1/redact        {"text": "...", "keepExtensionUrls": false}
//	POST /v1/redact/json   any JSON document; ?keepExtensionUrls=true
//	GET  /healthz
//	GET  /metrics
package httpapi
