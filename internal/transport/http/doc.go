// Package http exposes the record analysis API over chi: bundle upload,
// scaled series, frequency estimates, RMS transforms, digital event
// intervals, exports, health and metrics. Responses are JSON via
// go-chi/render; failures are RFC 7807 problem documents.
package http
