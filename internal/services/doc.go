// Package services contains the application services sitting between
// the HTTP transport and the analysis engine: record session management
// with content-addressed caching, and service health reporting.
package services
