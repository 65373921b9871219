// Package middleware provides the HTTP middleware of the lab server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip compression of JSON and text responses
package middleware
