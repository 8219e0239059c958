// Package api defines the transport-level request and response types for the
// daemon's HTTP surface and the service layer that backs them.
package api
