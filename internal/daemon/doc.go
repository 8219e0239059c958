// Package daemon ties the record store, resolution engine, and batch
// orchestrator into a single lifecycle behind an HTTP API, with flock-based
// locking to prevent multiple instances from sharing one cache database.
package daemon
