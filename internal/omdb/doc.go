// Package omdb wraps the external rating provider's three lookup modes:
// exact title, canonical id, and ranked free-text search with a follow-up
// detail fetch.
package omdb
