// Package memory provides in-memory adapters for configuration and
// snapshot persistence. They keep nothing across restarts and back the
// "memory" storage backend and the service tests.
package memory
