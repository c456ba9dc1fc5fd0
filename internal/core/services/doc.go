// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Engine owns the retrieval state: the vector index, the chunk
// records parallel to it and the document registry. One Engine is
// created per process and shared by every driving adapter.
//
// Services are pure Go with no CGO.
package services
