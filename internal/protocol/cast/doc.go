// Package cast owns the envelope model shared by every channel.
//
// Ownership boundary:
// - envelope construction and field access
// - protobuf wire encoding of envelopes
//
// Payload contents are opaque here; channels interpret them.
package cast
