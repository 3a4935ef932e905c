// Package channel owns the namespace-scoped sub-protocol contract.
//
// Ownership boundary:
// - Channel interface and embeddable Base binding
// - text payload decoding and type classification
// - inbound dispatch across registered channels
//
// A Channel holds no session state. Sub-protocols live in subpackages
// (connection, heartbeat) and share the transport through a Sender.
package channel
