// Package session owns the receiver connection.
//
// Ownership boundary:
// - TLS dial and certificate policy
// - envelope framing over the connection
// - the inbound read/dispatch loop
//
// Retry and reconnect policy belong to the caller.
package session
