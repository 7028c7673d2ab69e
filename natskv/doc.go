// Package natskv resolves configuration values from a NATS JetStream
// key-value bucket.
//
// Connect opens a connection onto one existing bucket; Client.Resolver
// wraps it as a chain member that reads variable names as KV keys and
// owns the connection's lifecycle. Keys that do not exist in the bucket,
// and names the KV key grammar cannot express, resolve to NotFound so
// lower-priority sources get their turn; connectivity and permission
// failures surface as backend errors and stop the chain.
package natskv
