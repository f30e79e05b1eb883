// Package ipc provides JSON-RPC over a Unix domain socket between the CLI
// and the daemon. Generation control lives here; library reads and writes go
// straight to the store through the api package.
package ipc
