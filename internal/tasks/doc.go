// Package tasks runs a scan end to end: it reads every target into blocks,
// extracts task descriptions from them and returns one deduplicated Result.
//
// The CLI and the HTTP API both go through Scanner so that they agree on
// placeholder handling, ordering and logging.
package tasks
