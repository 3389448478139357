// Package secrets detects and redacts credentials in text before it leaves
// the machine.
//
// Scanned documents routinely contain pasted tokens and connection strings.
// The agents package runs every prompt through a Scrubber before calling an
// LLM provider, and the HTTP API scrubs request bodies it echoes back.
// Findings report rule IDs and positions only, never the matched value.
package secrets
