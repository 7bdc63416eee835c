// Package ankiconnect is a client for the AnkiConnect add-on's JSON
// automation API. Every request is bounded by a timeout, and a circuit
// breaker stops hammering a server that has gone away.
package ankiconnect
