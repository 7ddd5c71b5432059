// Package notify delivers fired and cancelled alarm events.
//
// Sink is the capability the scheduler depends on. The package provides a
// log sink, an in-memory notification feed for the web page and the RPC
// API, a text-to-speech sink that shells out to an external command and
// Multi, which fans one event out to several sinks.
package notify
