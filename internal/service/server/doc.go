// Package server runs the alarm-clock-server process.
//
// Run loads the settings, builds the notification sinks and the scheduler,
// and supervises the scheduler loop, the gRPC API, the optional web page,
// the briefing refresher and the settings watcher in one errgroup.
package server
