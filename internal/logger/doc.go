// Package logger wraps zap for the alarm clock binaries.
//
// A global sugared logger writes to the console and, optionally, to a JSON
// log file. Loggers travel inside context.Context so every component can
// log with its own name and key-value pairs (see WithName and WithKV).
package logger
