// Package client implements the alarm-clock command line operations.
//
// Each operation loads the settings, dials the alarm server with the local
// actor attached and prints a short human-readable result.
package client
