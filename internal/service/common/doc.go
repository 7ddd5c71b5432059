// Package common holds helpers shared by the alarm clock binaries.
//
// It provides a gRPC client for the AlarmClock service with default call
// timeouts and detection of the local actor (hostname and username) that
// is sent along with every request.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
