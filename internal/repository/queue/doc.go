// Package queue implements the pending alarm queue.
//
// Queue is a min-heap ordered by fire time, then insertion sequence. It is
// not safe for concurrent use: the scheduler owns it and serializes access.
package queue
