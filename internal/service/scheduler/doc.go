// Package scheduler runs the alarm clock.
//
// A Scheduler owns the pending queue. Request handlers call Submit, Cancel
// and Upcoming, which validate input, mutate the queue under a lock and wake
// the loop. Run waits for the earliest alarm, fires it through the
// notification sink outside the lock and re-arms repeating alarms a day later.
package scheduler
