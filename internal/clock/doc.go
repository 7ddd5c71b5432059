// Package clock abstracts wall-clock time for the scheduler.
//
// Real delegates to the time package. Fake is a manually advanced clock for
// tests: timers fire only when Set or Advance moves time past their deadline.
package clock
