// Package alarm contains the core domain types of the alarm clock.
//
// An Alarm is identified inside the pending queue by its Handle: the fire
// time plus a sequence number that breaks ties between alarms due in the
// same minute. The package also owns the input time layout, the display
// format of the upcoming alarms list and the error taxonomy shared by the
// scheduler and its transports.
package alarm
