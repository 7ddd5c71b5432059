// Package web serves the alarm clock page.
//
// GET / accepts the form fields alarm, alarm_label, alarm_repeat and
// cancel_alarm, applies them through the scheduler and renders the upcoming
// alarms, the notification feed and the weather and news briefing.
package web
