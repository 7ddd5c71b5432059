// Package briefing fetches the weather forecast and news headlines shown
// next to the alarms.
//
// Client talks to OpenWeatherMap and NewsAPI behind a rate limiter.
// Refresher re-fetches on a cron schedule, keeps the latest Snapshot and
// posts a notification each time a source is updated.
package briefing
