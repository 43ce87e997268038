package messages

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// relTimeSteps пороги относительного времени; Format берётся из локали по ключу
var relTimeSteps = []struct {
	d     time.Duration
	key   string
	divBy time.Duration
}{
	{time.Second, "reltime-now", time.Second},
	{2 * time.Second, "reltime-second", 1},
	{time.Minute, "reltime-seconds", time.Second},
	{2 * time.Minute, "reltime-minute", 1},
	{time.Hour, "reltime-minutes", time.Minute},
	{2 * time.Hour, "reltime-hour", 1},
	{humanize.Day, "reltime-hours", time.Hour},
	{2 * humanize.Day, "reltime-day", 1},
	{humanize.Week, "reltime-days", humanize.Day},
	{2 * humanize.Week, "reltime-week", 1},
	{humanize.Month, "reltime-weeks", humanize.Week},
	{2 * humanize.Month, "reltime-month", 1},
	{humanize.Year, "reltime-months", humanize.Month},
	{2 * humanize.Year, "reltime-year", 1},
	{humanize.LongTime, "reltime-years", humanize.Year},
	{math.MaxInt64, "reltime-long", 1},
}

// RelTime относительное время на языке каталога, например "vor 3 Stunden"
func (c *Catalog) RelTime(then, now time.Time) string {
	magnitudes := make([]humanize.RelTimeMagnitude, 0, len(relTimeSteps))
	for _, step := range relTimeSteps {
		magnitudes = append(magnitudes, humanize.RelTimeMagnitude{
			D:      step.d,
			Format: c.formats[step.key],
			DivBy:  step.divBy,
		})
	}
	return humanize.CustomRelTime(then, now, c.formats[RelTimeAgo], c.formats[RelTimeFromNow], magnitudes)
}
