package feed

import (
	"time"

	"evfeed/markup"
	"evfeed/models"
	"evfeed/schema"

	ics "github.com/arran4/golang-ical"
)

// Calendar serializes an already filtered and sorted event list as an
// iCalendar document, one VEVENT per listing.
func Calendar(events []models.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for _, ev := range events {
		entry := cal.AddEvent(ev.ID + "@eventbrite.com")
		entry.SetDtStampTime(now)
		entry.SetSummary(ev.Name.Text)
		entry.SetDescription(markup.Excerpt(ev.Description.Text, markup.ExcerptLimit))
		entry.SetURL(schema.EventURL(ev.ID))

		if start, err := ev.Start.UTCTime(); err == nil {
			entry.SetStartAt(start)
		} else if start, err := ev.Start.LocalTime(); err == nil {
			entry.SetStartAt(start)
		}
		if end, err := ev.End.UTCTime(); err == nil {
			entry.SetEndAt(end)
		} else if end, err := ev.End.LocalTime(); err == nil {
			entry.SetEndAt(end)
		}

		if ev.OnlineEvent {
			entry.SetLocation("Online")
		} else if ev.Venue != nil {
			location := ev.Venue.Name
			if line := addressLine(ev.Venue.Address); line != "" {
				location += ", " + line
			}
			entry.SetLocation(location)
		}
	}

	return cal.Serialize()
}
