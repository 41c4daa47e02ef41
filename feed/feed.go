package feed

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"evfeed/models"
	"evfeed/schema"
)

// How far in the past an event may start and still show. Keeps stale cached
// events out without hiding events that are currently happening.
const recencyWindow = 90 * time.Minute

// Fetcher is the slice of the upstream client the assembler needs.
type Fetcher interface {
	FetchEvents(ctx context.Context, organization string) ([]models.Event, error)
}

type Options struct {
	AffiliateCode string
}

// Result is one rendered feed: the card grid (or the no-events placeholder)
// plus the aggregate ItemList document. Derived for a single build, never
// shared or mutated.
type Result struct {
	HTML       string `json:"html"`
	ListSchema string `json:"schema"`
	Shown      int    `json:"shown"`
	Skipped    int    `json:"skipped"`
}

const placeholder = `<p class="lead">There are currently no upcoming events posted for this section. Please check back soon.</p>`

const gridOpen = `<script src="https://cdnjs.cloudflare.com/ajax/libs/twitter-bootstrap/3.4.1/js/bootstrap.min.js" integrity="sha512-oBTprMeNEKCnqfuqKd6sbvFzmFQtlXS3e0C/RGFV0hD6QzhHV+ODfaQbAlmY6/q0ubbwlAM/nCJjkrgA3waLzg==" crossorigin="anonymous"></script>
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/twitter-bootstrap/3.4.1/css/bootstrap.min.css" integrity="sha512-Dop/vW3iOtayerlYAqCgkVr2aTr2ErwwTYOvRFUpzl2VhCMJyjQF0Q9TjUXIo6JhuM/3i0vVEt2e/7QQmnHQqw==" crossorigin="anonymous" />
<section class="container-fluid">
<div class="row">
`

const gridClose = `</div>
</section>`

// Layout-break markers after every 3rd and every 2nd shown card. Independent
// triggers; card six gets both.
const (
	clearfixLarge = `<div class="clearfix visible-lg-block"></div>`
	clearfixSmall = `<div class="clearfix visible-sm-block visible-md-block"></div>`
)

// Visible filters to listed events starting inside the recency window and
// sorts them by start time. The sort is stable: events sharing a start keep
// their upstream order. Events failing shape validation are dropped and
// counted.
func Visible(events []models.Event, now time.Time) (kept []models.Event, skipped int) {
	cutoff := now.Add(-recencyWindow)
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			log.Println("skipping unrenderable event:", err)
			skipped++
			continue
		}
		if !ev.Listed {
			continue
		}
		start, _ := ev.Start.LocalTime()
		if start.Before(cutoff) {
			continue
		}
		kept = append(kept, ev)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		si, _ := kept[i].Start.LocalTime()
		sj, _ := kept[j].Start.LocalTime()
		return si.Before(sj)
	})
	return kept, skipped
}

// Build runs the whole pipeline: fetch, filter, sort, render. A fetch failure
// aborts the build; no partial feed is ever produced.
func Build(ctx context.Context, f Fetcher, organization string, now time.Time, opts Options) (*Result, error) {
	events, err := f.FetchEvents(ctx, organization)
	if err != nil {
		return nil, err
	}
	visible, skipped := Visible(events, now)
	res := assemble(visible, opts)
	res.Skipped += skipped
	return res, nil
}

// Unavailable is the terminal output for a failed fetch: the placeholder and
// an empty item list.
func Unavailable() *Result {
	res := assemble(nil, Options{})
	return res
}

func assemble(events []models.Event, opts Options) *Result {
	var b strings.Builder
	b.WriteString(gridOpen)

	list := schema.NewItemList()
	shown := 0
	skipped := 0

	for _, ev := range events {
		card, err := renderCard(ev, opts)
		if err != nil {
			log.Println("skipping unrenderable event:", err)
			skipped++
			continue
		}
		b.WriteString(card)
		b.WriteString("\n")

		if (shown+1)%3 == 0 {
			b.WriteString(clearfixLarge)
			b.WriteString("\n")
		}
		if (shown+1)%2 == 0 {
			b.WriteString(clearfixSmall)
			b.WriteString("\n")
		}

		shown++
		list.Append(schema.EventURL(ev.ID))
	}

	if shown == 0 {
		b.WriteString(placeholder)
		b.WriteString("\n")
	}
	b.WriteString(gridClose)

	listJSON, err := schema.Marshal(list)
	if err != nil {
		// An ItemList of plain strings cannot fail to marshal; keep the feed
		// up with an empty document if it somehow does.
		log.Println("marshaling item list:", err)
		listJSON = `{"@context":"https://schema.org","@type":"ItemList","itemListElement":[]}`
	}

	return &Result{
		HTML:       b.String(),
		ListSchema: listJSON,
		Shown:      shown,
		Skipped:    skipped,
	}
}

// Page wraps a result into a standalone HTML document with the aggregate
// ld+json block after the grid.
func (res *Result) Page() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<title>Upcoming Events</title>\n</head>\n<body>\n")
	b.WriteString(res.HTML)
	b.WriteString("\n<script type=\"application/ld+json\">")
	b.WriteString(res.ListSchema)
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}
