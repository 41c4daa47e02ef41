package schema

import (
	"strings"
	"testing"

	"evfeed/models"
)

func intp(v int) *int { return &v }

func baseEvent() models.Event {
	return models.Event{
		ID:      "123",
		Name:    models.LocalizedText{Text: "Spring Gala"},
		Created: "2025-01-15T10:00:00Z",
		Start:   models.When{Local: "2025-06-01T19:00:00", UTC: "2025-06-01T23:00:00Z"},
		End:     models.When{Local: "2025-06-01T22:00:00", UTC: "2025-06-02T02:00:00Z"},
		Listed:  true,
		Organizer: &models.Organizer{
			Name: "Friends of the Hall",
			URL:  "https://example.org",
		},
	}
}

func TestForEventOnline(t *testing.T) {
	t.Parallel()

	ev := baseEvent()
	ev.OnlineEvent = true

	doc := ForEvent(ev)

	if doc.EventAttendanceMode != AttendanceOnline {
		t.Fatalf("expected online attendance mode, got %s", doc.EventAttendanceMode)
	}
	if doc.Location.Type != "VirtualLocation" {
		t.Fatalf("expected VirtualLocation, got %s", doc.Location.Type)
	}
	if doc.Location.URL != "https://www.eventbrite.com/e/123" {
		t.Fatalf("unexpected location url %s", doc.Location.URL)
	}
	if doc.Location.Address != nil {
		t.Fatalf("virtual locations carry no postal address")
	}
	if doc.StartDate != "2025-06-01T23:00:00Z" || doc.EndDate != "2025-06-02T02:00:00Z" {
		t.Fatalf("expected UTC dates, got %s / %s", doc.StartDate, doc.EndDate)
	}
	if doc.Performer != "Friends of the Hall" {
		t.Fatalf("unexpected performer %s", doc.Performer)
	}
}

func TestForEventOffline(t *testing.T) {
	t.Parallel()

	ev := baseEvent()
	ev.Venue = &models.Venue{
		Name: "Grand Hall",
		Address: models.Address{
			Address1:   "1 Main St",
			Address2:   "Suite 4",
			City:       "Springfield",
			Region:     "IL",
			PostalCode: "62701",
			Country:    "US",
		},
	}

	doc := ForEvent(ev)

	if doc.EventAttendanceMode != AttendanceOffline {
		t.Fatalf("expected offline attendance mode, got %s", doc.EventAttendanceMode)
	}
	if doc.Location.Type != "Place" || doc.Location.Name != "Grand Hall" {
		t.Fatalf("unexpected location %+v", doc.Location)
	}
	addr := doc.Location.Address
	if addr == nil {
		t.Fatalf("expected a postal address")
	}
	if addr.StreetAddress != "1 Main St, Suite 4" {
		t.Fatalf("unexpected street address %q", addr.StreetAddress)
	}
	if addr.AddressLocality != "Springfield" || addr.AddressRegion != "IL" {
		t.Fatalf("unexpected locality %q / region %q", addr.AddressLocality, addr.AddressRegion)
	}
}

func TestForEventOffers(t *testing.T) {
	t.Parallel()

	ev := baseEvent()
	ev.OnlineEvent = true
	ev.TicketClasses = []models.TicketClass{
		{
			Name:         "General Admission",
			Cost:         &models.Cost{Currency: "EUR", Value: 2000, MajorValue: "20.00"},
			Fee:          &models.Cost{Currency: "EUR", Value: 500, MajorValue: "5.00"},
			OnSaleStatus: "AVAILABLE",
			SalesEnd:     "2025-05-30T00:00:00Z",
		},
		{
			// Hidden classes still get offers, unlike the card price range.
			Name:          "Comp",
			Hidden:        true,
			OnSaleStatus:  "UNAVAILABLE",
			QuantityTotal: intp(5),
		},
	}

	doc := ForEvent(ev)

	if len(doc.Offers) != 2 {
		t.Fatalf("expected offers for every ticket class, got %d", len(doc.Offers))
	}

	ga := doc.Offers[0]
	if ga.Price != "25.00" {
		t.Fatalf("expected display price 25.00, got %s", ga.Price)
	}
	if ga.PriceCurrency != "EUR" {
		t.Fatalf("expected EUR, got %s", ga.PriceCurrency)
	}
	if ga.ValidFrom != "2025-01-15T10:00:00Z" {
		t.Fatalf("validFrom should be the event creation time, got %s", ga.ValidFrom)
	}
	if ga.ValidThrough != "2025-05-30T00:00:00Z" {
		t.Fatalf("validThrough should be the class sales end, got %s", ga.ValidThrough)
	}
	if ga.Availability != InStock {
		t.Fatalf("expected InStock, got %s", ga.Availability)
	}

	comp := doc.Offers[1]
	if comp.Price != "0.00" {
		t.Fatalf("expected 0.00 for a class with no cost, got %s", comp.Price)
	}
	if comp.PriceCurrency != "USD" {
		t.Fatalf("expected USD default, got %s", comp.PriceCurrency)
	}
	if comp.ValidThrough != "2025-06-01T23:00:00Z" {
		t.Fatalf("validThrough should fall back to the event start, got %s", comp.ValidThrough)
	}
	if comp.Availability != SoldOut {
		t.Fatalf("expected SoldOut for a non-AVAILABLE class, got %s", comp.Availability)
	}
}

func TestItemList(t *testing.T) {
	t.Parallel()

	list := NewItemList()
	list.Append(EventURL("1"))
	list.Append(EventURL("2"))

	if len(list.ItemListElement) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.ItemListElement))
	}
	if list.ItemListElement[0].Position != 1 || list.ItemListElement[1].Position != 2 {
		t.Fatalf("positions must be 1-based and sequential: %+v", list.ItemListElement)
	}

	doc, err := Marshal(list)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(doc, `"https://www.eventbrite.com/e/1"`) {
		t.Fatalf("serialized list is missing the url: %s", doc)
	}
	if strings.Contains(doc, `&`) || strings.Contains(doc, `\/`) {
		t.Fatalf("urls must serialize unescaped: %s", doc)
	}
}

func TestMarshalKeepsDescriptionFlat(t *testing.T) {
	t.Parallel()

	ev := baseEvent()
	ev.OnlineEvent = true
	ev.Description = models.LocalizedText{Text: "Line one\nLine two end"}

	doc := ForEvent(ev)
	if doc.Description != "Line one Line two end" {
		t.Fatalf("description not normalized: %q", doc.Description)
	}
}
