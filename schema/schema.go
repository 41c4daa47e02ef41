package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"evfeed/markup"
	"evfeed/models"
)

// schema.org document types for the event cards and the aggregate list. Typed
// structs serialized once at the boundary, so the output is testable by value.

const (
	Context = "https://schema.org"

	AttendanceOnline  = "https://schema.org/OnlineEventAttendanceMode"
	AttendanceOffline = "https://schema.org/OfflineEventAttendanceMode"
	StatusScheduled   = "https://schema.org/EventScheduled"
	InStock           = "https://schema.org/InStock"
	SoldOut           = "https://schema.org/SoldOut"

	eventBaseURL = "https://www.eventbrite.com/e/"
)

// EventURL is the canonical public page for a listing.
func EventURL(id string) string {
	return eventBaseURL + id
}

type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
	AddressCountry  string `json:"addressCountry"`
}

// Location is either a VirtualLocation (URL only) or a Place (name+address).
type Location struct {
	Type    string         `json:"@type"`
	Name    string         `json:"name,omitempty"`
	URL     string         `json:"url,omitempty"`
	Address *PostalAddress `json:"address,omitempty"`
}

type Offer struct {
	Type          string `json:"@type"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	ValidFrom     string `json:"validFrom"`
	ValidThrough  string `json:"validThrough"`
	URL           string `json:"url"`
	Availability  string `json:"availability"`
}

type Event struct {
	Context             string       `json:"@context"`
	Type                string       `json:"@type"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	StartDate           string       `json:"startDate"`
	EndDate             string       `json:"endDate"`
	EventAttendanceMode string       `json:"eventAttendanceMode"`
	Location            Location     `json:"location"`
	EventStatus         string       `json:"eventStatus"`
	Organizer           Organization `json:"organizer"`
	Image               []string     `json:"image"`
	URL                 string       `json:"url"`
	Performer           string       `json:"performer"`
	Offers              []Offer      `json:"offers"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	URL      string `json:"url"`
}

type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

func NewItemList() *ItemList {
	return &ItemList{
		Context:         Context,
		Type:            "ItemList",
		ItemListElement: []ListItem{},
	}
}

// Append adds one listing URL at the next position (positions are 1-based).
func (l *ItemList) Append(url string) {
	l.ItemListElement = append(l.ItemListElement, ListItem{
		Type:     "ListItem",
		Position: len(l.ItemListElement) + 1,
		URL:      url,
	})
}

// ForEvent maps one event into its schema.org document. Offers cover every
// ticket class, hidden or not, unlike the card's price range.
func ForEvent(ev models.Event) Event {
	doc := Event{
		Context:     Context,
		Type:        "Event",
		Name:        ev.Name.Text,
		Description: markup.SchemaText(ev.Description.Text),
		StartDate:   ev.Start.UTC,
		EndDate:     ev.End.UTC,
		EventStatus: StatusScheduled,
		URL:         EventURL(ev.ID),
	}

	if ev.OnlineEvent {
		doc.EventAttendanceMode = AttendanceOnline
		doc.Location = Location{
			Type: "VirtualLocation",
			URL:  EventURL(ev.ID),
		}
	} else {
		doc.EventAttendanceMode = AttendanceOffline
		loc := Location{Type: "Place"}
		if ev.Venue != nil {
			loc.Name = ev.Venue.Name
			addr := ev.Venue.Address
			street := addr.Address1
			if street != "" && addr.Address2 != "" {
				street += ", " + addr.Address2
			}
			loc.Address = &PostalAddress{
				Type:            "PostalAddress",
				StreetAddress:   street,
				AddressLocality: addr.City,
				AddressRegion:   addr.Region,
				PostalCode:      addr.PostalCode,
				AddressCountry:  addr.Country,
			}
		}
		doc.Location = loc
	}

	if ev.Organizer != nil {
		doc.Organizer = Organization{
			Type: "Organization",
			Name: ev.Organizer.Name,
			URL:  ev.Organizer.URL,
		}
		doc.Performer = ev.Organizer.Name
	} else {
		doc.Organizer = Organization{Type: "Organization"}
	}

	doc.Image = []string{}
	if ev.Logo != nil {
		doc.Image = append(doc.Image, ev.Logo.Original.URL, ev.Logo.URL)
	}

	doc.Offers = make([]Offer, 0, len(ev.TicketClasses))
	for _, tc := range ev.TicketClasses {
		doc.Offers = append(doc.Offers, offerFor(ev, tc))
	}
	return doc
}

func offerFor(ev models.Event, tc models.TicketClass) Offer {
	offer := Offer{
		Type:        "Offer",
		Name:        tc.Name,
		Description: tc.Description,
		Price:       fmt.Sprintf("%.2f", tc.Cost.Major()+tc.Fee.Major()),
		URL:         EventURL(ev.ID),
	}

	offer.PriceCurrency = "USD"
	if tc.Cost != nil && tc.Cost.Currency != "" {
		offer.PriceCurrency = tc.Cost.Currency
	}

	offer.ValidFrom = ev.Created
	offer.ValidThrough = ev.Start.UTC
	if tc.SalesEnd != "" {
		offer.ValidThrough = tc.SalesEnd
	}

	offer.Availability = SoldOut
	if tc.OnSaleStatus == "AVAILABLE" {
		offer.Availability = InStock
	}
	return offer
}

// Marshal renders a document indented and with URLs left unescaped, the way
// the ld+json blocks are published.
func Marshal(doc any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
