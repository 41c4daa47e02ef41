package models

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp layouts used by the listing API. Local times carry no zone
// designator; UTC times end in Z.
const (
	LocalLayout = "2006-01-02T15:04:05"
	UTCLayout   = "2006-01-02T15:04:05Z"
)

// LocalizedText is the {text, html} pair the API uses for names and
// descriptions.
type LocalizedText struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type When struct {
	Timezone string `json:"timezone"`
	Local    string `json:"local"`
	UTC      string `json:"utc"`
}

func (w When) LocalTime() (time.Time, error) {
	return time.Parse(LocalLayout, w.Local)
}

func (w When) UTCTime() (time.Time, error) {
	return time.Parse(UTCLayout, w.UTC)
}

// Cost is a money amount in minor units plus its display forms.
type Cost struct {
	Currency   string `json:"currency"`
	Value      int    `json:"value"`
	MajorValue string `json:"major_value"`
	Display    string `json:"display"`
}

// Major returns the amount in major units ("25.00" -> 25.0). A nil or
// unparseable cost contributes zero.
func (c *Cost) Major() float64 {
	if c == nil {
		return 0
	}
	v, err := strconv.ParseFloat(c.MajorValue, 64)
	if err != nil {
		return float64(c.Value) / 100
	}
	return v
}

// TicketClass is one pricing tier of an event. QuantityTotal and QuantitySold
// are pointers because the API omits them on some tiers; an absent field is
// not the same as zero.
type TicketClass struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Cost          *Cost  `json:"cost"`
	Fee           *Cost  `json:"fee"`
	Donation      bool   `json:"donation"`
	Free          bool   `json:"free"`
	QuantityTotal *int   `json:"quantity_total,omitempty"`
	QuantitySold  *int   `json:"quantity_sold,omitempty"`
	Hidden        bool   `json:"hidden"`
	OnSaleStatus  string `json:"on_sale_status"`
	SalesEnd      string `json:"sales_end,omitempty"`
}

type Address struct {
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Venue struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

type Logo struct {
	URL       string `json:"url"`
	EdgeColor string `json:"edge_color"`
	Original  struct {
		URL string `json:"url"`
	} `json:"original"`
}

type Organizer struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Event is one listing as returned by the upstream API with venue, organizer
// and ticket_classes expanded.
type Event struct {
	ID            string        `json:"id"`
	Name          LocalizedText `json:"name"`
	Description   LocalizedText `json:"description"`
	URL           string        `json:"url"`
	Created       string        `json:"created"`
	Start         When          `json:"start"`
	End           When          `json:"end"`
	Listed        bool          `json:"listed"`
	OnlineEvent   bool          `json:"online_event"`
	Logo          *Logo         `json:"logo"`
	Venue         *Venue        `json:"venue"`
	Organizer     *Organizer    `json:"organizer"`
	TicketClasses []TicketClass `json:"ticket_classes"`
}

// ShapeError marks an event that cannot be rendered because a required field
// is missing or malformed. The renderer skips the event and keeps going.
type ShapeError struct {
	EventID string
	Field   string
}

func (e *ShapeError) Error() string {
	id := e.EventID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("event %s: bad or missing %s", id, e.Field)
}

// Validate checks the fields every rendered card depends on.
func (ev *Event) Validate() error {
	if ev.ID == "" {
		return &ShapeError{Field: "id"}
	}
	if ev.Name.Text == "" {
		return &ShapeError{EventID: ev.ID, Field: "name.text"}
	}
	if _, err := ev.Start.LocalTime(); err != nil {
		return &ShapeError{EventID: ev.ID, Field: "start.local"}
	}
	if _, err := ev.End.LocalTime(); err != nil {
		return &ShapeError{EventID: ev.ID, Field: "end.local"}
	}
	if !ev.OnlineEvent && ev.Venue == nil {
		return &ShapeError{EventID: ev.ID, Field: "venue"}
	}
	return nil
}
