package feed

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"evfeed/models"
	"evfeed/schema"
	"evfeed/tickets"
)

// One display card. The markup mirrors the bootstrap-3 grid the embedding
// sites expect; the structured-data fragment rides along inside the card.
var cardTmpl = template.Must(template.New("card").Parse(`<div class="col-xs-12 col-sm-6 col-md-6 col-lg-4 center-block" id="{{.ID}}">
<div class="panel panel-default"{{if .EdgeColor}} style="border-color:{{.EdgeColor}};"{{end}}>
<a href="{{.URL}}">
<img src="{{.LogoURL}}" class="img-responsive center-block" alt="{{.Name}}" loading="lazy" height="200" width="400">
</a>
<div class="panel-body">
<strong>{{.DateLabel}}{{.DateLine}}<span class="hidden-xs">{{.DateOrdinal}}</span> at {{.TimeLine}}</strong>
<h3><a href="{{.URL}}">{{.Name}}</a>{{if .Label}}<span class="label">{{.Label}}</span>{{end}}</h3>
{{if .ButtonText}}<a class="btn btn-primary btn-lg btn-block" id="eventbrite-modal-trigger-{{.ID}}">{{.ButtonText}}{{if .ButtonPrice}}&nbsp;( {{.ButtonPrice}}){{end}}</a>
{{end}}</div>
{{if .ButtonText}}<script>window.EBWidgets.createWidget({ {{.WidgetConfig}} });</script>
{{end}}<div class="panel-footer">
{{if .Online}}<strong>Online</strong>{{else}}<strong>{{.VenueName}}</strong><br />{{.VenueLine}}<span class="hidden-xs"> {{.VenuePostal}}</span>{{end}}
</div>
</div>
<script type="application/ld+json">{{.SchemaJSON}}</script>
</div>`))

type cardData struct {
	ID           string
	Name         string
	URL          string
	DateLabel    string
	DateLine     string
	DateOrdinal  string
	TimeLine     string
	LogoURL      string
	EdgeColor    template.CSS
	Label        string
	ButtonText   string
	ButtonPrice  string
	Online       bool
	VenueName    string
	VenueLine    string
	VenuePostal  string
	WidgetConfig template.JS
	SchemaJSON   template.JS
}

// renderCard produces the markup for one event. The event has already passed
// shape validation.
func renderCard(ev models.Event, opts Options) (string, error) {
	start, err := ev.Start.LocalTime()
	if err != nil {
		return "", err
	}
	end, err := ev.End.LocalTime()
	if err != nil {
		return "", err
	}

	data := cardData{
		ID:          ev.ID,
		Name:        ev.Name.Text,
		URL:         schema.EventURL(ev.ID),
		DateLine:    start.Format("Monday, January 2"),
		DateOrdinal: ordinal(start.Day()),
		TimeLine:    start.Format("3:04 PM"),
		Online:      ev.OnlineEvent,
	}

	if end.Sub(start) > 24*time.Hour {
		// Event is longer than one day.
		data.DateLabel = "Starts "
	}

	if ev.Logo != nil {
		data.LogoURL = ev.Logo.URL
		data.EdgeColor = template.CSS(ev.Logo.EdgeColor)
	}

	eligible := tickets.Eligible(ev.TicketClasses)
	price, isDonation := priceRun(eligible)

	text := "Learn More"
	if price == "" {
		text = ""
	}
	if tickets.SoldOut(ev.TicketClasses) {
		text = "Join Waitlist"
		price = ""
	}
	if isDonation {
		price = "Donation"
	}
	data.ButtonText = text
	data.ButtonPrice = price
	data.Label = tickets.Label(ev.TicketClasses)

	if text != "" {
		data.WidgetConfig = template.JS(widgetConfig(ev.ID, opts.AffiliateCode, "", "modal"))
	}

	if !ev.OnlineEvent && ev.Venue != nil {
		data.VenueName = ev.Venue.Name
		data.VenueLine = addressLine(ev.Venue.Address)
		data.VenuePostal = ev.Venue.Address.PostalCode
	}

	doc, err := schema.Marshal(schema.ForEvent(ev))
	if err != nil {
		return "", err
	}
	data.SchemaJSON = template.JS(doc)

	var b strings.Builder
	if err := cardTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// priceRun builds the "$10 / $25" display from the eligible classes and
// reports whether any of them is a donation tier.
func priceRun(eligible []models.TicketClass) (string, bool) {
	var b strings.Builder
	isDonation := false
	for j, tc := range eligible {
		value := 0.0
		if tc.Cost != nil {
			value = float64(tc.Cost.Value) / 100
		}
		b.WriteString("$")
		b.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
		if j+1 < len(eligible) {
			b.WriteString(" / ")
		}
		if tc.Donation {
			isDonation = true
		}
	}
	return b.String(), isDonation
}

// addressLine assembles the one-line venue address for the card footer.
func addressLine(addr models.Address) string {
	var b strings.Builder
	if addr.Address1 != "" {
		b.WriteString(addr.Address1)
		b.WriteString(", ")
	}
	if addr.Address2 != "" {
		b.WriteString(addr.Address2)
		b.WriteString(", ")
	}
	b.WriteString(addr.City)
	if addr.Region != "" {
		b.WriteString(", ")
		b.WriteString(addr.Region)
	}
	return b.String()
}

// widgetConfig builds the checkout-widget settings literal embedded in each
// card's script tag.
func widgetConfig(eventID, affiliate, discount, widgetType string) string {
	pairs := []struct{ key, val string }{
		{"widgetType", "'checkout'"},
		{"eventId", "'" + eventID + "'"},
	}
	if widgetType == "modal" {
		pairs = append(pairs,
			struct{ key, val string }{"modal", "true"},
			struct{ key, val string }{"modalTriggerElementId", "'eventbrite-modal-trigger-" + eventID + "'"},
		)
	} else if widgetType == "iframe" {
		pairs = append(pairs,
			struct{ key, val string }{"iframeContainerId", "'eventbrite-widget-container-" + eventID + "'"},
			struct{ key, val string }{"iframeContainerHeight", "550"},
		)
	}
	pairs = append(pairs, struct{ key, val string }{"affiliateCode", "'" + affiliate + "'"})
	if discount != "" {
		pairs = append(pairs, struct{ key, val string }{"promoCode", "'" + discount + "'"})
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+":"+p.val)
	}
	return strings.Join(parts, ",")
}

// ordinal returns the English day-of-month suffix.
func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
