package tickets

import (
	"fmt"
	"strings"

	"evfeed/models"
)

// Inventory math over an event's ticket classes. Everything here is pure;
// the renderer recomputes it on every build.

const (
	soldOutLabel     = "SOLD OUT!"
	sellingFastLabel = "Selling fast!"

	// Ticket classes whose name carries this marker are support/donation
	// tiers and stay out of the price-range display.
	supportTierMarker = "Support"
)

// Sold sums quantity_sold across all classes. Classes that omit the field
// contribute zero.
func Sold(classes []models.TicketClass) int {
	sold := 0
	for _, tc := range classes {
		if tc.QuantitySold != nil {
			sold += *tc.QuantitySold
		}
	}
	return sold
}

// Capacity reads quantity_total from the first class only. Upstream shares
// one capacity pool across all classes of an event, so the first class carries
// the event-wide limit.
func Capacity(classes []models.TicketClass) int {
	if len(classes) > 0 && classes[0].QuantityTotal != nil {
		return *classes[0].QuantityTotal
	}
	return 0
}

// Remaining is capacity minus sold. With no configured capacity it reports 0,
// which never counts as sold out.
func Remaining(classes []models.TicketClass) int {
	return Capacity(classes) - Sold(classes)
}

// PercentSold is the integer percentage of capacity sold. Zero capacity means
// "no configured limit": the percentage is 0 and must not drive labels.
func PercentSold(classes []models.TicketClass) int {
	cap := Capacity(classes)
	if cap == 0 {
		return 0
	}
	return Sold(classes) * 100 / cap
}

// SoldOut is true when fewer than one ticket remains and a capacity limit is
// actually configured.
func SoldOut(classes []models.TicketClass) bool {
	return Remaining(classes) < 1 && Capacity(classes) != 0
}

// Label derives the urgency hint for a card: the sold-out marker, a
// spots-left count under 10, "Selling fast!" at 50% sold, or nothing.
func Label(classes []models.TicketClass) string {
	if Capacity(classes) == 0 {
		// Don't do labels on events with no limit.
		return ""
	}
	if SoldOut(classes) {
		return soldOutLabel
	}
	if PercentSold(classes) >= 50 {
		left := Remaining(classes)
		if left < 10 {
			return fmt.Sprintf("%d spot%s left", left, plural(left))
		}
		return sellingFastLabel
	}
	return ""
}

// Eligible filters the classes used for the card's price range: support
// tiers, hidden classes and classes not on sale are dropped. The structured
// data offers use the full set, not this one.
func Eligible(classes []models.TicketClass) []models.TicketClass {
	eligible := make([]models.TicketClass, 0, len(classes))
	for _, tc := range classes {
		if strings.Contains(tc.Name, supportTierMarker) {
			continue
		}
		if tc.Hidden {
			continue
		}
		if tc.OnSaleStatus == "UNAVAILABLE" {
			continue
		}
		eligible = append(eligible, tc)
	}
	return eligible
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
