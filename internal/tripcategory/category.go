// Package tripcategory holds the closed set of product classifications used
// to pick a commission rate.
package tripcategory

import "strings"

type Category string

const (
	Kilimanjaro Category = "kilimanjaro"
	Safari      Category = "safari"
	DayTrip     Category = "daytrip"
	Zanzibar    Category = "zanzibar"
)

// All returns the categories in reporting order.
func All() []Category {
	return []Category{Kilimanjaro, Safari, DayTrip, Zanzibar}
}

// Parse normalizes raw input. Unknown values are rejected, never defaulted.
func Parse(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

func (c Category) Valid() bool {
	switch c {
	case Kilimanjaro, Safari, DayTrip, Zanzibar:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }
