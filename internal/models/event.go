package models

import "time"

// Event represents one seismic occurrence as reported by the feed
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Details     string    `json:"details"`
	Link        string    `json:"link"`
	OccurredAt  time.Time `json:"occurred_at"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	HasCoords   bool      `json:"has_coords"`
	Magnitude   string    `json:"magnitude"`
	DepthKm     string    `json:"depth_km"`
	FetchedAt   time.Time `json:"fetched_at"`

	// Resolved lazily by the region filter; empty until resolution succeeds.
	CountryCode string `json:"country_code,omitempty"`
	NearestCity string `json:"nearest_city,omitempty"`

	// Resolved lazily by the translator; empty means untranslated.
	TitleTranslated   string `json:"title_translated,omitempty"`
	DetailsTranslated string `json:"details_translated,omitempty"`
}

// DisplayTitle returns the translated title, falling back to the raw
// feed-language title when translation never succeeded.
func (e Event) DisplayTitle() string {
	if e.TitleTranslated != "" {
		return e.TitleTranslated
	}
	return e.Title
}

// DisplayDetails returns the translated details with the same fallback.
func (e Event) DisplayDetails() string {
	if e.DetailsTranslated != "" {
		return e.DetailsTranslated
	}
	return e.Details
}

// HasMagnitude reports whether the feed supplied a usable magnitude
func (e Event) HasMagnitude() bool {
	return e.Magnitude != "" && e.Magnitude != "N/A"
}
