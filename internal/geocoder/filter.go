package geocoder

import (
	"context"
	"strings"

	"github.com/rajasatyajit/QuakeAlert/internal/logger"
	"github.com/rajasatyajit/QuakeAlert/internal/models"
)

// Match is the three-way region decision
type Match int

const (
	// MatchUnknown means the lookup failed or returned no region. Policy
	// is to exclude such events from notification but still record them,
	// trading recall for precision.
	MatchUnknown Match = iota
	MatchInside
	MatchOutside
)

func (m Match) String() string {
	switch m {
	case MatchInside:
		return "inside"
	case MatchOutside:
		return "outside"
	default:
		return "unknown"
	}
}

// RegionFilter decides whether an event's coordinates fall in the target
// country.
type RegionFilter struct {
	resolver    Resolver
	countryCode string
}

// NewRegionFilter creates a filter for the given ISO country code
func NewRegionFilter(resolver Resolver, countryCode string) *RegionFilter {
	return &RegionFilter{
		resolver:    resolver,
		countryCode: strings.ToUpper(countryCode),
	}
}

// Matches resolves the event's coordinates and classifies the result. On a
// successful resolution the event's country code and nearest city are
// filled in as a side effect.
func (f *RegionFilter) Matches(ctx context.Context, event *models.Event) Match {
	place, err := f.resolver.Resolve(ctx, event.Latitude, event.Longitude)
	if err != nil {
		logger.Warn("Region lookup failed", "event_id", event.ID, "error", err)
		return MatchUnknown
	}

	if place.CountryCode == "" {
		return MatchUnknown
	}

	event.CountryCode = strings.ToUpper(place.CountryCode)
	if place.City != "" {
		event.NearestCity = place.City
	} else {
		event.NearestCity = place.Locality
	}

	if event.CountryCode == f.countryCode {
		return MatchInside
	}
	return MatchOutside
}
