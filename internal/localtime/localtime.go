package localtime

import "time"

// Normalizer converts feed-native instants into the display zone. Both
// offsets are fixed constants; neither zone in scope observes DST. If that
// ever changes the offset must be resolved against the event's calendar
// date instead.
type Normalizer struct {
	source *time.Location
	target *time.Location
	label  string
}

// New builds a normalizer for fixed source and target UTC offsets
func New(sourceOffset, targetOffset time.Duration, targetLabel string) *Normalizer {
	return &Normalizer{
		source: time.FixedZone("feed", int(sourceOffset/time.Second)),
		target: time.FixedZone(targetLabel, int(targetOffset/time.Second)),
		label:  targetLabel,
	}
}

// SourceLocation returns the zone feed timestamps are interpreted in
func (n *Normalizer) SourceLocation() *time.Location {
	return n.source
}

// ToDisplay re-expresses the instant in the target zone. The underlying
// instant is unchanged; this is a pure derived view.
func (n *Normalizer) ToDisplay(instant time.Time) time.Time {
	return instant.In(n.target)
}

// Format renders the instant in the display zone with its zone label
func (n *Normalizer) Format(instant time.Time) string {
	return n.ToDisplay(instant).Format("2006-01-02 15:04:05 ") + n.label
}
