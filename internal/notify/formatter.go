package notify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rajasatyajit/QuakeAlert/internal/localtime"
	"github.com/rajasatyajit/QuakeAlert/internal/models"
	"github.com/rajasatyajit/QuakeAlert/pkg/utils"
)

// telegramMaxMessageLen is Telegram's hard cap on message text
const telegramMaxMessageLen = 4096

// markdownV2Specials are the characters MarkdownV2 requires escaping
const markdownV2Specials = `_*[]()~` + "`" + `>#+-=|{}.!\`

// Formatter renders events into MarkdownV2 payloads. Output is
// deterministic for identical event fields, and every feed-sourced string
// is escaped so feed content cannot break message structure.
type Formatter struct {
	normalizer *localtime.Normalizer
}

// NewFormatter creates a formatter using the given display-time normalizer
func NewFormatter(normalizer *localtime.Normalizer) *Formatter {
	return &Formatter{normalizer: normalizer}
}

// EscapeMarkdownV2 escapes all MarkdownV2 special characters in s
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeLinkURL escapes the characters MarkdownV2 treats specially inside
// an inline link target.
func escapeLinkURL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `)`, `\)`)
}

// Format renders the outbound message for an event. If the rendered
// payload would exceed the transport limit, the details section is
// truncated with a visible marker rather than failing delivery.
func (f *Formatter) Format(event models.Event) string {
	magnitude := event.Magnitude
	if !event.HasMagnitude() {
		magnitude = "N/A"
	}
	depth := event.DepthKm
	if depth == "" {
		depth = "N/A"
	}
	city := event.NearestCity
	if city == "" {
		city = "N/A"
	}

	var b strings.Builder
	b.WriteString("⚠️ *မြေငလျင် သတိပေးချက်* ⚠️\n\n")
	fmt.Fprintf(&b, "*ပြင်းအား :* %s\n", EscapeMarkdownV2(magnitude))
	fmt.Fprintf(&b, "*အနီးဆုံးမြို့ :* %s\n", EscapeMarkdownV2(city))
	fmt.Fprintf(&b, "*အချိန် :* %s\n", EscapeMarkdownV2(f.normalizer.Format(event.OccurredAt)))
	fmt.Fprintf(&b, "*ဗဟိုချက် တည်နေရာ :* %s, %s\n",
		EscapeMarkdownV2(fmt.Sprintf("%.4f", event.Latitude)),
		EscapeMarkdownV2(fmt.Sprintf("%.4f", event.Longitude)))
	fmt.Fprintf(&b, "*အနက် :* %s km\n\n", EscapeMarkdownV2(depth))

	header := b.String()

	details := buildDetails(event)
	footer := ""
	if event.Link != "" {
		footer = fmt.Sprintf("\n[အပြည့်စုံဖတ်ရှုရန်](%s)", escapeLinkURL(event.Link))
	}

	// The details section absorbs any truncation needed to fit the cap.
	budget := telegramMaxMessageLen - utf8.RuneCountInString(header) - utf8.RuneCountInString(footer)
	if budget < 0 {
		budget = 0
	}
	if utf8.RuneCountInString(details) > budget {
		details = trimDanglingEscape(utils.TruncateRunes(details, budget, "…"), "…")
	}

	return header + details + footer
}

// trimDanglingEscape drops a backslash left unpaired when truncation cut
// through an escape sequence. In escaped text every backslash starts a
// two-character pair, so an odd trailing run means the cut split one, and
// the leftover would escape the marker itself.
func trimDanglingEscape(s, marker string) string {
	kept, ok := strings.CutSuffix(s, marker)
	if !ok {
		return s
	}
	n := 0
	for n < len(kept) && kept[len(kept)-1-n] == '\\' {
		n++
	}
	if n%2 == 1 {
		kept = kept[:len(kept)-1]
	}
	return kept + marker
}

// buildDetails joins the translated title and details, already escaped
func buildDetails(event models.Event) string {
	parts := make([]string, 0, 2)
	if t := event.DisplayTitle(); t != "" {
		parts = append(parts, EscapeMarkdownV2(t))
	}
	if d := event.DisplayDetails(); d != "" {
		parts = append(parts, EscapeMarkdownV2(d))
	}
	return strings.Join(parts, "\n")
}
