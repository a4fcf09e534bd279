package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/QuakeAlert/config"
	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
	"github.com/rajasatyajit/QuakeAlert/internal/geocoder"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
	"github.com/rajasatyajit/QuakeAlert/internal/metrics"
	"github.com/rajasatyajit/QuakeAlert/internal/models"
	"github.com/rajasatyajit/QuakeAlert/pkg/utils"
)

// Fetcher retrieves one raw feed payload per tick
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Parser decodes a payload into events, reporting skipped malformed entries
type Parser interface {
	Parse(raw []byte) (events []models.Event, skipped int, err error)
}

// DedupStore is the durable processed-identifier set
type DedupStore interface {
	Contains(id string) bool
	Record(ctx context.Context, id string) error
	Len() int
}

// RegionFilter classifies an event's location against the target region
type RegionFilter interface {
	Matches(ctx context.Context, event *models.Event) geocoder.Match
}

// Translator converts feed-language text for display
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Formatter renders an event into an outbound payload
type Formatter interface {
	Format(event models.Event) string
}

// Notifier delivers a payload, enforcing the outbound rate limit
type Notifier interface {
	Deliver(ctx context.Context, eventID, payload string) error
}

// Stats is a snapshot of loop progress for the status API
type Stats struct {
	Running        bool      `json:"running"`
	LastTickAt     time.Time `json:"last_tick_at"`
	LastTickStatus string    `json:"last_tick_status"`
	TicksTotal     uint64    `json:"ticks_total"`
	EventsSeen     uint64    `json:"events_seen"`
	EventsNotified uint64    `json:"events_notified"`
	EventsDeduped  uint64    `json:"events_deduped"`
	EventsFiltered uint64    `json:"events_filtered"`
	EventsDropped  uint64    `json:"events_dropped"`
	ParseSkipped   uint64    `json:"parse_skipped"`
	DedupSize      int       `json:"dedup_size"`
}

// PollLoop drives the per-tick pipeline: fetch, parse, filter, dedup,
// normalize, translate, format, record, notify. Ticks never overlap; a
// tick that overruns the interval is followed immediately by the next one.
type PollLoop struct {
	fetcher    Fetcher
	parser     Parser
	store      DedupStore
	filter     RegionFilter
	translator Translator
	formatter  Formatter
	notifier   Notifier
	limiter    *rate.Limiter

	feedCfg        config.FeedConfig
	titleKeywords  []string
	recordAttempts int

	mu      sync.RWMutex
	running bool
	stats   Stats
}

// New wires a poll loop from its collaborators
func New(
	fetcher Fetcher,
	parser Parser,
	store DedupStore,
	filter RegionFilter,
	translator Translator,
	formatter Formatter,
	notifier Notifier,
	feedCfg config.FeedConfig,
	regionCfg config.RegionConfig,
	recordAttempts int,
) *PollLoop {
	return &PollLoop{
		fetcher:        fetcher,
		parser:         parser,
		store:          store,
		filter:         filter,
		translator:     translator,
		formatter:      formatter,
		notifier:       notifier,
		limiter:        rate.NewLimiter(rate.Limit(feedCfg.FetchRate), 1),
		feedCfg:        feedCfg,
		titleKeywords:  splitKeywords(regionCfg.TitleKeywords),
		recordAttempts: recordAttempts,
	}
}

// splitKeywords parses the comma-separated keyword list, dropping empties
func splitKeywords(raw string) []string {
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// Run ticks on the poll interval until ctx is cancelled. Per-tick and
// per-event failures are contained; only cancellation ends the loop.
func (p *PollLoop) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poll loop already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	logger.Info("Starting poll loop", "interval", p.feedCfg.PollInterval, "feed", p.feedCfg.URL)

	ticker := time.NewTicker(p.feedCfg.PollInterval)
	defer ticker.Stop()

	// Initial immediate run
	p.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Poll loop stopping")
			return ctx.Err()
		case <-ticker.C:
			p.runTick(ctx)
		}
	}
}

// runTick executes one full tick
func (p *PollLoop) runTick(ctx context.Context) {
	start := time.Now()
	tickID := uuid.NewString()
	log := logger.With("tick_id", tickID)

	status := "ok"
	defer func() {
		duration := time.Since(start)
		metrics.RecordTick(status, duration)
		metrics.SetDedupSize(p.store.Len())
		p.mu.Lock()
		p.stats.TicksTotal++
		p.stats.LastTickAt = start
		p.stats.LastTickStatus = status
		p.stats.DedupSize = p.store.Len()
		p.mu.Unlock()
		log.Debug("Tick completed", "status", status, "duration_ms", duration.Milliseconds())
	}()

	if err := p.limiter.Wait(ctx); err != nil {
		status = "cancelled"
		return
	}

	raw, err := p.fetchWithRetry(ctx, log)
	if err != nil {
		status = "fetch_failed"
		log.Error("Feed fetch failed, skipping tick", "error", err)
		return
	}

	events, skipped, err := p.parser.Parse(raw)
	if err != nil {
		status = "parse_failed"
		log.Error("Feed payload undecodable, skipping tick", "error", err)
		return
	}
	if skipped > 0 {
		p.mu.Lock()
		p.stats.ParseSkipped += uint64(skipped)
		p.mu.Unlock()
		log.Warn("Skipped malformed feed entries", "count", skipped)
	}

	// Events are processed strictly in feed order; one event's failure
	// never aborts the rest of the tick.
	for i := range events {
		if ctx.Err() != nil {
			status = "cancelled"
			return
		}
		p.processEvent(ctx, log, &events[i])
	}
}

// fetchWithRetry fetches the feed, retrying transient failures
func (p *PollLoop) fetchWithRetry(ctx context.Context, log *slog.Logger) ([]byte, error) {
	var raw []byte
	var err error

	for attempt := 0; attempt <= p.feedCfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * p.feedCfg.RetryDelay):
			}
		}

		raw, err = p.fetcher.Fetch(ctx)
		if err == nil {
			return raw, nil
		}
		if !apperrors.IsTransient(err) {
			return nil, err
		}
		log.Warn("Fetch attempt failed", "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", p.feedCfg.RetryAttempts+1, err)
}

// processEvent runs one event through the stage sequence. Once the
// identifier is durably recorded the event is driven to a terminal state
// even under cancellation, so shutdown never splits record from notify.
func (p *PollLoop) processEvent(ctx context.Context, log *slog.Logger, event *models.Event) {
	p.mu.Lock()
	p.stats.EventsSeen++
	p.mu.Unlock()

	if !event.HasCoords {
		p.recordOutcome("no_coords")
		log.Warn("Dropping event without valid coordinates", "event_id", event.ID)
		return
	}

	seen := p.store.Contains(event.ID)
	metrics.RecordDedupLookup(seen)
	if seen {
		p.recordOutcome("duplicate")
		p.mu.Lock()
		p.stats.EventsDeduped++
		p.mu.Unlock()
		return
	}

	// Cheap keyword pre-filter before spending a geocoding call; any
	// configured keyword matching the raw title lets the event through.
	if len(p.titleKeywords) > 0 && !utils.ContainsAny(event.Title, p.titleKeywords) {
		p.markSeen(ctx, log, event.ID, "prefiltered")
		return
	}

	switch p.filter.Matches(ctx, event) {
	case geocoder.MatchInside:
		// Proceed to notification.
	case geocoder.MatchOutside:
		p.markSeen(ctx, log, event.ID, "outside_region")
		return
	default:
		// Unknown region: never alert on an unverified location, but
		// record the id so the event is not re-evaluated every tick.
		p.markSeen(ctx, log, event.ID, "region_unknown")
		return
	}

	p.translateEvent(ctx, log, event)

	payload := p.formatter.Format(*event)

	// Record before notify: the identifier must be durable before the
	// delivery commits, so a crash-restart can never double-deliver.
	if err := p.recordWithRetry(ctx, event.ID); err != nil {
		p.recordOutcome("record_failed")
		p.mu.Lock()
		p.stats.EventsDropped++
		p.mu.Unlock()
		log.Error("Dedup record failed, dropping event this tick",
			"event_id", event.ID, "error", err)
		return
	}

	// The id is committed; finish delivery even if shutdown began.
	deliverCtx := context.WithoutCancel(ctx)
	if err := p.notifier.Deliver(deliverCtx, event.ID, payload); err != nil {
		// Already recorded, so this event will not be retried on a later
		// tick: at most one delivery attempt sequence per identifier.
		p.recordOutcome("delivery_failed")
		p.mu.Lock()
		p.stats.EventsDropped++
		p.mu.Unlock()
		log.Error("Notification failed", "event_id", event.ID, "error", err)
		return
	}

	p.recordOutcome("notified")
	p.mu.Lock()
	p.stats.EventsNotified++
	p.mu.Unlock()
	log.Info("Event notified",
		"event_id", event.ID,
		"magnitude", event.Magnitude,
		"country", event.CountryCode,
		"city", event.NearestCity,
	)
}

// translateEvent fills the translated fields, falling back to the raw
// text on any failure.
func (p *PollLoop) translateEvent(ctx context.Context, log *slog.Logger, event *models.Event) {
	title, err := p.translator.Translate(ctx, event.Title)
	if err != nil {
		log.Warn("Title translation failed, using raw text", "event_id", event.ID, "error", err)
	} else {
		event.TitleTranslated = title
	}

	details, err := p.translator.Translate(ctx, event.Details)
	if err != nil {
		log.Warn("Details translation failed, using raw text", "event_id", event.ID, "error", err)
	} else {
		event.DetailsTranslated = details
	}
}

// markSeen records an excluded event's identifier so later ticks skip it.
// A failure here only means the event gets re-evaluated next time the
// feed delivers it.
func (p *PollLoop) markSeen(ctx context.Context, log *slog.Logger, id, outcome string) {
	p.recordOutcome(outcome)
	p.mu.Lock()
	p.stats.EventsFiltered++
	p.mu.Unlock()

	if err := p.recordWithRetry(ctx, id); err != nil {
		log.Warn("Failed to record excluded event", "event_id", id, "outcome", outcome, "error", err)
	}
}

// recordWithRetry attempts the durable record a bounded number of times
// within the current tick.
func (p *PollLoop) recordWithRetry(ctx context.Context, id string) error {
	var err error
	for attempt := 1; attempt <= p.recordAttempts; attempt++ {
		if err = p.store.Record(ctx, id); err == nil {
			return nil
		}
		if attempt < p.recordAttempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}
	return err
}

func (p *PollLoop) recordOutcome(outcome string) {
	metrics.RecordEventProcessed(outcome)
}

// IsRunning returns whether the loop is currently running
func (p *PollLoop) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Snapshot returns current loop statistics
func (p *PollLoop) Snapshot() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.stats
	s.Running = p.running
	s.DedupSize = p.store.Len()
	return s
}
