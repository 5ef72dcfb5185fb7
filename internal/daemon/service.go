// Package daemon provides the widget host: a long-running service that keeps
// a budget snapshot of the active trip and serves it over HTTP and SSE.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/i18n"
)

// DefaultAddr is where the daemon listens and where notifiers post.
const DefaultAddr = "127.0.0.1:8797"

// Loader produces a fresh snapshot of the widget state.
type Loader func(ctx context.Context, now time.Time) (Snapshot, error)

// Config controls the daemon runtime behavior.
type Config struct {
	Loader       Loader
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Language     string
	Logger       *slog.Logger
}

// Snapshot is the widget-facing state of the active trip.
type Snapshot struct {
	At                time.Time       `json:"at"`
	TripName          string          `json:"trip_name"`
	BudgetSet         bool            `json:"budget_set"`
	Currency          string          `json:"currency"`
	SecondaryCurrency string          `json:"secondary_currency"`
	InRange           bool            `json:"in_range"`
	DaysFromStart     int             `json:"days_from_start"`
	DayNumber         int             `json:"day_number"`
	TotalDays         int             `json:"total_days"`
	DailyBase         decimal.Decimal `json:"daily_base"`
	AvailableToday    decimal.Decimal `json:"available_today"`
	SpentToday        decimal.Decimal `json:"spent_today"`
	RemainingToday    decimal.Decimal `json:"remaining_today"`
	Progress          float64         `json:"progress"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TotalRemaining    decimal.Decimal `json:"total_remaining"`
	ExpenseCount      int             `json:"expense_count"`
	Rate              decimal.Decimal `json:"rate"`
	RateFetchedAt     time.Time       `json:"rate_fetched_at"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	SpentToday     decimal.Decimal `json:"spent_today"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	RemainingToday decimal.Decimal `json:"remaining_today"`
	Expenses       int             `json:"expenses"`
	DayChanged     bool            `json:"day_changed"`
	TripChanged    bool            `json:"trip_changed"`
	RateChanged    bool            `json:"rate_changed"`
}

func (d Delta) isZero() bool {
	return d.SpentToday.IsZero() &&
		d.TotalSpent.IsZero() &&
		d.RemainingToday.IsZero() &&
		d.Expenses == 0 &&
		!d.DayChanged &&
		!d.TripChanged &&
		!d.RateChanged
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	RefreshCount    int64     `json:"refresh_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *slog.Logger
	refresh chan string

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	refreshCount int64
	lastError    string
	hasSnapshot  bool
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		refresh:   make(chan string, 1),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/widget", s.handleWidget)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx, "startup")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx, "timeline")
		case reason := <-s.refresh:
			s.pollOnce(ctx, reason)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// Refresh asks the run loop to reload. Requests coalesce while one is pending.
func (s *Service) Refresh(reason string) bool {
	select {
	case s.refresh <- reason:
		return true
	default:
		return false
	}
}

func (s *Service) pollOnce(ctx context.Context, reason string) {
	now := time.Now()
	snap, err := s.cfg.Loader(ctx, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("daemon poll failed", "reason", reason, "err", err)
		return
	}
	s.apply(snap, reason, now)
}

func (s *Service) apply(snap Snapshot, reason string, now time.Time) {
	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	if reason != "timeline" && reason != "startup" {
		s.refreshCount++
	}
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Reason:    reason,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "budget_delta",
				Reason:    reason,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		SpentToday:     curr.SpentToday.Sub(prev.SpentToday),
		TotalSpent:     curr.TotalSpent.Sub(prev.TotalSpent),
		RemainingToday: curr.RemainingToday.Sub(prev.RemainingToday),
		Expenses:       curr.ExpenseCount - prev.ExpenseCount,
		DayChanged:     curr.DaysFromStart != prev.DaysFromStart,
		TripChanged: curr.TripName != prev.TripName ||
			curr.BudgetSet != prev.BudgetSet ||
			curr.Currency != prev.Currency ||
			curr.TotalDays != prev.TotalDays ||
			!curr.DailyBase.Equal(prev.DailyBase),
		RateChanged: !curr.Rate.Equal(prev.Rate),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		RefreshCount:    s.refreshCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleWidget(w http.ResponseWriter, r *http.Request) {
	size := r.URL.Query().Get("size")
	if size == "" {
		size = SizeSmall
	}
	if size != SizeSmall && size != SizeMedium {
		http.Error(w, "size must be small or medium", http.StatusBadRequest)
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.cfg.Language
	}

	view := RenderWidget(s.snapshotStatus().Summary, size, i18n.For(lang))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "refresh"
	}
	s.Refresh(reason)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
