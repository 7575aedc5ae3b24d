package services

import (
	"bytes"
	"context"
	"errors"
	"math/bits"
	"math/rand/v2"
	"sync"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type FeedStatus string

const (
	FeedConnecting FeedStatus = "connecting"
	FeedLive       FeedStatus = "live"
	FeedOffline    FeedStatus = "offline"
)

func (s FeedStatus) gauge() float64 {
	switch s {
	case FeedLive:
		return 1
	case FeedOffline:
		return 2
	}
	return 0
}

// Page fetched for the initial load, manual refresh and polling.
const (
	feedPage     = 1
	feedPageSize = 200
)

// seen keys are remembered for this many times the buffer size, so events
// that fell off the end are not re-admitted by the next poll.
const seenFactor = 10

// EventSource fetches a page of events over HTTP.
type EventSource interface {
	Events(ctx context.Context, page, pageSize int) ([]models.Event, error)
}

// FeedURLSource yields the socket to connect to on each attempt.
type FeedURLSource interface {
	WebSocketURL(ctx context.Context) string
}

// FeedSubscriber receives feed updates. Calls are made synchronously from
// the feed goroutine and must not block.
type FeedSubscriber interface {
	FeedEvents(events []models.Event)
	FeedStatus(status FeedStatus)
}

// FeedSnapshot is the externally visible state of the feed.
type FeedSnapshot struct {
	Status       FeedStatus `json:"status"`
	URL          string     `json:"url"`
	Events       int        `json:"events"`
	Retry        int        `json:"retry"`
	Polling      bool       `json:"polling"`
	Fallback     bool       `json:"fallback"`
	OfflineSince *time.Time `json:"offline_since,omitempty"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

// EventFeed keeps a capped, de-duplicated, newest-first list of events fed
// by the upstream socket, with HTTP polling while the socket stays down.
type EventFeed struct {
	cfg    config.FeedConfig
	source EventSource
	urls   FeedURLSource
	dialer *websocket.Dialer
	log    *zap.Logger

	mu           sync.RWMutex
	events       []models.Event
	seen         map[string]struct{}
	seenOrder    []string
	status       FeedStatus
	url          string
	retry        int
	offlineSince time.Time
	lastUpdate   time.Time
	fallback     []models.Event

	// buffer holds only fallback events; dropped on the first real merge
	onFallback bool

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollWG     sync.WaitGroup

	subMu       sync.RWMutex
	subscribers []FeedSubscriber

	now    func() time.Time
	jitter func(max time.Duration) time.Duration
}

func NewEventFeed(cfg config.FeedConfig, source EventSource, urls FeedURLSource) *EventFeed {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 500
	}
	return &EventFeed{
		cfg:    cfg,
		source: source,
		urls:   urls,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    logger.GetLoggerWith(logger.NameFeed),
		seen:   make(map[string]struct{}),
		status: FeedConnecting,
		now:    time.Now,
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return rand.N(max)
		},
	}
}

// SetFallback provides events merged on startup when the initial fetch fails.
func (f *EventFeed) SetFallback(events []models.Event) {
	f.mu.Lock()
	f.fallback = events
	f.mu.Unlock()
}

func (f *EventFeed) Subscribe(s FeedSubscriber) {
	f.subMu.Lock()
	f.subscribers = append(f.subscribers, s)
	f.subMu.Unlock()
}

// State returns a snapshot of the feed.
func (f *EventFeed) State() FeedSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap := FeedSnapshot{
		Status:   f.status,
		URL:      f.url,
		Events:   len(f.events),
		Retry:    f.retry,
		Fallback: f.onFallback,
	}
	if !f.offlineSince.IsZero() {
		t := f.offlineSince
		snap.OfflineSince = &t
	}
	if !f.lastUpdate.IsZero() {
		t := f.lastUpdate
		snap.LastUpdate = &t
	}
	snap.Polling = f.isPolling()
	return snap
}

// Events returns a copy of the buffer, newest first.
func (f *EventFeed) Events() []models.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Merge adds unseen events to the front of the buffer, in order, and trims
// it to the configured size. It returns the events that were new.
func (f *EventFeed) Merge(incoming []models.Event) []models.Event {
	return f.merge(incoming, false)
}

// HoldsFallback reports whether the buffer still holds only the fallback
// events loaded at startup.
func (f *EventFeed) HoldsFallback() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.onFallback
}

func (f *EventFeed) merge(incoming []models.Event, fallback bool) []models.Event {
	if len(incoming) == 0 {
		return nil
	}

	f.mu.Lock()
	if f.onFallback && !fallback {
		f.events = nil
		f.seen = make(map[string]struct{})
		f.seenOrder = nil
		f.onFallback = false
	}
	var added []models.Event
	for i := range incoming {
		key := EventKey(&incoming[i])
		if _, dup := f.seen[key]; dup {
			continue
		}
		f.remember(key)
		added = append(added, incoming[i])
	}
	if len(added) > 0 {
		next := make([]models.Event, 0, len(added)+len(f.events))
		for i := len(added) - 1; i >= 0; i-- {
			next = append(next, added[i])
		}
		next = append(next, f.events...)
		if len(next) > f.cfg.MaxEvents {
			next = next[:f.cfg.MaxEvents]
		}
		f.events = next
		f.lastUpdate = f.now()
		if fallback {
			f.onFallback = true
		}
	}
	f.mu.Unlock()

	if len(added) > 0 {
		FeedEvents.Add(float64(len(added)))
		f.subMu.RLock()
		for _, s := range f.subscribers {
			s.FeedEvents(added)
		}
		f.subMu.RUnlock()
	}
	return added
}

// remember must be called with f.mu held.
func (f *EventFeed) remember(key string) {
	f.seen[key] = struct{}{}
	f.seenOrder = append(f.seenOrder, key)
	if limit := f.cfg.MaxEvents * seenFactor; len(f.seenOrder) > limit {
		drop := len(f.seenOrder) - limit
		for _, k := range f.seenOrder[:drop] {
			delete(f.seen, k)
		}
		f.seenOrder = append([]string(nil), f.seenOrder[drop:]...)
	}
}

// Refresh fetches the latest page on demand.
func (f *EventFeed) Refresh(ctx context.Context) ([]models.Event, error) {
	events, err := f.source.Events(ctx, feedPage, feedPageSize)
	if err != nil {
		return nil, err
	}
	return f.Merge(events), nil
}

// Run loads the initial page and keeps the socket connected until ctx is
// cancelled.
func (f *EventFeed) Run(ctx context.Context) error {
	defer f.stopPolling()

	f.LoadInitial(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		f.mu.RLock()
		retry := f.retry
		f.mu.RUnlock()
		if retry == 0 {
			f.setStatus(FeedConnecting)
		} else {
			f.setStatus(FeedOffline)
		}

		url := f.urls.WebSocketURL(ctx)
		f.mu.Lock()
		f.url = url
		f.mu.Unlock()

		conn, err := f.dial(ctx, url)
		if err == nil {
			f.onOpen()
			err = f.readLoop(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}

		delay := f.onClose(ctx, err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// LoadInitial merges the first page of events, or the fallback events when
// upstream cannot be reached. Run calls it before connecting.
func (f *EventFeed) LoadInitial(ctx context.Context) {
	events, err := f.source.Events(ctx, feedPage, feedPageSize)
	usedFallback := false
	if err != nil {
		f.mu.RLock()
		fallback := f.fallback
		f.mu.RUnlock()
		f.log.Warn("Initial event load failed", zap.Error(err), zap.Int("fallback_events", len(fallback)))
		events = fallback
		usedFallback = true
	}

	reversed := make([]models.Event, len(events))
	for i := range events {
		reversed[len(events)-1-i] = events[i]
	}
	added := f.merge(reversed, usedFallback)
	f.log.Info("Initial events loaded", zap.Int("count", len(added)))
}

func (f *EventFeed) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, resp, err := f.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, errors.Join(err, &UpstreamStatusError{Target: "events_ws", URL: url, StatusCode: resp.StatusCode})
		}
		return nil, err
	}
	return conn, nil
}

func (f *EventFeed) onOpen() {
	f.mu.Lock()
	f.retry = 0
	f.offlineSince = time.Time{}
	f.mu.Unlock()

	f.stopPolling()
	f.setStatus(FeedLive)
	f.log.Info("Event socket connected")
}

// onClose records the outage, starts polling once it has lasted long
// enough, and returns the delay before the next attempt.
func (f *EventFeed) onClose(ctx context.Context, cause error) time.Duration {
	f.mu.Lock()
	now := f.now()
	if f.offlineSince.IsZero() {
		f.offlineSince = now
	}
	offlineFor := now.Sub(f.offlineSince)
	delay := f.backoff(f.retry)
	f.retry++
	retry := f.retry
	f.mu.Unlock()

	f.setStatus(FeedOffline)
	f.log.Warn("Event socket closed",
		zap.Error(cause),
		zap.Int("retry", retry),
		zap.Duration("offline_for", offlineFor),
		zap.Duration("reconnect_in", delay))

	if f.cfg.PollFallback && offlineFor > f.cfg.OfflineBeforePoll {
		f.startPolling(ctx)
	}
	return delay
}

// backoff returns min(max, base*2^retry) plus up to BackoffJitter.
func (f *EventFeed) backoff(retry int) time.Duration {
	d := f.cfg.BackoffMax
	base := f.cfg.BackoffBase
	// base<<retry stays within max, and so cannot overflow, below this shift
	if base > 0 && base < d && retry >= 0 && retry < bits.Len64(uint64(d/base)) {
		if exp := base << uint(retry); exp < d {
			d = exp
		}
	}
	return d + f.jitter(f.cfg.BackoffJitter)
}

func (f *EventFeed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.handleMessage(message)
	}
}

type feedMessage struct {
	Event   *models.Event     `json:"event"`
	Events  []models.Event    `json:"events"`
	EventID models.FlexString `json:"event_id"`
	Source  models.FlexString `json:"source"`
}

// handleMessage accepts {"event":{...}}, {"events":[...]} or a bare event.
// Keepalives and anything that is not JSON are ignored.
func (f *EventFeed) handleMessage(data []byte) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		f.log.Debug("Ignoring non-event message", zap.Int("bytes", len(data)))
		return
	}

	var msg feedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		f.log.Debug("Ignoring undecodable message", zap.Error(err))
		return
	}

	switch {
	case msg.Event != nil:
		ev := msg.Event
		if ev.EventID != "" || ev.Source != "" || ev.CreateTime != "" {
			f.Merge([]models.Event{*ev})
		}
	case msg.Events != nil:
		f.Merge(msg.Events)
	case msg.EventID != "" || msg.Source != "":
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			f.log.Debug("Ignoring malformed event", zap.Error(err))
			return
		}
		f.Merge([]models.Event{ev})
	default:
		f.log.Debug("Ignoring non-event message")
	}
}

func (f *EventFeed) startPolling(ctx context.Context) {
	f.pollMu.Lock()
	defer f.pollMu.Unlock()
	if f.pollCancel != nil {
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	f.pollCancel = cancel
	f.pollWG.Add(1)
	f.log.Info("Starting poll fallback", zap.Duration("interval", f.cfg.PollInterval))

	go func() {
		defer f.pollWG.Done()
		ticker := time.NewTicker(f.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				events, err := f.source.Events(pollCtx, feedPage, feedPageSize)
				if err != nil {
					f.log.Debug("Poll failed", zap.Error(err))
					continue
				}
				f.Merge(events)
			}
		}
	}()
}

func (f *EventFeed) stopPolling() {
	f.pollMu.Lock()
	cancel := f.pollCancel
	f.pollCancel = nil
	f.pollMu.Unlock()

	if cancel != nil {
		cancel()
		f.pollWG.Wait()
		f.log.Info("Poll fallback stopped")
	}
}

func (f *EventFeed) isPolling() bool {
	f.pollMu.Lock()
	defer f.pollMu.Unlock()
	return f.pollCancel != nil
}

func (f *EventFeed) setStatus(status FeedStatus) {
	f.mu.Lock()
	changed := f.status != status
	f.status = status
	f.mu.Unlock()

	FeedState.Set(status.gauge())
	if !changed {
		return
	}
	f.subMu.RLock()
	for _, s := range f.subscribers {
		s.FeedStatus(status)
	}
	f.subMu.RUnlock()
}
