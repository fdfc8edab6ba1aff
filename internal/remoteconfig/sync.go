package remoteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"thunderhug/api/internal/store"
)

const (
	// DefaultInterval matches the upstream sheet refresh schedule.
	DefaultInterval = 5 * time.Minute

	defaultRetryDelay = 500 * time.Millisecond
	maxRetries        = 10
)

// Syncer polls the meta sheet on a fixed interval and merges each payload
// into its Index. A missing payload triggers a short retry chain that runs
// alongside the interval polls without delaying them.
type Syncer struct {
	store      *store.Store
	index      *Index
	interval   time.Duration
	retryDelay time.Duration

	// retries mirrors the running retry chain's attempt count; it resets
	// on the first successful merge. Informational only.
	retries atomic.Int64
	// chainActive keeps at most one retry chain in flight.
	chainActive atomic.Bool

	verbose bool
}

// NewSyncer builds a syncer over its own fresh index. A non-positive
// interval selects DefaultInterval. Verbosity is fixed at construction so
// concurrent readers never observe it changing.
func NewSyncer(st *store.Store, interval time.Duration, verbose bool) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	index := NewIndex()
	index.Verbose = verbose
	return &Syncer{store: st, index: index, interval: interval, retryDelay: defaultRetryDelay, verbose: verbose}
}

// Index returns the index this syncer maintains.
func (s *Syncer) Index() *Index {
	return s.index
}

// Retries reports how far the current (or most recent) retry chain got
// before finding a payload; zero after a successful merge.
func (s *Syncer) Retries() int {
	return int(s.retries.Load())
}

// Run polls until ctx ends. The first poll happens immediately. A failed or
// empty poll is never fatal; the next scheduled attempt covers it.
func (s *Syncer) Run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll fetches the meta sheet once. Transport errors abort the cycle; an
// absent payload kicks off a retry chain.
func (s *Syncer) poll(ctx context.Context) {
	data, err := s.store.Get(ctx, store.MetaSheet)
	if errors.Is(err, store.ErrAbsent) {
		s.scheduleRetry(ctx)
		return
	}
	if err != nil {
		log.Printf("remote config poll failed: %v", err)
		return
	}
	s.apply(data)
}

// scheduleRetry starts a retry chain unless one is already running.
func (s *Syncer) scheduleRetry(ctx context.Context) {
	if !s.chainActive.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.chainActive.Store(false)
		s.retryLoop(ctx)
	}()
}

func (s *Syncer) retryLoop(ctx context.Context) {
	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()

	// Each chain gets the full retry budget; the counter tracks this
	// chain's progress, not a lifetime total.
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		data, err := s.store.Get(ctx, store.MetaSheet)
		if err == nil {
			s.apply(data)
			return
		}
		if !errors.Is(err, store.ErrAbsent) {
			log.Printf("remote config retry failed: %v", err)
			return
		}

		attempt++
		s.retries.Store(int64(attempt))
		s.debugf("remote config absent, retry %d of %d", attempt, maxRetries)
		if attempt >= maxRetries {
			log.Printf("remote config still absent after %d retries, waiting for next poll", maxRetries)
			return
		}
		timer.Reset(s.retryDelay)
	}
}

// apply decodes a meta sheet payload and merges it into the index.
func (s *Syncer) apply(data []byte) {
	var payload struct {
		Data []Item `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("remote config payload malformed: %v", err)
		return
	}
	s.index.Merge(payload.Data)
	s.retries.Store(0)
	s.debugf("remote config merged %d items", len(payload.Data))
}

func (s *Syncer) debugf(format string, args ...any) {
	if s.verbose {
		log.Printf(format, args...)
	}
}
