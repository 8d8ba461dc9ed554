package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/a-jackson/frigate/pkg/client"
	"github.com/a-jackson/frigate/pkg/topics"
)

const (
	// defaultStartDelay gives the upstream connection time to establish
	// before the first collection.
	defaultStartDelay = 10 * time.Second

	// maxHistory bounds the retained snapshot history.
	maxHistory = 10
)

// Snapshot is one stats collection.
type Snapshot struct {
	UptimeSeconds     float64            `json:"uptime_seconds"`
	UpstreamConnected bool               `json:"upstream_connected"`
	TopicCount        int                `json:"topic_count"`
	ClientCount       int                `json:"client_count"`
	Exporter          map[string]float64 `json:"exporter,omitempty"`
	CollectedAt       string             `json:"collected_at"` // RFC3339
}

// Collector produces one Snapshot. Injectable so tests control the data.
type Collector func(ctx context.Context) Snapshot

// Emitter runs the periodic stats collection loop.
type Emitter struct {
	state      *client.State
	interval   time.Duration
	collect    Collector
	startDelay time.Duration

	mu      sync.Mutex
	history []Snapshot
}

// New creates an Emitter publishing into state every interval.
func New(state *client.State, interval time.Duration, collect Collector) *Emitter {
	return &Emitter{
		state:      state,
		interval:   interval,
		collect:    collect,
		startDelay: defaultStartDelay,
	}
}

// Latest returns the most recent snapshot, collecting one on demand when no
// history exists yet.
func (e *Emitter) Latest(ctx context.Context) Snapshot {
	e.mu.Lock()
	if n := len(e.history); n > 0 {
		snap := e.history[n-1]
		e.mu.Unlock()
		return snap
	}
	e.mu.Unlock()

	snap := e.collect(ctx)
	e.mu.Lock()
	e.history = append(e.history, snap)
	e.mu.Unlock()
	return snap
}

// History returns a copy of the retained snapshots, oldest first.
func (e *Emitter) History() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Snapshot, len(e.history))
	copy(out, e.history)
	return out
}

// Run starts the collection loop. After the start delay it collects a
// snapshot every interval, trims history to the last ten, and publishes the
// snapshot on the mirror/stats topic. Run blocks until ctx is cancelled.
func (e *Emitter) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(e.startDelay):
	}

	t := time.NewTicker(e.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stats: emitter exiting")
			return
		case <-t.C:
			slog.Debug("stats: starting collection")
			e.emit(ctx)
			slog.Debug("stats: finished collection")
		}
	}
}

// emit collects one snapshot, records it, and publishes it into the mirror.
func (e *Emitter) emit(ctx context.Context) {
	snap := e.collect(ctx)

	e.mu.Lock()
	e.history = append(e.history, snap)
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
	}
	e.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("stats: marshal snapshot", "err", err)
		return
	}
	e.state.Set(topics.MirrorStats, data, true)
}
