package client

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/a-jackson/frigate/pkg/topics"
)

// watchBufSize is the per-watcher update buffer depth. Updates beyond this
// are dropped for that watcher rather than blocking Set.
const watchBufSize = 16

// Entry is the last-seen payload for a topic together with the time it was
// received.
type Entry struct {
	Payload   json.RawMessage
	Retain    bool
	UpdatedAt time.Time
}

// State is a thread-safe last-write-wins topic store. Every frame received
// from the server replaces the previous entry for its topic; watchers are
// notified of each update.
type State struct {
	mu       sync.RWMutex
	data     map[string]Entry
	watchers map[*watcher]struct{}
	now      func() time.Time // injectable for deterministic tests
}

// watcher delivers updates for one topic, or for all topics when topic is
// empty.
type watcher struct {
	topic string
	ch    chan Message
}

// NewState creates an empty State.
func NewState() *State {
	return &State{
		data:     make(map[string]Entry),
		watchers: make(map[*watcher]struct{}),
		now:      time.Now,
	}
}

// Set stores payload as the current value for topic and notifies watchers.
// A watcher whose buffer is full misses the update; Set never blocks.
func (s *State) Set(topic string, payload json.RawMessage, retain bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[topic] = Entry{
		Payload:   payload,
		Retain:    retain,
		UpdatedAt: s.now(),
	}

	// Notify under the lock so a concurrent cancel cannot close a channel
	// mid-delivery. Sends are non-blocking.
	msg := Message{Topic: topic, Payload: payload, Retain: retain}
	for w := range s.watchers {
		if w.topic != "" && w.topic != topic {
			continue
		}
		select {
		case w.ch <- msg:
		default:
		}
	}
}

// Get returns the current entry for topic and whether one exists.
func (s *State) Get(topic string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[topic]
	return e, ok
}

// All returns a copy of every entry, keyed by topic.
func (s *State) All() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.data))
	for t, e := range s.data {
		out[t] = e
	}
	return out
}

// Topics returns the sorted list of topics with a current value.
func (s *State) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for t := range s.data {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of topics with a current value.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Watch returns a channel receiving every update for topic, and a cancel
// function that releases the watcher and closes the channel.
func (s *State) Watch(topic string) (<-chan Message, func()) {
	return s.watch(topic)
}

// WatchAll returns a channel receiving every update for every topic, and a
// cancel function that releases the watcher and closes the channel.
func (s *State) WatchAll() (<-chan Message, func()) {
	return s.watch("")
}

func (s *State) watch(topic string) (<-chan Message, func()) {
	w := &watcher{topic: topic, ch: make(chan Message, watchBufSize)}
	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.watchers[w]; ok {
			delete(s.watchers, w)
			close(w.ch)
		}
		s.mu.Unlock()
	}
	return w.ch, cancel
}

// Seed initialises the per-camera feature topics from the fetched server
// configuration. A topic that already holds a live value is left alone; a
// pushed state always wins over the config default.
func (s *State) Seed(cfg *Config) {
	if cfg == nil {
		return
	}
	for name, cam := range cfg.Cameras {
		s.seedTopic(topics.DetectState(name), cam.Detect.Enabled)
		s.seedTopic(topics.RecordingsState(name), cam.Record.Enabled)
		s.seedTopic(topics.SnapshotsState(name), cam.Snapshots.Enabled)
		s.seedTopic(topics.AudioState(name), cam.Audio.Enabled)
		s.seedTopic(topics.AutotrackerState(name), cam.Onvif.Autotracking.Enabled)
	}
}

func (s *State) seedTopic(topic string, enabled bool) {
	payload, err := json.Marshal(topics.StatePayload(enabled))
	if err != nil {
		return
	}
	s.mu.Lock()
	if _, ok := s.data[topic]; !ok {
		s.data[topic] = Entry{
			Payload:   payload,
			Retain:    true,
			UpdatedAt: s.now(),
		}
	}
	s.mu.Unlock()
}
