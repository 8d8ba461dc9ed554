package client

import (
	"encoding/json"
	"strconv"

	"github.com/a-jackson/frigate/pkg/topics"
)

// Event is one update on the events feed: a tracked object transitioning
// between states.
type Event struct {
	Type   string          `json:"type"` // "new" | "update" | "end"
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// Review is one update on the reviews feed: a review item transitioning
// between states.
type Review struct {
	Type   string          `json:"type"` // "new" | "update" | "end"
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// DetectState returns the last-seen detection state for camera ("ON"/"OFF").
func (c *Client) DetectState(camera string) (string, bool) {
	return c.topicString(topics.DetectState(camera))
}

// SetDetect toggles object detection for camera.
func (c *Client) SetDetect(camera string, enabled bool) {
	c.Publish(topics.DetectSet(camera), topics.StatePayload(enabled), false)
}

// RecordingsState returns the last-seen recording state for camera.
func (c *Client) RecordingsState(camera string) (string, bool) {
	return c.topicString(topics.RecordingsState(camera))
}

// SetRecordings toggles recording for camera.
func (c *Client) SetRecordings(camera string, enabled bool) {
	c.Publish(topics.RecordingsSet(camera), topics.StatePayload(enabled), false)
}

// SnapshotsState returns the last-seen snapshots state for camera.
func (c *Client) SnapshotsState(camera string) (string, bool) {
	return c.topicString(topics.SnapshotsState(camera))
}

// SetSnapshots toggles snapshots for camera.
func (c *Client) SetSnapshots(camera string, enabled bool) {
	c.Publish(topics.SnapshotsSet(camera), topics.StatePayload(enabled), false)
}

// AudioState returns the last-seen audio detection state for camera.
func (c *Client) AudioState(camera string) (string, bool) {
	return c.topicString(topics.AudioState(camera))
}

// SetAudio toggles audio detection for camera.
func (c *Client) SetAudio(camera string, enabled bool) {
	c.Publish(topics.AudioSet(camera), topics.StatePayload(enabled), false)
}

// AutotrackerState returns the last-seen PTZ autotracking state for camera.
func (c *Client) AutotrackerState(camera string) (string, bool) {
	return c.topicString(topics.AutotrackerState(camera))
}

// SetAutotracker toggles PTZ autotracking for camera.
func (c *Client) SetAutotracker(camera string, enabled bool) {
	c.Publish(topics.AutotrackerSet(camera), topics.StatePayload(enabled), false)
}

// SendPTZ publishes a pan/tilt/zoom command for camera, e.g. "MOVE_LEFT",
// "ZOOM_IN", "STOP", or "preset_<name>".
func (c *Client) SendPTZ(camera, command string) {
	c.Publish(topics.PTZ(camera), command, false)
}

// Restart asks the server to restart.
func (c *Client) Restart() {
	c.Publish(topics.Restart, "", false)
}

// RestartState returns the last payload seen on the restart topic. The
// server echoes restarts back to subscribers, so a value here means one was
// triggered this session.
func (c *Client) RestartState() (string, bool) {
	return c.topicString(topics.Restart)
}

// MotionActivity returns the last-seen motion state for camera ("ON"/"OFF").
func (c *Client) MotionActivity(camera string) (string, bool) {
	return c.topicString(topics.Motion(camera))
}

// AudioLevel returns the last-seen audio level for camera in dBFS.
func (c *Client) AudioLevel(camera string) (float64, bool) {
	e, ok := c.state.Get(topics.AudioLevel(camera))
	if !ok {
		return 0, false
	}
	var level float64
	if err := json.Unmarshal(e.Payload, &level); err == nil {
		return level, true
	}
	// The level sometimes arrives as a quoted number.
	if s, ok := payloadString(e.Payload); ok {
		if level, err := strconv.ParseFloat(s, 64); err == nil {
			return level, true
		}
	}
	return 0, false
}

// WatchEvents returns a channel of decoded events-feed updates and a cancel
// function. Updates that fail to decode are skipped.
func (c *Client) WatchEvents() (<-chan Event, func()) {
	return watchDecoded[Event](c.state, topics.Events)
}

// WatchReviews returns a channel of decoded reviews-feed updates and a
// cancel function. Updates that fail to decode are skipped.
func (c *Client) WatchReviews() (<-chan Review, func()) {
	return watchDecoded[Review](c.state, topics.Reviews)
}

// WatchStats returns a channel of raw stats-feed payloads and a cancel
// function. The stats schema is large and version-dependent, so payloads are
// delivered undecoded.
func (c *Client) WatchStats() (<-chan json.RawMessage, func()) {
	in, cancel := c.state.Watch(topics.Stats)
	out := make(chan json.RawMessage, watchBufSize)
	go func() {
		defer close(out)
		for msg := range in {
			select {
			case out <- msg.Payload:
			default:
			}
		}
	}()
	return out, cancel
}

// topicString returns the current payload for topic as a string.
func (c *Client) topicString(topic string) (string, bool) {
	e, ok := c.state.Get(topic)
	if !ok {
		return "", false
	}
	return payloadString(e.Payload)
}

// watchDecoded adapts a raw topic watch into a typed feed.
func watchDecoded[T any](s *State, topic string) (<-chan T, func()) {
	in, cancel := s.Watch(topic)
	out := make(chan T, watchBufSize)
	go func() {
		defer close(out)
		for msg := range in {
			var v T
			if err := decodePayload(msg.Payload, &v); err != nil {
				continue
			}
			select {
			case out <- v:
			default:
			}
		}
	}()
	return out, cancel
}
