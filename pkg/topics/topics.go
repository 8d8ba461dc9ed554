package topics

// Global topics not scoped to a camera.
const (
	// Events carries tracked object lifecycle updates.
	Events = "events"

	// Reviews carries review item lifecycle updates.
	Reviews = "reviews"

	// Stats carries the server's periodic stats snapshot.
	Stats = "stats"

	// Restart triggers a server restart when published to, and reports the
	// restart back to subscribers.
	Restart = "restart"

	// MirrorStats carries the mirror's own periodic stats snapshot,
	// published downstream only.
	MirrorStats = "mirror/stats"
)

// Payload values used by the feature state topics.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// StatePayload converts a boolean feature flag to its wire payload.
func StatePayload(enabled bool) string {
	if enabled {
		return PayloadOn
	}
	return PayloadOff
}

// Enabled reports whether a feature state payload means "enabled".
// Anything other than "ON" is treated as disabled.
func Enabled(payload string) bool {
	return payload == PayloadOn
}

// DetectState is the topic reporting object detection on/off for a camera.
func DetectState(camera string) string { return camera + "/detect/state" }

// DetectSet is the topic that toggles object detection for a camera.
func DetectSet(camera string) string { return camera + "/detect/set" }

// RecordingsState is the topic reporting recording on/off for a camera.
func RecordingsState(camera string) string { return camera + "/recordings/state" }

// RecordingsSet is the topic that toggles recording for a camera.
func RecordingsSet(camera string) string { return camera + "/recordings/set" }

// SnapshotsState is the topic reporting snapshots on/off for a camera.
func SnapshotsState(camera string) string { return camera + "/snapshots/state" }

// SnapshotsSet is the topic that toggles snapshots for a camera.
func SnapshotsSet(camera string) string { return camera + "/snapshots/set" }

// AudioState is the topic reporting audio detection on/off for a camera.
func AudioState(camera string) string { return camera + "/audio/state" }

// AudioSet is the topic that toggles audio detection for a camera.
func AudioSet(camera string) string { return camera + "/audio/set" }

// AutotrackerState is the topic reporting PTZ autotracking on/off for a camera.
func AutotrackerState(camera string) string { return camera + "/ptz_autotracker/state" }

// AutotrackerSet is the topic that toggles PTZ autotracking for a camera.
func AutotrackerSet(camera string) string { return camera + "/ptz_autotracker/set" }

// PTZ is the topic that accepts pan/tilt/zoom commands for a camera.
func PTZ(camera string) string { return camera + "/ptz" }

// Motion is the topic reporting motion activity for a camera (ON/OFF).
func Motion(camera string) string { return camera + "/motion" }

// AudioLevel is the topic reporting the current audio level for a camera
// in dBFS (a negative float).
func AudioLevel(camera string) string { return camera + "/audio/dBFS" }
