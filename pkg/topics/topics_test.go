package topics

import "testing"

func TestCameraTopics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"DetectState", DetectState, "front_door/detect/state"},
		{"DetectSet", DetectSet, "front_door/detect/set"},
		{"RecordingsState", RecordingsState, "front_door/recordings/state"},
		{"RecordingsSet", RecordingsSet, "front_door/recordings/set"},
		{"SnapshotsState", SnapshotsState, "front_door/snapshots/state"},
		{"SnapshotsSet", SnapshotsSet, "front_door/snapshots/set"},
		{"AudioState", AudioState, "front_door/audio/state"},
		{"AudioSet", AudioSet, "front_door/audio/set"},
		{"AutotrackerState", AutotrackerState, "front_door/ptz_autotracker/state"},
		{"AutotrackerSet", AutotrackerSet, "front_door/ptz_autotracker/set"},
		{"PTZ", PTZ, "front_door/ptz"},
		{"Motion", Motion, "front_door/motion"},
		{"AudioLevel", AudioLevel, "front_door/audio/dBFS"},
	}
	for _, tc := range tests {
		if got := tc.fn("front_door"); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStatePayload(t *testing.T) {
	if got := StatePayload(true); got != PayloadOn {
		t.Errorf("StatePayload(true): got %q, want %q", got, PayloadOn)
	}
	if got := StatePayload(false); got != PayloadOff {
		t.Errorf("StatePayload(false): got %q, want %q", got, PayloadOff)
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{"ON", true},
		{"OFF", false},
		{"on", false},
		{"", false},
		{"garbage", false},
	}
	for _, tc := range tests {
		if got := Enabled(tc.payload); got != tc.want {
			t.Errorf("Enabled(%q): got %v, want %v", tc.payload, got, tc.want)
		}
	}
}
