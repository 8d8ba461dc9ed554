package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfig writes content to a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
mirror:
  upstream_url: ws://frigate:5000/ws
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mirror.HTTPPort != DefaultHTTPPort {
		t.Errorf("HTTPPort: got %d, want %d", cfg.Mirror.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Mirror.StatsInterval != DefaultStatsInterval {
		t.Errorf("StatsInterval: got %v, want %v", cfg.Mirror.StatsInterval, DefaultStatsInterval)
	}
	if cfg.Mirror.SendBuffer != DefaultSendBuffer {
		t.Errorf("SendBuffer: got %d, want %d", cfg.Mirror.SendBuffer, DefaultSendBuffer)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
mirror:
  upstream_url: wss://frigate.example:8971/ws
  api_url: https://frigate.example:8971
  metrics_url: https://frigate.example:8971/api/metrics
  http_port: 9000
  stats_interval: 30s
  send_buffer: 128
  upstream_auth:
    mode: apikey
    key_env: FRIGATE_KEY
  local_auth:
    mode: apikey
    header: x-mirror-key
    key_env: MIRROR_KEY
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := cfg.Mirror
	if m.UpstreamURL != "wss://frigate.example:8971/ws" {
		t.Errorf("UpstreamURL: got %q", m.UpstreamURL)
	}
	if m.HTTPPort != 9000 {
		t.Errorf("HTTPPort: got %d, want 9000", m.HTTPPort)
	}
	if m.StatsInterval != 30*time.Second {
		t.Errorf("StatsInterval: got %v, want 30s", m.StatsInterval)
	}
	if m.LocalAuth.EffectiveHeader() != "x-mirror-key" {
		t.Errorf("LocalAuth header: got %q", m.LocalAuth.EffectiveHeader())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "mirror: [not a map")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing upstream_url", "mirror:\n  http_port: 8080\n"},
		{"http scheme", "mirror:\n  upstream_url: http://frigate:5000/ws\n"},
		{"port out of range", "mirror:\n  upstream_url: ws://f/ws\n  http_port: 70000\n"},
		{"negative interval", "mirror:\n  upstream_url: ws://f/ws\n  stats_interval: -5s\n"},
		{"zero buffer", "mirror:\n  upstream_url: ws://f/ws\n  send_buffer: -1\n"},
		{"bad auth mode", "mirror:\n  upstream_url: ws://f/ws\n  local_auth:\n    mode: oauth\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAuthConfig_Key(t *testing.T) {
	t.Setenv("TEST_MIRROR_KEY", "s3cret")

	a := AuthConfig{Mode: "apikey", KeyEnv: "TEST_MIRROR_KEY"}
	if got := a.Key(); got != "s3cret" {
		t.Errorf("Key: got %q, want s3cret", got)
	}

	empty := AuthConfig{}
	if got := empty.Key(); got != "" {
		t.Errorf("Key with no env: got %q, want empty", got)
	}
}

func TestAuthConfig_EffectiveHeader_Default(t *testing.T) {
	a := AuthConfig{}
	if got := a.EffectiveHeader(); got != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		Watch(ctx, path, func(cfg *Config, err error) { //nolint:errcheck
			if err != nil {
				return
			}
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	updated := "mirror:\n  upstream_url: ws://other:5000/ws\n"
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Mirror.UpstreamURL != "ws://other:5000/ws" {
			t.Errorf("UpstreamURL after reload: got %q", cfg.Mirror.UpstreamURL)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatch_InvalidReload_SurfacesError(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failures := make(chan error, 1)
	go func() {
		Watch(ctx, path, func(cfg *Config, err error) { //nolint:errcheck
			if err == nil {
				return
			}
			select {
			case failures <- err:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)

	// A broken edit must reach the callback as an error, not vanish into
	// the logs.
	if err := os.WriteFile(path, []byte("mirror: ["), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case err := <-failures:
		if err == nil {
			t.Fatal("expected a reload error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the reload error")
	}
}
