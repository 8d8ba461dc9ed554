package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FeatureConfig is one camera feature's settings. Only the enabled flag is
// relevant for seeding; the rest of the server's config tree is ignored.
type FeatureConfig struct {
	Enabled bool `json:"enabled"`
}

// OnvifConfig holds the ONVIF section of a camera's configuration.
type OnvifConfig struct {
	Autotracking FeatureConfig `json:"autotracking"`
}

// CameraConfig is the per-camera slice of the server configuration used to
// seed the topic state.
type CameraConfig struct {
	Detect    FeatureConfig `json:"detect"`
	Record    FeatureConfig `json:"record"`
	Snapshots FeatureConfig `json:"snapshots"`
	Audio     FeatureConfig `json:"audio"`
	Onvif     OnvifConfig   `json:"onvif"`
}

// Config is the server configuration as served by GET /api/config, reduced
// to the fields this client reads.
type Config struct {
	Cameras map[string]CameraConfig `json:"cameras"`
}

// FetchConfig retrieves the server configuration from <baseURL>/api/config.
// header is applied to the request when non-nil (auth headers).
func FetchConfig(ctx context.Context, httpClient *http.Client, baseURL string, header http.Header) (*Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("client: build config request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client: fetch config: unexpected status %d", resp.StatusCode)
	}

	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("client: decode config: %w", err)
	}
	return &cfg, nil
}
