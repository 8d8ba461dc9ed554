package api

import "encoding/json"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	UpstreamConnected bool    `json:"upstream_connected"`
	TopicCount        int     `json:"topic_count"`
	ClientCount       int     `json:"client_count"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// TopicResponse is one mirrored topic in GET /api/v1/topics or
// GET /api/v1/topics/{topic}.
type TopicResponse struct {
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Retain    bool            `json:"retain"`
	UpdatedAt string          `json:"updated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
