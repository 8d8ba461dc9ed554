// Package api implements the HTTP REST API for frigate-mirror.
//
// New(state, upstream, emitter, counter) returns an http.Handler serving:
//
//	GET /api/v1/health         — upstream status, topic/client counts, uptime
//	GET /api/v1/topics         — all mirrored topics ([]TopicResponse)
//	GET /api/v1/topics/{topic} — single topic; 404 if absent. Topic names
//	                             contain slashes (front_door/detect/state),
//	                             so the whole remaining path is the topic.
//	GET /api/v1/stats          — latest stats snapshot
//	GET /api/v1/stats/history  — retained stats snapshots, oldest first
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
