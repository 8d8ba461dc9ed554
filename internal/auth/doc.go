// Package auth provides API key authentication middleware for the mirror's
// local HTTP surface (REST API and WebSocket hub).
package auth
