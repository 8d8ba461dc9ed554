// Package client implements the Frigate dashboard WebSocket client.
//
// Client maintains a persistent connection to Frigate's /ws endpoint and
// mirrors every {topic, payload, retain} frame it receives into a State,
// a last-write-wins topic store. On connect it fetches the server
// configuration and seeds the per-camera feature topics from the enabled
// flags, so a consumer sees sensible values before the first push arrives.
//
// Typed accessor/sender pairs in hooks.go cover the topics the dashboard
// cares about: detect/recordings/snapshots/audio/autotracker toggles, PTZ
// commands, the restart trigger, the events/reviews/stats feeds, and
// per-camera motion and audio activity.
//
// Publish is fire-and-forget: frames published while the connection is not
// open are dropped silently, matching the transport's no-delivery-guarantee
// contract. Run(ctx) reconnects with exponential backoff until ctx is
// cancelled.
package client
