// Package ws implements the downstream WebSocket hub for frigate-mirror.
//
// Hub manages a set of connected dashboard clients. On connect a client
// receives one frame per topic currently held in the state mirror, so late
// subscribers see retained state immediately. After that the hub broadcasts
// every mirror update as it arrives.
//
// The hub is bidirectional: frames received from dashboard clients are
// parsed as {topic, payload, retain} and forwarded to the upstream
// connection through the Publisher interface. Malformed frames are ignored.
//
// New(state, publisher) creates a Hub.
// Hub.Run(ctx) consumes the mirror's update stream — blocks until ctx is
// cancelled, then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket.
//
// Frame format, both directions:
//
//	{"topic": "<name>", "payload": <any>, "retain": false}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The WebSocket endpoint is mounted at /ws by the daemon.
package ws
