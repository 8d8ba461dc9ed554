// Package config loads and watches the mirror configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Mirror} — full config tree parsed from YAML
//   - MirrorConfig — upstream_url, api_url, metrics_url, http_port,
//     stats_interval, send_buffer, upstream_auth, local_auth
//   - AuthConfig — mode (apikey|none), header, key_env; Key() resolves the
//     key from the environment
//
// Load(path) reads the YAML file, applies defaults (port 5001, 60s stats
// interval, 64 frame send buffer), then validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after each
// reload.
package config
