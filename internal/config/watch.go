package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the mirror config file and calls onReload after every write,
// passing the freshly loaded config, or a nil config and the error that
// rejected it. Most settings apply on restart, so callers typically log and
// carry on; the error path exists so operators hear about a broken edit
// immediately instead of at the next restart.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onReload func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching mirror config", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Editors and orchestrators often replace the file via rename,
			// which arrives as Create; plain writes arrive as Write.
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: rejected reload", "path", path, "err", err)
			} else {
				slog.Info("config: reloaded", "path", path)
			}
			onReload(cfg, err)

			// An atomic save replaces the inode, so follow the new file.
			_ = w.Add(path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watch error", "err", err)
		}
	}
}
