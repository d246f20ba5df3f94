// Package logutil locates the log files written by focus components.
package logutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/focus/config"
	"github.com/grovetools/focus/logging"
	"github.com/grovetools/focus/pkg/paths"
	"github.com/grovetools/focus/util/pathutil"
)

// FindLogFile returns the log file a component writes to. A file path set
// in the logging config wins; otherwise the newest dated file in the
// state log directory is used.
func FindLogFile(cfg *config.Config, component string) (string, error) {
	var logCfg logging.Config
	if cfg != nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			return "", err
		}
	}

	if logCfg.File.Path != "" {
		return pathutil.Expand(logCfg.File.Path)
	}
	return FindLatestLogFile(paths.LogDir(), component)
}

// FindLatestLogFile finds the most recent "<component>-<date>.log" in dir,
// preferring files with content over empty ones. Dates sort lexically.
func FindLatestLogFile(dir, component string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("could not read log directory %s: %w", dir, err)
	}

	prefix := component + "-"
	var latest, latestNonEmpty string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		// Skip other components sharing the prefix, e.g. "focusd-test-".
		if date := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log"); len(date) != len("2006-01-02") {
			continue
		}
		if name > latest {
			latest = name
		}
		if info, err := entry.Info(); err == nil && info.Size() > 0 && name > latestNonEmpty {
			latestNonEmpty = name
		}
	}

	switch {
	case latestNonEmpty != "":
		return filepath.Join(dir, latestNonEmpty), nil
	case latest != "":
		return filepath.Join(dir, latest), nil
	default:
		return "", fmt.Errorf("no %s log files found in %s", component, dir)
	}
}
