package logging

import (
	"bytes"
	"log/slog"
	"strings"
)

// BridgeWriter is an io.Writer that forwards stdlib log output into slog.
// A leading "[category] " prefix becomes the component field.
type BridgeWriter struct {
	component string
}

// NewBridgeWriter creates a writer whose lines default to the given component.
// Pass it to log.SetOutput after Init.
func NewBridgeWriter(defaultComponent string) *BridgeWriter {
	return &BridgeWriter{component: defaultComponent}
}

// Write treats each call as one log line.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := stripLogTimestamp(string(bytes.TrimSpace(p)))
	if msg == "" {
		return n, nil
	}

	component := bw.component
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "] "); end > 0 {
			component = canonicalComponent(strings.ToLower(msg[1:end]))
			msg = msg[end+2:]
		}
	}

	Logger().Info(msg, slog.String("component", component))
	return n, nil
}

// stripLogTimestamp drops the "15:04:05 " or "15:04:05.000000 " prefix the
// stdlib logger adds; slog records its own time.
func stripLogTimestamp(s string) string {
	if len(s) > 16 && s[2] == ':' && s[5] == ':' && s[8] == '.' && s[15] == ' ' {
		return s[16:]
	}
	if len(s) > 9 && s[2] == ':' && s[5] == ':' && s[8] == ' ' {
		return s[9:]
	}
	return s
}

func canonicalComponent(cat string) string {
	switch cat {
	case "search", "index", "match":
		return CompSearch
	case "ui", "palette", "tui":
		return CompUI
	case "storage", "statedb", "db":
		return CompStorage
	case "workspace", "watcher", "snapshot":
		return CompWorkspace
	case "config":
		return CompConfig
	case "perf":
		return CompPerf
	default:
		return cat
	}
}
