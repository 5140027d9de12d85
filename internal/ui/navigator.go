package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nickgarreis/superlane-sub004/internal/search"
)

// NavCall is one call an activated result made on the host
type NavCall struct {
	Method string            `json:"method"`
	Args   map[string]string `json:"args,omitempty"`
}

func (c NavCall) String() string {
	if len(c.Args) == 0 {
		return c.Method
	}
	parts := make([]string, 0, len(c.Args))
	for _, k := range []string{"view", "projectId", "type", "taskId", "fileName", "fileTab", "tab"} {
		if v, ok := c.Args[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return c.Method + " " + strings.Join(parts, " ")
}

// NavRecorder is a search.Navigator for hosts that act after the palette
// exits: it records every call in order and remembers whether Close ran.
type NavRecorder struct {
	mu     sync.Mutex
	calls  []NavCall
	closed bool
}

var _ search.Navigator = (*NavRecorder)(nil)

func (r *NavRecorder) add(method string, args map[string]string) {
	r.mu.Lock()
	r.calls = append(r.calls, NavCall{Method: method, Args: args})
	r.mu.Unlock()
}

func (r *NavRecorder) Navigate(view string) {
	r.add("navigate", map[string]string{"view": view})
}

func (r *NavRecorder) HighlightNavigate(projectID string, h search.Highlight) {
	args := map[string]string{"projectId": projectID, "type": h.Type}
	if h.TaskID != "" {
		args["taskId"] = h.TaskID
	}
	if h.FileName != "" {
		args["fileName"] = h.FileName
	}
	if h.FileTab != "" {
		args["fileTab"] = h.FileTab
	}
	r.add("highlightNavigate", args)
}

func (r *NavRecorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.add("close", nil)
}

func (r *NavRecorder) OpenCreateProject() {
	r.add("openCreateProject", nil)
}

func (r *NavRecorder) OpenSettings(tab string) {
	var args map[string]string
	if tab != "" {
		args = map[string]string{"tab": tab}
	}
	r.add("openSettings", args)
}

func (r *NavRecorder) OpenInbox() {
	r.add("openInbox", nil)
}

// Calls returns the recorded calls in order
func (r *NavRecorder) Calls() []NavCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NavCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Closed reports whether the palette was asked to close
func (r *NavRecorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
