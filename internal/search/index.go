package search

import (
	"log/slog"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

var searchLog = logging.ForComponent(logging.CompSearch)

// ProjectEntry is a project plus its precomputed searchable string
type ProjectEntry struct {
	Project    *workspace.Project
	Searchable string
}

// TaskEntry is a task plus its owning project and searchable string.
// Task.ProjectID is always set.
type TaskEntry struct {
	Task       workspace.Task
	Project    *workspace.Project
	Searchable string
}

// FileEntry is a file upload plus its searchable string. Project is nil for
// unattached files and for files whose project is not in the snapshot.
type FileEntry struct {
	File       *workspace.FileRecord
	Project    *workspace.Project
	Searchable string
}

// Indices holds the three per-kind indices of one rebuild, in index order
type Indices struct {
	Projects []ProjectEntry
	Tasks    []TaskEntry
	Files    []FileEntry

	projectsByID map[string]*workspace.Project
	tasksByKey   map[string]int
}

// Project looks up a live project by id
func (ix *Indices) Project(id string) (*workspace.Project, bool) {
	if ix == nil {
		return nil, false
	}
	p, ok := ix.projectsByID[id]
	return p, ok
}

// Task looks up an indexed task by project and task id
func (ix *Indices) Task(projectID, taskID string) (TaskEntry, bool) {
	if ix == nil {
		return TaskEntry{}, false
	}
	i, ok := ix.tasksByKey[TaskKey(projectID, taskID)]
	if !ok {
		return TaskEntry{}, false
	}
	return ix.Tasks[i], true
}

// Stats describes the last rebuild
type Stats struct {
	Builds   int
	Projects int
	Tasks    int
	Files    int
	Hits     int
	Misses   int
	Duration time.Duration
}

// Session owns the signature caches of one open palette. It is not safe for
// concurrent use; each palette builds its own and discards it with Close.
type Session struct {
	cacheEnabled bool
	dueLabel     DueDateFormatter
	mode         SignatureMode

	projects *signatureCache
	tasks    *signatureCache
	files    *signatureCache

	last      *workspace.Snapshot
	lastIndex *Indices
	stats     Stats
}

// Option configures a Session
type Option func(*Session)

// WithoutCache makes every rebuild recompute every searchable string
func WithoutCache() Option {
	return func(s *Session) { s.cacheEnabled = false }
}

// WithDueDateFormatter replaces the due-date label used for tasks
func WithDueDateFormatter(f DueDateFormatter) Option {
	return func(s *Session) {
		if f != nil {
			s.dueLabel = f
		}
	}
}

// WithSignatureEscaping length-prefixes signature fields so that values
// containing "|" cannot produce colliding signatures.
func WithSignatureEscaping() Option {
	return func(s *Session) { s.mode = SignatureEscaped }
}

// NewSession creates an index session
func NewSession(opts ...Option) *Session {
	s := &Session{
		cacheEnabled: true,
		dueLabel:     workspace.DueDateLabel,
		mode:         SignatureJoined,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.projects = newSignatureCache(s.cacheEnabled)
	s.tasks = newSignatureCache(s.cacheEnabled)
	s.files = newSignatureCache(s.cacheEnabled)
	return s
}

// Sync rebuilds only when snap is not the snapshot of the previous call.
// A different pointer with identical content still rebuilds, served from
// the cache.
func (s *Session) Sync(snap *workspace.Snapshot) *Indices {
	if snap != nil && snap == s.last && s.lastIndex != nil {
		return s.lastIndex
	}
	return s.Build(snap)
}

// Build reconstructs all three indices from snap in one pass per kind
func (s *Session) Build(snap *workspace.Snapshot) *Indices {
	start := time.Now()
	if snap == nil {
		snap = &workspace.Snapshot{}
	}

	byID := snap.ProjectsByID()
	ix := &Indices{projectsByID: byID}

	s.projects.begin(len(byID))
	for i := range snap.Projects {
		p := &snap.Projects[i]
		if byID[p.ID] != p {
			continue // duplicate id, first occurrence wins
		}
		n := normalizeProject(p, s.mode)
		ix.Projects = append(ix.Projects, ProjectEntry{
			Project:    p,
			Searchable: s.projects.reconcile(n.key, n.signature, n.searchable),
		})
	}

	tasks := snap.FlattenTasks()
	s.tasks.begin(len(tasks))
	ix.tasksByKey = make(map[string]int, len(tasks))
	for _, t := range tasks {
		p, ok := byID[t.ProjectID]
		if !ok || p.HidesChildren() {
			continue
		}
		n := normalizeTask(&t, p.Name, s.dueLabel, s.mode)
		if _, dup := ix.tasksByKey[n.key]; dup {
			continue
		}
		ix.tasksByKey[n.key] = len(ix.Tasks)
		ix.Tasks = append(ix.Tasks, TaskEntry{
			Task:       t,
			Project:    p,
			Searchable: s.tasks.reconcile(n.key, n.signature, n.searchable),
		})
	}

	s.files.begin(len(snap.Files))
	seenFiles := make(map[string]struct{}, len(snap.Files))
	for i := range snap.Files {
		f := &snap.Files[i]
		p := byID[f.ProjectID]
		if p != nil && p.HidesChildren() {
			continue
		}
		n := normalizeFile(f, s.mode)
		if _, dup := seenFiles[n.key]; dup {
			continue
		}
		seenFiles[n.key] = struct{}{}
		ix.Files = append(ix.Files, FileEntry{
			File:       f,
			Project:    p,
			Searchable: s.files.reconcile(n.key, n.signature, n.searchable),
		})
	}

	hits := s.projects.hits + s.tasks.hits + s.files.hits
	misses := s.projects.misses + s.tasks.misses + s.files.misses
	s.projects.commit()
	s.tasks.commit()
	s.files.commit()

	s.last = snap
	s.lastIndex = ix
	s.stats = Stats{
		Builds:   s.stats.Builds + 1,
		Projects: len(ix.Projects),
		Tasks:    len(ix.Tasks),
		Files:    len(ix.Files),
		Hits:     hits,
		Misses:   misses,
		Duration: time.Since(start),
	}

	logging.Aggregate(logging.CompSearch, "index_rebuild",
		slog.Int("hits", hits),
		slog.Int("misses", misses))
	searchLog.Debug("index_built",
		slog.Int("projects", len(ix.Projects)),
		slog.Int("tasks", len(ix.Tasks)),
		slog.Int("files", len(ix.Files)),
		slog.Int("cache_hits", hits),
		slog.Int("cache_misses", misses),
		slog.Duration("elapsed", s.stats.Duration))
	return ix
}

// Stats returns counters for the most recent rebuild
func (s *Session) Stats() Stats {
	return s.stats
}

// CachedEntries returns the number of cached searchable strings
func (s *Session) CachedEntries() int {
	return s.projects.size() + s.tasks.size() + s.files.size()
}

// Close drops the caches and the last snapshot reference
func (s *Session) Close() {
	s.projects.reset()
	s.tasks.reset()
	s.files.reset()
	s.last = nil
	s.lastIndex = nil
}
