package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

var workspaceLog = logging.ForComponent(logging.CompWorkspace)

// File names of the directory layout
const (
	ProjectsFile = "projects.json"
	TasksFile    = "tasks.json"
	FilesFile    = "files.json"
)

// snapshotFile is the on-disk shape of a single-file snapshot. Projects may
// be an array or an object keyed by project id.
type snapshotFile struct {
	Projects json.RawMessage `json:"projects"`
	Tasks    []Task          `json:"tasks"`
	Files    []FileRecord    `json:"files"`
}

// Load reads a snapshot from a JSON file, or from a directory holding
// projects.json plus optional tasks.json and files.json.
func Load(path string) (*Snapshot, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext is Load with cancellation for the directory layout
func LoadContext(ctx context.Context, path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace: %w", err)
	}
	if info.IsDir() {
		return loadDir(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a single-file snapshot
func Parse(data []byte) (*Snapshot, error) {
	var raw snapshotFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse workspace: %w", err)
	}
	projects, err := decodeProjects(raw.Projects)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Projects: projects, Tasks: raw.Tasks, Files: raw.Files}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func loadDir(ctx context.Context, dir string) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := readPart(ctx, filepath.Join(dir, ProjectsFile), true)
		if err != nil {
			return err
		}
		projects, err := decodeProjects(data)
		if err != nil {
			return fmt.Errorf("%s: %w", ProjectsFile, err)
		}
		snap.Projects = projects
		return nil
	})
	g.Go(func() error {
		data, err := readPart(ctx, filepath.Join(dir, TasksFile), false)
		if err != nil || data == nil {
			return err
		}
		if err := json.Unmarshal(data, &snap.Tasks); err != nil {
			return fmt.Errorf("failed to parse %s: %w", TasksFile, err)
		}
		return nil
	})
	g.Go(func() error {
		data, err := readPart(ctx, filepath.Join(dir, FilesFile), false)
		if err != nil || data == nil {
			return err
		}
		if err := json.Unmarshal(data, &snap.Files); err != nil {
			return fmt.Errorf("failed to parse %s: %w", FilesFile, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	workspaceLog.Debug("workspace_dir_loaded",
		slog.String("dir", dir),
		slog.Int("projects", len(snap.Projects)),
		slog.Int("tasks", len(snap.Tasks)),
		slog.Int("files", len(snap.Files)))
	return snap, nil
}

// readPart returns nil data for a missing optional file
func readPart(ctx context.Context, path string, required bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// decodeProjects accepts an array of projects or an object keyed by project
// id. Object keys are read in document order, which becomes index order.
func decodeProjects(data json.RawMessage) ([]Project, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var projects []Project
		if err := json.Unmarshal(data, &projects); err != nil {
			return nil, fmt.Errorf("failed to parse projects: %w", err)
		}
		return projects, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("projects must be an array or an object")
	}
	var projects []Project
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse projects: %w", err)
		}
		key, _ := tok.(string)
		var p Project
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to parse project %q: %w", key, err)
		}
		if p.ID == "" {
			p.ID = key
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Validate rejects records without the identifiers the index keys on
func (s *Snapshot) Validate() error {
	for i, p := range s.Projects {
		if p.ID == "" {
			return fmt.Errorf("project %d (%q) has no id", i, p.Name)
		}
	}
	for i, t := range s.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task %d (%q) has no id", i, t.Title)
		}
	}
	for i, f := range s.Files {
		if f.ID == "" {
			return fmt.Errorf("file %d (%q) has no id", i, f.Name)
		}
	}
	return nil
}
