package workspace

import (
	"strings"
	"time"
)

// Project status labels used by the dashboard
const (
	StatusDraft     = "Draft"
	StatusReview    = "Review"
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

// UnassignedLabel is shown (and indexed) for tasks without an assignee
const UnassignedLabel = "Unassigned"

// NoDueDateLabel is the due-date label for tasks without a due date
const NoDueDateLabel = "No due date"

// ProjectStatus carries the status label plus its display colors
type ProjectStatus struct {
	Label    string `json:"label"`
	Color    string `json:"color,omitempty"`
	BgColor  string `json:"bgColor,omitempty"`
	DotColor string `json:"dotColor,omitempty"`
}

// Assignee is the person a task is assigned to
type Assignee struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Task is a unit of work inside a project
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Assignee  *Assignee `json:"assignee,omitempty"`
	DueDate   *int64    `json:"dueDate,omitempty"` // epoch milliseconds
	Completed bool      `json:"completed"`
	ProjectID string    `json:"projectId,omitempty"`
}

// AssigneeName returns the trimmed assignee name or UnassignedLabel
func (t Task) AssigneeName() string {
	if t.Assignee == nil {
		return UnassignedLabel
	}
	name := strings.TrimSpace(t.Assignee.Name)
	if name == "" {
		return UnassignedLabel
	}
	return name
}

// Project is a workspace project with its embedded tasks
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Scope       string        `json:"scope,omitempty"`
	Status      ProjectStatus `json:"status"`
	Archived    bool          `json:"archived"`
	Tasks       []Task        `json:"tasks,omitempty"`
}

// IsDraft reports whether the project is still a draft
func (p *Project) IsDraft() bool { return p.Status.Label == StatusDraft }

// IsCompleted reports whether the project has been completed
func (p *Project) IsCompleted() bool { return p.Status.Label == StatusCompleted }

// HidesChildren reports whether tasks and files of this project are kept out
// of the task and file indices. Draft, review and completed projects are only
// searchable through the project itself.
func (p *Project) HidesChildren() bool {
	switch p.Status.Label {
	case StatusDraft, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the project is live work: not archived, not
// completed and not a draft.
func (p *Project) IsActive() bool {
	return !p.Archived && !p.IsCompleted() && !p.IsDraft()
}

// FileRecord is an uploaded file, optionally attached to a project
type FileRecord struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId,omitempty"`
	Tab         string `json:"tab"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	DisplayDate int64  `json:"displayDate"` // epoch milliseconds
}

// Snapshot is one immutable view of the workspace as delivered by the data
// layer. Projects keep the insertion order of the project mapping.
type Snapshot struct {
	Projects []Project    `json:"projects"`
	Tasks    []Task       `json:"tasks,omitempty"`
	Files    []FileRecord `json:"files,omitempty"`
}

// ProjectsByID maps project ids to projects. The first occurrence of a
// duplicated id wins.
func (s *Snapshot) ProjectsByID() map[string]*Project {
	byID := make(map[string]*Project, len(s.Projects))
	for i := range s.Projects {
		p := &s.Projects[i]
		if _, exists := byID[p.ID]; exists {
			continue
		}
		byID[p.ID] = p
	}
	return byID
}

// FlattenTasks returns the caller-supplied task list when it is non-empty.
// Otherwise it walks each project's embedded tasks in project order and
// back-fills the owning project id.
func (s *Snapshot) FlattenTasks() []Task {
	if len(s.Tasks) > 0 {
		return s.Tasks
	}
	var tasks []Task
	for i := range s.Projects {
		p := &s.Projects[i]
		for _, t := range p.Tasks {
			if t.ProjectID == "" {
				t.ProjectID = p.ID
			}
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// DueDateLabel formats a task due date for display and indexing
func DueDateLabel(due *int64) string {
	if due == nil {
		return NoDueDateLabel
	}
	return time.UnixMilli(*due).UTC().Format("Jan 2, 2006")
}
