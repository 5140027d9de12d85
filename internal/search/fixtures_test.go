package search

import (
	"fmt"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

func dueAt(y int, m time.Month, d int) *int64 {
	ms := time.Date(y, m, d, 12, 0, 0, 0, time.UTC).UnixMilli()
	return &ms
}

func status(label string) workspace.ProjectStatus {
	return workspace.ProjectStatus{Label: label}
}

// sampleSnapshot covers every project state the index treats differently
func sampleSnapshot() *workspace.Snapshot {
	return &workspace.Snapshot{
		Projects: []workspace.Project{
			{
				ID: "project-1", Name: "Website Redesign", Description: "Marketing site refresh",
				Category: "Web", Status: status(workspace.StatusActive),
				Tasks: []workspace.Task{
					{ID: "task-1", Title: "Draft homepage wireframe", Assignee: &workspace.Assignee{Name: " Alice "}, DueDate: dueAt(2026, time.January, 15)},
					{ID: "task-2", Title: "Collect copy", Completed: true},
				},
			},
			{
				ID: "project-2", Name: "Launch Plan", Description: "Go to market",
				Category: "Marketing", Status: status(workspace.StatusDraft),
				Tasks: []workspace.Task{
					{ID: "task-1", Title: "Launch checklist"},
				},
			},
			{
				ID: "project-3", Name: "Mobile App", Description: "iOS and Android",
				Category: "Product", Scope: "MVP", Status: status(workspace.StatusActive),
				Tasks: []workspace.Task{
					{ID: "task-3", Title: "Ship onboarding", Assignee: &workspace.Assignee{Name: "Bob"}},
				},
			},
			{
				ID: "project-4", Name: "Old Portal", Description: "Customer portal",
				Category: "Web", Status: status(workspace.StatusCompleted),
				Tasks: []workspace.Task{
					{ID: "task-4", Title: "Portal wireframe"},
				},
			},
			{
				ID: "project-5", Name: "Legacy CMS", Description: "Content system",
				Category: "Web", Status: status(workspace.StatusActive), Archived: true,
				Tasks: []workspace.Task{
					{ID: "task-5", Title: "Migrate pages"},
				},
			},
			{
				ID: "project-6", Name: "Brand Review", Description: "Logo audit",
				Category: "Design", Status: status(workspace.StatusReview),
				Tasks: []workspace.Task{
					{ID: "task-6", Title: "Review launch assets"},
				},
			},
		},
		Files: []workspace.FileRecord{
			{ID: "file-1", ProjectID: "project-1", Tab: "Attachments", Name: "brief.pdf", Type: "pdf", DisplayDate: 1767225600000},
			{ID: "file-2", ProjectID: "project-2", Tab: "Attachments", Name: "launch.pdf", Type: "pdf", DisplayDate: 1767225600000},
			{ID: "file-3", ProjectID: "project-4", Tab: "Deliverables", Name: "portal-brief.doc", Type: "doc", DisplayDate: 1767225600000},
			{ID: "file-4", Tab: "Attachments", Name: "notes.txt", Type: "txt", DisplayDate: 1767225600000},
			{ID: "file-1", ProjectID: "project-1", Tab: "Attachments", Name: "brief.pdf", Type: "pdf", DisplayDate: 1767225600000},
		},
	}
}

// recordingNav records every navigator call as a readable string
type recordingNav struct {
	calls []string
}

func (r *recordingNav) Navigate(view string) {
	r.calls = append(r.calls, "navigate "+view)
}

func (r *recordingNav) HighlightNavigate(projectID string, h Highlight) {
	r.calls = append(r.calls, fmt.Sprintf("highlight %s %s task=%s file=%s tab=%s",
		projectID, h.Type, h.TaskID, h.FileName, h.FileTab))
}

func (r *recordingNav) Close() {
	r.calls = append(r.calls, "close")
}

func (r *recordingNav) OpenCreateProject() {
	r.calls = append(r.calls, "create-project")
}

func (r *recordingNav) OpenSettings(tab string) {
	r.calls = append(r.calls, "settings "+tab)
}

func (r *recordingNav) OpenInbox() {
	r.calls = append(r.calls, "inbox")
}

func (r *recordingNav) reset() {
	r.calls = nil
}

func query(ix *Indices, raw string, ctx AssembleContext) *Assembly {
	m := Match(NormalizeQuery(raw), ix, DefaultQuickActions(), DefaultLimits())
	return Assemble(m, ix, ctx)
}

func resultIDs(results []Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}
