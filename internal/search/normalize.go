package search

import (
	"strconv"
	"strings"

	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

// signatureSeparator joins signature fields. A field containing it can make
// two different field lists share a signature; SignatureEscaped avoids that.
const signatureSeparator = "|"

// SignatureMode selects how signature fields are joined
type SignatureMode int

const (
	// SignatureJoined joins raw fields with "|"
	SignatureJoined SignatureMode = iota
	// SignatureEscaped length-prefixes every field, which is unambiguous
	SignatureEscaped
)

// DueDateFormatter renders a task due date (epoch ms, nil when unset) as the
// label shown in the palette and indexed for search.
type DueDateFormatter func(due *int64) string

// normalized is the output of the entry normalizer for one entity
type normalized struct {
	key       string
	signature string
	fields    []string // searchable fields, not yet joined or lower-cased
}

func (n normalized) searchable() string {
	return strings.ToLower(strings.Join(n.fields, " "))
}

func buildSignature(mode SignatureMode, fields ...string) string {
	if mode == SignatureEscaped {
		var b strings.Builder
		for _, f := range fields {
			b.WriteString(strconv.Itoa(len(f)))
			b.WriteByte(':')
			b.WriteString(f)
		}
		return b.String()
	}
	return strings.Join(fields, signatureSeparator)
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func normalizeProject(p *workspace.Project, mode SignatureMode) normalized {
	fields := []string{p.Name, p.Description, p.Category, p.Status.Label, p.Scope}
	return normalized{
		key:       p.ID,
		signature: buildSignature(mode, fields...),
		fields:    fields,
	}
}

// TaskKey scopes a task id to its project; equal task ids in different
// projects never collide.
func TaskKey(projectID, taskID string) string {
	return projectID + ":" + taskID
}

func normalizeTask(t *workspace.Task, projectName string, dueLabel DueDateFormatter, mode SignatureMode) normalized {
	assignee := t.AssigneeName()
	due := dueLabel(t.DueDate)
	return normalized{
		key:       TaskKey(t.ProjectID, t.ID),
		signature: buildSignature(mode, t.Title, assignee, due, boolField(t.Completed), projectName),
		fields:    []string{t.Title, assignee, due, projectName},
	}
}

// FileKey identifies a file upload. The id is part of the key so duplicate
// uploads sharing a name stay distinct.
func FileKey(f *workspace.FileRecord) string {
	return f.ProjectID + "-" + f.Tab + "-" + f.Name + "-" + f.ID
}

// normalizeFile indexes the record's own fields. The owning project is
// searchable by id only; its name belongs to the project entry.
func normalizeFile(f *workspace.FileRecord, mode SignatureMode) normalized {
	fields := []string{f.Name, f.Type, f.Tab, f.ProjectID, strconv.FormatInt(f.DisplayDate, 10)}
	return normalized{
		key:       FileKey(f),
		signature: buildSignature(mode, fields...),
		fields:    fields,
	}
}

// NormalizeQuery trims and lower-cases raw palette input. Callers apply it
// once at the boundary; Match expects its result.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
