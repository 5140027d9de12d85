package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

func TestMatch_EmptyQuery(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())
	m := Match("", ix, DefaultQuickActions(), DefaultLimits())

	assert.Empty(t, m.Projects)
	assert.Empty(t, m.Tasks)
	assert.Empty(t, m.Files)
	assert.Empty(t, m.Actions)
	assert.Equal(t, 0, m.Total())
}

func TestMatch_DraftProjectHidesChildren(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())
	m := Match("launch", ix, DefaultQuickActions(), DefaultLimits())

	require.Len(t, m.Projects, 1)
	assert.Equal(t, "project-2", m.Projects[0].Project.ID)
	assert.Empty(t, m.Tasks, "draft and review project tasks stay hidden")
	assert.Empty(t, m.Files, "draft project files stay hidden")
}

func TestMatch_SubstringOnly(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())

	assert.Empty(t, Match("wirefrme", ix, nil, DefaultLimits()).Tasks, "no typo tolerance")
	assert.Len(t, Match("wireframe", ix, nil, DefaultLimits()).Tasks, 1)
	assert.Len(t, Match("jan 15", ix, nil, DefaultLimits()).Tasks, 1, "due label is searchable")
	assert.Len(t, Match("bob", ix, nil, DefaultLimits()).Tasks, 1, "assignee is searchable")
	assert.Len(t, Match("mvp", ix, nil, DefaultLimits()).Projects, 1, "scope is searchable")
}

func TestMatch_QueryIsNotRenormalized(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())
	assert.Empty(t, Match("Wireframe", ix, nil, DefaultLimits()).Tasks)
	assert.Len(t, Match(NormalizeQuery("  Wireframe "), ix, nil, DefaultLimits()).Tasks, 1)
}

func TestMatch_QuickActionsByLabelOrKeyword(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())

	m := Match("settings", ix, DefaultQuickActions(), DefaultLimits())
	var ids []string
	for _, a := range m.Actions {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{ActionSettings, ActionNotifications}, ids)

	m = Match("todo", ix, DefaultQuickActions(), DefaultLimits())
	require.Len(t, m.Actions, 1)
	assert.Equal(t, ActionTasks, m.Actions[0].ID)
}

func TestMatch_CapsKeepFirstInIndexOrder(t *testing.T) {
	snap := &workspace.Snapshot{}
	for i := range 100 {
		name := fmt.Sprintf("Other %03d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("Target %03d", i)
		}
		snap.Projects = append(snap.Projects, workspace.Project{
			ID: fmt.Sprintf("p%03d", i), Name: name, Status: status(workspace.StatusActive),
		})
	}
	ix := NewSession().Build(snap)

	m := Match("target", ix, nil, DefaultLimits())
	require.Len(t, m.Projects, MaxProjectResults)

	var want []string
	for _, e := range ix.Projects {
		if len(want) == MaxProjectResults {
			break
		}
		if e.Project.Name[:6] == "Target" {
			want = append(want, e.Project.ID)
		}
	}
	var got []string
	for _, e := range m.Projects {
		got = append(got, e.Project.ID)
	}
	assert.Equal(t, want, got)
}

func TestMatch_CustomLimits(t *testing.T) {
	snap := &workspace.Snapshot{Projects: []workspace.Project{
		{ID: "p", Name: "Alpha", Status: status(workspace.StatusActive)},
	}}
	for i := range 10 {
		snap.Files = append(snap.Files, workspace.FileRecord{
			ID: fmt.Sprintf("f%d", i), ProjectID: "p", Tab: "Attachments", Name: fmt.Sprintf("alpha-%d.png", i), Type: "png",
		})
	}
	ix := NewSession().Build(snap)

	m := Match("alpha", ix, DefaultQuickActions(), Limits{Projects: 1, Files: 3, Actions: 1})
	assert.Len(t, m.Projects, 1)
	assert.Len(t, m.Files, 3)
	assert.Equal(t, "f0", m.Files[0].File.ID)
	assert.Equal(t, "f2", m.Files[2].File.ID)
}

func TestMatch_ActionCap(t *testing.T) {
	var actions []QuickAction
	for i := range 12 {
		actions = append(actions, QuickAction{ID: fmt.Sprintf("a%d", i), Label: "Open thing"})
	}
	m := Match("open", NewSession().Build(nil), actions, DefaultLimits())
	assert.Len(t, m.Actions, MaxActionResults)
	assert.Equal(t, "a0", m.Actions[0].ID)
}

func TestMatch_NilIndices(t *testing.T) {
	m := Match("x", nil, DefaultQuickActions(), DefaultLimits())
	assert.Equal(t, 0, m.Total())
}
