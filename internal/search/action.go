package search

import "fmt"

// ActionType tags the variant held by an Action
type ActionType int

const (
	// ActionNavigate closes the palette and navigates to View
	ActionNavigate ActionType = iota
	// ActionHighlight closes the palette, opens the project and highlights
	// a task or file inside it
	ActionHighlight
	// ActionInvoke runs the quick action handler registered under Name
	ActionInvoke
)

// Highlight targets used by HighlightNavigate
const (
	HighlightTask = "task"
	HighlightFile = "file"
)

// Highlight identifies the task or file to highlight after navigation
type Highlight struct {
	Type     string `json:"type"`
	TaskID   string `json:"taskId,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileTab  string `json:"fileTab,omitempty"`
}

// Action describes what activating a result does. It is plain data; the
// caller decides how through a Navigator.
type Action struct {
	Type      ActionType `json:"type"`
	View      string     `json:"view,omitempty"`
	ProjectID string     `json:"projectId,omitempty"`
	Highlight Highlight  `json:"highlight,omitzero"`
	Name      string     `json:"name,omitempty"`
}

// ProjectView is the view name of a project page
func ProjectView(projectID string) string { return "project:" + projectID }

// ArchiveView is the view name of an archived project
func ArchiveView(projectID string) string { return "archive:" + projectID }

// Navigate builds a plain navigation action
func Navigate(view string) Action {
	return Action{Type: ActionNavigate, View: view}
}

// HighlightTaskAction opens a project and highlights one of its tasks
func HighlightTaskAction(projectID, taskID string) Action {
	return Action{
		Type:      ActionHighlight,
		View:      ProjectView(projectID),
		ProjectID: projectID,
		Highlight: Highlight{Type: HighlightTask, TaskID: taskID},
	}
}

// HighlightFileAction opens a project and highlights one of its files
func HighlightFileAction(projectID, fileName, fileTab string) Action {
	return Action{
		Type:      ActionHighlight,
		View:      ProjectView(projectID),
		ProjectID: projectID,
		Highlight: Highlight{Type: HighlightFile, FileName: fileName, FileTab: fileTab},
	}
}

// Invoke builds an action dispatched to a named quick action handler
func Invoke(name string) Action {
	return Action{Type: ActionInvoke, Name: name}
}

// Navigator receives the calls an activated result makes. Implementations
// belong to the host UI.
type Navigator interface {
	Navigate(view string)
	HighlightNavigate(projectID string, h Highlight)
	Close()
	OpenCreateProject()
	OpenSettings(tab string)
	OpenInbox()
}

// Callbacks adapts plain functions to a Navigator. Nil fields are no-ops.
type Callbacks struct {
	OnNavigate          func(view string)
	OnHighlightNavigate func(projectID string, h Highlight)
	OnClose             func()
	OnOpenCreateProject func()
	OnOpenSettings      func(tab string)
	OnOpenInbox         func()
}

func (c Callbacks) Navigate(view string) {
	if c.OnNavigate != nil {
		c.OnNavigate(view)
	}
}

func (c Callbacks) HighlightNavigate(projectID string, h Highlight) {
	if c.OnHighlightNavigate != nil {
		c.OnHighlightNavigate(projectID, h)
	}
}

func (c Callbacks) Close() {
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c Callbacks) OpenCreateProject() {
	if c.OnOpenCreateProject != nil {
		c.OnOpenCreateProject()
	}
}

func (c Callbacks) OpenSettings(tab string) {
	if c.OnOpenSettings != nil {
		c.OnOpenSettings(tab)
	}
}

func (c Callbacks) OpenInbox() {
	if c.OnOpenInbox != nil {
		c.OnOpenInbox()
	}
}

// Dispatch performs a. Invoke actions look up their handler in handlers and
// are ignored when none is bound. Dispatch keeps no state, so repeating it
// repeats the same calls.
func Dispatch(a Action, nav Navigator, handlers map[string]func()) {
	switch a.Type {
	case ActionNavigate:
		nav.Close()
		nav.Navigate(a.View)
	case ActionHighlight:
		nav.Close()
		nav.Navigate(ProjectView(a.ProjectID))
		nav.HighlightNavigate(a.ProjectID, a.Highlight)
	case ActionInvoke:
		if h, ok := handlers[a.Name]; ok && h != nil {
			h()
		}
	}
}

func (t ActionType) String() string {
	switch t {
	case ActionNavigate:
		return "navigate"
	case ActionHighlight:
		return "highlight"
	case ActionInvoke:
		return "invoke"
	}
	return "unknown"
}

// MarshalText encodes the action type by name
func (t ActionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes an action type name written by MarshalText
func (t *ActionType) UnmarshalText(b []byte) error {
	for _, v := range []ActionType{ActionNavigate, ActionHighlight, ActionInvoke} {
		if v.String() == string(b) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown action type %q", b)
}
