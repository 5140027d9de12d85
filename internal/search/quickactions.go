package search

import "strings"

// QuickAction is a static command listed alongside data matches
type QuickAction struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Keywords string `json:"keywords"`
	Icon     string `json:"icon,omitempty"`
}

func (q QuickAction) matches(query string) bool {
	return strings.Contains(strings.ToLower(q.Label), query) ||
		strings.Contains(strings.ToLower(q.Keywords), query)
}

// Quick action ids
const (
	ActionCreateProject = "action-create-project"
	ActionTasks         = "action-tasks"
	ActionArchive       = "action-archive"
	ActionSettings      = "action-settings"
	ActionNotifications = "action-notifications"
	ActionInbox         = "action-inbox"
)

// DefaultQuickActions returns the standard quick action catalogue
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{ID: ActionCreateProject, Label: "Create New Project", Keywords: "new add project create", Icon: "+"},
		{ID: ActionTasks, Label: "Go to Tasks", Keywords: "tasks todo my work", Icon: "☐"},
		{ID: ActionArchive, Label: "View Archive", Keywords: "archive archived old", Icon: "▤"},
		{ID: ActionSettings, Label: "Open Settings", Keywords: "settings preferences account", Icon: "⚙"},
		{ID: ActionNotifications, Label: "Notification Settings", Keywords: "notifications alerts email", Icon: "◔"},
		{ID: ActionInbox, Label: "Open Inbox", Keywords: "inbox messages activity", Icon: "✉"},
	}
}

// ActionHandlers binds the default quick actions to nav
func ActionHandlers(nav Navigator) map[string]func() {
	return map[string]func(){
		ActionCreateProject: func() {
			nav.Close()
			nav.OpenCreateProject()
		},
		ActionTasks: func() {
			nav.Close()
			nav.Navigate("tasks")
		},
		ActionArchive: func() {
			nav.Close()
			nav.Navigate("archive")
		},
		ActionSettings: func() {
			nav.Close()
			nav.OpenSettings("")
		},
		ActionNotifications: func() {
			nav.Close()
			nav.OpenSettings("Notifications")
		},
		ActionInbox: func() {
			nav.Close()
			nav.OpenInbox()
		},
	}
}
