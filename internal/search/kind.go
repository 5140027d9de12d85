package search

import "fmt"

// Kind is the entity kind of a palette result. The ordinal is the group
// order: projects, tasks, files, then quick actions.
type Kind int

const (
	KindProject Kind = iota
	KindTask
	KindFile
	KindAction
)

// KindOrder lists the kinds in display order
var KindOrder = [...]Kind{KindProject, KindTask, KindFile, KindAction}

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindTask:
		return "task"
	case KindFile:
		return "file"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// Title is the group heading shown above results of this kind
func (k Kind) Title() string {
	switch k {
	case KindProject:
		return "Projects"
	case KindTask:
		return "Tasks"
	case KindFile:
		return "Files"
	case KindAction:
		return "Quick Actions"
	}
	return ""
}

// Default result caps per kind
const (
	MaxProjectResults = 30
	MaxTaskResults    = 40
	MaxFileResults    = 40
	MaxActionResults  = 8
)

// Limits caps the number of matches collected per kind
type Limits struct {
	Projects int
	Tasks    int
	Files    int
	Actions  int
}

// DefaultLimits returns the standard caps (30/40/40/8)
func DefaultLimits() Limits {
	return Limits{
		Projects: MaxProjectResults,
		Tasks:    MaxTaskResults,
		Files:    MaxFileResults,
		Actions:  MaxActionResults,
	}
}

// orDefault replaces non-positive caps with the defaults
func (l Limits) orDefault() Limits {
	d := DefaultLimits()
	if l.Projects <= 0 {
		l.Projects = d.Projects
	}
	if l.Tasks <= 0 {
		l.Tasks = d.Tasks
	}
	if l.Files <= 0 {
		l.Files = d.Files
	}
	if l.Actions <= 0 {
		l.Actions = d.Actions
	}
	return l
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText
func (k *Kind) UnmarshalText(b []byte) error {
	for _, v := range KindOrder {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", b)
}
