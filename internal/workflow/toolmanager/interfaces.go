package toolmanager

import (
	"github.com/Cyclone1070/anu/internal/tool"
)

// Factory constructs a skill. A returned error skips the skill.
type Factory func() (tool.Skill, error)

// Entry binds a skill identifier to its constructor.
type Entry struct {
	ID  string
	New Factory
}
