// Package registry discovers the model files of a run and owns the naming
// convention that links a model to its artifacts at every pipeline stage.
package registry

import (
	"fmt"
	"strconv"
)

// Group is the ensemble a model belongs to.
type Group int

const (
	Sequence Group = iota
	Mutant
	Native
)

func (g Group) String() string {
	switch g {
	case Sequence:
		return "sequence"
	case Mutant:
		return "mutant"
	case Native:
		return "native"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Prefix is the staged-name prefix for the group. Native has none because
// its staged name is fixed.
func (g Group) Prefix() string {
	switch g {
	case Sequence:
		return "seq"
	case Mutant:
		return "mut"
	default:
		return ""
	}
}

func (g Group) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Group) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sequence":
		*g = Sequence
	case "mutant":
		*g = Mutant
	case "native":
		*g = Native
	default:
		return fmt.Errorf("unknown group %q", text)
	}
	return nil
}

// Identity names one input model. It is created at discovery and never
// changes afterwards.
type Identity struct {
	Group    Group  `json:"group"`
	Index    *int   `json:"index,omitempty"`
	BaseName string `json:"base_name"`
}

// Label is a short human-readable handle used in logs and reports.
func (id Identity) Label() string {
	if id.Group == Native {
		return "native"
	}
	if id.Index != nil {
		return id.Group.Prefix() + "#" + strconv.Itoa(*id.Index)
	}
	return id.Group.Prefix() + ":" + id.BaseName
}

func (id Identity) String() string {
	return StagedName(id)
}
