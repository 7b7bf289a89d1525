package member

import (
	"slices"
	"strings"
)

// DefaultSeparator joins name parts when rendering.
const DefaultSeparator = " "

// Name is a person's name as an ordered list of parts.
//
// The empty string is a placeholder: it keeps a position without a value,
// so NewName("Ted", "") has a first name and no last name while
// NewName("Ted") has only a last name. A Name made only of placeholders
// collapses to the zero Name.
type Name struct {
	parts []string
	sep   string
}

// NewName builds a Name from parts, in order.
func NewName(parts ...string) Name {
	if allBlank(parts) {
		return Name{}
	}
	return Name{parts: slices.Clone(parts), sep: DefaultSeparator}
}

// WithSeparator returns a copy of n joined by sep.
func (n Name) WithSeparator(sep string) Name {
	if n.IsZero() {
		return n
	}
	return Name{parts: n.parts, sep: sep}
}

// Parts returns a copy of the raw parts, placeholders included.
func (n Name) Parts() []string {
	return slices.Clone(n.parts)
}

// IsZero reports whether the name has no parts at all.
func (n Name) IsZero() bool {
	return len(n.parts) == 0
}

// Equal compares part lists and separators.
func (n Name) Equal(other Name) bool {
	return n.sep == other.sep && slices.Equal(n.parts, other.parts)
}

// First returns the first name. A single-part name has no first name.
func (n Name) First() string {
	if len(n.parts) < 2 {
		return ""
	}
	return n.join(n.parts[:1])
}

// Middle returns every part between the first and the last.
func (n Name) Middle() string {
	if len(n.parts) < 3 {
		return ""
	}
	return n.join(n.parts[1 : len(n.parts)-1])
}

// Given returns the first and middle names.
func (n Name) Given() string {
	if len(n.parts) < 2 {
		return ""
	}
	return n.join(n.parts[:len(n.parts)-1])
}

// Last returns the last name.
func (n Name) Last() string {
	if len(n.parts) == 0 {
		return ""
	}
	return n.join(n.parts[len(n.parts)-1:])
}

// Full returns every part.
func (n Name) Full() string {
	return n.join(n.parts)
}

func (n Name) String() string {
	return n.Full()
}

// join skips blank parts.
func (n Name) join(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, n.sep)
}

func allBlank(parts []string) bool {
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
