package document

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedPath = errors.New("malformed constraint path")

const constraintsProperty = "Constraints"

var (
	indexPathRe = regexp.MustCompile(`^\[(\d+)\]$`)
	namePathRe  = regexp.MustCompile(`^\.([A-Za-z_][A-Za-z0-9_]*)$`)
)

// ConstraintKey addresses a constraint either by index or, when Name is set, by name.
type ConstraintKey struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

func IndexKey(i int) ConstraintKey      { return ConstraintKey{Index: i} }
func NameKey(name string) ConstraintKey { return ConstraintKey{Index: -1, Name: name} }

// Reference is the form used inside formulas, e.g. Constraints[3] or Constraints.width.
func (k ConstraintKey) Reference() string {
	if k.Name != "" {
		return constraintsProperty + "." + k.Name
	}
	return fmt.Sprintf("%s[%d]", constraintsProperty, k.Index)
}

// Path is the form used as an expression target, e.g. .Constraints[3].
func (k ConstraintKey) Path() string {
	return "." + k.Reference()
}

func (k ConstraintKey) String() string { return k.Reference() }

// ConstraintPath returns the expression path of the constraint at index.
func ConstraintPath(index int) string { return IndexKey(index).Path() }

// ConstraintPathByName returns the expression path of a named constraint.
func ConstraintPathByName(name string) string { return NameKey(name).Path() }

// ParseConstraintPath parses an expression target. ok is false when the path does not
// address a constraint at all; an error is returned when it does but cannot be parsed.
func ParseConstraintPath(path string) (key ConstraintKey, ok bool, err error) {
	rest, found := strings.CutPrefix(path, "."+constraintsProperty)
	if !found || rest == "" || (rest[0] != '[' && rest[0] != '.') {
		return ConstraintKey{}, false, nil
	}

	if m := indexPathRe.FindStringSubmatch(rest); m != nil {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return ConstraintKey{}, true, fmt.Errorf("%w: %q", ErrMalformedPath, path)
		}
		return IndexKey(idx), true, nil
	}
	if m := namePathRe.FindStringSubmatch(rest); m != nil {
		return NameKey(m[1]), true, nil
	}
	return ConstraintKey{}, true, fmt.Errorf("%w: %q", ErrMalformedPath, path)
}
