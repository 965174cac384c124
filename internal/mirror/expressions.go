package mirror

import (
	"log/slog"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

// expressionStore is the part of a sketch expression propagation reads and writes.
type expressionStore interface {
	Expressions() []document.ExpressionLink
	SetExpression(path, formula string) error
}

// PropagateExpressions gives every copied constraint whose original is driven by an
// expression a binding to the original, so both halves keep a single source of truth.
// Existing bindings are never removed. It returns the bindings it created.
func PropagateExpressions(store expressionStore, copies CopyMap) ([]document.ExpressionLink, error) {
	links := store.Expressions()

	var created []document.ExpressionLink
	seen := make(map[string]bool)
	for _, link := range links {
		key, ok, err := document.ParseConstraintPath(link.Path)
		if err != nil {
			return nil, internal("parse expression target", err)
		}
		if !ok {
			continue
		}

		cp, found := copies[key]
		if !found {
			continue
		}
		if cp.OriginalType != cp.CopyType {
			slog.Debug("expression not propagated across constraint types",
				"path", link.Path,
				"from", cp.OriginalType,
				"to", cp.CopyType,
			)
			continue
		}

		nl := document.ExpressionLink{Path: cp.Copy.Path(), Expression: cp.Binding()}
		if seen[nl.Path] {
			continue
		}
		seen[nl.Path] = true
		if err := store.SetExpression(nl.Path, nl.Expression); err != nil {
			return nil, internal("set expression "+nl.Path, err)
		}
		created = append(created, nl)
	}
	return created, nil
}
