package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/geom"
)

// TransactionName labels the transaction a mirror runs in.
const TransactionName = "Smart mirror"

// Sketch is the editable sketch a mirror operation works on.
type Sketch interface {
	ResolveDisplayID(token string) (document.PointRef, bool)
	Geometry(id int) (document.Geometry, error)
	PointPosition(ref document.PointRef) (geom.Vector, error)
	AppendGeometry(g document.Geometry) (int, error)
	ExposeInternalGeometry(id int) error

	Constraints() []document.Constraint
	AppendConstraint(c document.Constraint) (int, error)
	ConstraintNameTaken(name string) bool

	Expressions() []document.ExpressionLink
	SetExpression(path, formula string) error

	Begin(name string) error
	Commit() error
	Rollback() error
	Recompute(ctx context.Context) error
}

type Options struct {
	// NameSuffix is appended to the names of copied constraints.
	NameSuffix string
}

// Result describes what a mirror operation added.
type Result struct {
	Reference   Reference    `json:"reference"`
	HVSafe      bool         `json:"hvSafe"`
	GeometryMap map[int]int  `json:"geometryMap"`
	Inverted    map[int]bool `json:"inverted"`
	// Constraints indexes the copies by the original's index and name.
	Constraints    CopyMap                   `json:"-"`
	Copies         []ConstraintCopy          `json:"copies"`
	NewExpressions []document.ExpressionLink `json:"newExpressions"`
	Recomputed     bool                      `json:"recomputed"`
}

// Apply mirrors the selected geometry about the last selected item and re-derives the
// constraints of the copy. The sketch is changed in a single transaction: either
// everything is added or nothing is.
func Apply(ctx context.Context, sk Sketch, selection []string, opts Options) (res *Result, err error) {
	if opts.NameSuffix == "" {
		opts.NameSuffix = DefaultNameSuffix
	}

	defer func() {
		var ie *InternalError
		if errors.As(err, &ie) {
			slog.Error("smart mirror failed", "error", err, "selection", selection)
		}
	}()

	if len(selection) < 2 {
		return nil, usageErrorf("At least two sketch items must be selected")
	}

	ref, err := resolveReference(sk, selection[len(selection)-1])
	if err != nil {
		return nil, err
	}
	ids, err := resolveMirrorSet(sk, selection[:len(selection)-1])
	if err != nil {
		return nil, err
	}

	if err := sk.Begin(TransactionName); err != nil {
		return nil, internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			_ = sk.Rollback()
			panic(r)
		}
		if rbErr := sk.Rollback(); rbErr != nil {
			slog.Error("rollback smart mirror", "error", rbErr)
		}
	}()

	res, err = run(sk, ref, ids, opts)
	if err != nil {
		return nil, err
	}

	if err := sk.Commit(); err != nil {
		return nil, internal("commit transaction", err)
	}
	committed = true

	if err := sk.Recompute(ctx); err != nil {
		slog.Warn("recompute after smart mirror", "error", err)
	} else {
		res.Recomputed = true
	}

	slog.Info("smart mirror applied",
		"reference", ref.Kind,
		"geometry", len(res.GeometryMap),
		"constraints", len(res.Copies),
		"expressions", len(res.NewExpressions),
	)
	return res, nil
}

func run(sk Sketch, ref Reference, ids []int, opts Options) (*Result, error) {
	projector, err := NewProjector(sk, ref)
	if err != nil {
		return nil, err
	}

	mirrored := make([]Mirrored, len(ids))
	for i, id := range ids {
		g, err := sk.Geometry(id)
		if err != nil {
			return nil, internal(fmt.Sprintf("read geometry %d", id), err)
		}
		if mirrored[i], err = MirrorGeometry(g, projector); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Reference:   ref,
		HVSafe:      projector.HVSafe(),
		GeometryMap: make(map[int]int, len(ids)),
		Inverted:    make(map[int]bool, len(ids)),
	}

	var expose []int
	for i, id := range ids {
		newID, err := sk.AppendGeometry(mirrored[i].Geometry)
		if err != nil {
			return nil, internal(fmt.Sprintf("add mirror of geometry %d", id), err)
		}
		res.GeometryMap[id] = newID
		res.Inverted[id] = mirrored[i].Inverted
		if mirrored[i].NeedsExposure {
			expose = append(expose, newID)
		}
	}
	// Exposure appends further geometry, so it runs once every copy has its final id.
	for _, id := range expose {
		if err := sk.ExposeInternalGeometry(id); err != nil {
			return nil, internal(fmt.Sprintf("expose internal geometry of %d", id), err)
		}
	}

	rewriter := ConstraintRewriter{
		GeometryMap: res.GeometryMap,
		Inverted:    res.Inverted,
		HVSafe:      res.HVSafe,
		AboutLine:   projector.AboutLine(),
	}
	planned := rewriter.Rewrite(sk.Constraints())
	res.Constraints, res.Copies, err = applyRewritten(sk, planned, opts.NameSuffix)
	if err != nil {
		return nil, err
	}

	res.NewExpressions, err = PropagateExpressions(sk, res.Constraints)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolveReference turns the last selected item into a mirror reference: an edge or axis
// is a line reference, a vertex or the root point a point reference.
func resolveReference(sk Sketch, token string) (Reference, error) {
	ref, ok := sk.ResolveDisplayID(token)
	if !ok {
		return Reference{}, usageErrorf("Mirror reference %q is not a sketch line or point", token)
	}
	if document.IsExternal(ref.GeoID) {
		return Reference{}, usageErrorf("Mirroring about external geometry is not supported")
	}
	if ref.Role == document.RoleNone {
		return AroundLine(ref.GeoID), nil
	}
	return AroundPoint(ref), nil
}

// resolveMirrorSet returns the distinct geometry ids to mirror, in selection order.
// Axes, the root point and unknown tokens are ignored.
func resolveMirrorSet(sk Sketch, tokens []string) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int
	for _, token := range tokens {
		ref, ok := sk.ResolveDisplayID(token)
		if !ok || document.IsAxis(ref.GeoID) {
			continue
		}
		if document.IsExternal(ref.GeoID) {
			return nil, usageErrorf("Mirroring external geometry is not supported (%s)", token)
		}
		if seen[ref.GeoID] {
			continue
		}
		seen[ref.GeoID] = true
		ids = append(ids, ref.GeoID)
	}
	if len(ids) == 0 {
		return nil, usageErrorf("No sketch geometry selected to mirror")
	}
	return ids, nil
}
