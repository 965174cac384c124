package sketch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/geom"
)

var (
	ErrGeometryNotFound  = errors.New("geometry not found")
	ErrExternalGeometry  = errors.New("external geometry is not supported")
	ErrPointNotFound     = errors.New("geometry has no such point")
	ErrDuplicateName     = errors.New("constraint name already in use")
	ErrTransactionActive = errors.New("a transaction is already active")
	ErrNoTransaction     = errors.New("no active transaction")
	ErrNothingToExpose   = errors.New("geometry has no internal geometry")
)

// Solver re-solves a sketch after it has been edited.
type Solver interface {
	Solve(ctx context.Context, sk *document.Sketch) error
}

// Store holds the authoritative state of one sketch. It resolves geometry, appends new
// geometry/constraints/expressions and scopes edits in transactions.
type Store struct {
	mu       sync.RWMutex
	sketch   *document.Sketch
	tx       *transaction
	history  []TransactionRecord
	revision int64
	solver   Solver
}

// NewStore takes ownership of sk after validating its geometry.
func NewStore(sk *document.Sketch) (*Store, error) {
	if sk == nil {
		return nil, errors.New("nil sketch")
	}
	for i, g := range sk.Geometry {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
	}
	return &Store{
		sketch:  sk,
		history: make([]TransactionRecord, 0),
	}, nil
}

// SetSolver installs the solver run by Recompute.
func (s *Store) SetSolver(solver Solver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solver = solver
}

// Sketch returns a deep copy of the current sketch.
func (s *Store) Sketch() *document.Sketch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sketch.Clone()
}

// Revision counts completed recomputes.
func (s *Store) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Geometry returns a copy of the geometry with the given id. The two reference axes
// resolve to unit lines through the origin.
func (s *Store) Geometry(id int) (document.Geometry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometryLocked(id)
}

func (s *Store) geometryLocked(id int) (document.Geometry, error) {
	switch {
	case id == document.HorizontalAxis:
		return document.NewLine(geom.Vec(0, 0), geom.Vec(1, 0)), nil
	case id == document.VerticalAxis:
		return document.NewLine(geom.Vec(0, 0), geom.Vec(0, 1)), nil
	case document.IsExternal(id):
		return document.Geometry{}, fmt.Errorf("geometry %d: %w", id, ErrExternalGeometry)
	case id < 0 || id >= len(s.sketch.Geometry):
		return document.Geometry{}, fmt.Errorf("geometry %d: %w", id, ErrGeometryNotFound)
	}
	return s.sketch.Geometry[id].Clone(), nil
}

// PointPosition returns the position addressed by ref.
func (s *Store) PointPosition(ref document.PointRef) (geom.Vector, error) {
	if ref == document.RootPoint {
		return geom.Vector{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.geometryLocked(ref.GeoID)
	if err != nil {
		return geom.Vector{}, err
	}
	p, ok := g.PointAt(ref.Role)
	if !ok {
		return geom.Vector{}, fmt.Errorf("%s of geometry %d: %w", ref.Role, ref.GeoID, ErrPointNotFound)
	}
	return p, nil
}

// AppendGeometry adds g to the sketch and returns its freshly assigned id.
func (s *Store) AppendGeometry(g document.Geometry) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendGeometryLocked(g), nil
}

func (s *Store) appendGeometryLocked(g document.Geometry) int {
	s.sketch.Geometry = append(s.sketch.Geometry, g.Clone())
	return len(s.sketch.Geometry) - 1
}

// Constraints returns a copy of the constraint list in index order.
func (s *Store) Constraints() []document.Constraint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]document.Constraint(nil), s.sketch.Constraints...)
}

// AppendConstraint adds c and returns its index.
func (s *Store) AppendConstraint(c document.Constraint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Name != "" && s.nameTakenLocked(c.Name) {
		return 0, fmt.Errorf("%q: %w", c.Name, ErrDuplicateName)
	}
	for _, id := range []int{c.First, c.Second, c.Third} {
		if id == document.GeoUndef || id < 0 {
			continue
		}
		if id >= len(s.sketch.Geometry) {
			return 0, fmt.Errorf("constraint operand %d: %w", id, ErrGeometryNotFound)
		}
	}

	return s.appendConstraintLocked(c), nil
}

func (s *Store) appendConstraintLocked(c document.Constraint) int {
	s.sketch.Constraints = append(s.sketch.Constraints, c)
	return len(s.sketch.Constraints) - 1
}

// ConstraintNameTaken reports whether a constraint already uses name.
func (s *Store) ConstraintNameTaken(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTakenLocked(name)
}

func (s *Store) nameTakenLocked(name string) bool {
	for _, c := range s.sketch.Constraints {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Expressions returns a copy of the expression bindings.
func (s *Store) Expressions() []document.ExpressionLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]document.ExpressionLink(nil), s.sketch.Expressions...)
}

// SetExpression binds path to formula, replacing an existing binding of the same path.
func (s *Store) SetExpression(path, formula string) error {
	if path == "" {
		return errors.New("empty expression path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, link := range s.sketch.Expressions {
		if link.Path == path {
			s.sketch.Expressions[i].Expression = formula
			return nil
		}
	}
	s.sketch.Expressions = append(s.sketch.Expressions, document.ExpressionLink{Path: path, Expression: formula})
	return nil
}

// Recompute runs the installed solver over the current sketch.
func (s *Store) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		return fmt.Errorf("recompute inside transaction %q: %w", s.tx.name, ErrTransactionActive)
	}
	if s.solver != nil {
		if err := s.solver.Solve(ctx, s.sketch); err != nil {
			return fmt.Errorf("solve sketch: %w", err)
		}
	}
	s.revision++

	slog.Debug("sketch recomputed",
		"sketch", s.sketch.ID,
		"revision", s.revision,
		"geometry", len(s.sketch.Geometry),
		"constraints", len(s.sketch.Constraints),
	)
	return nil
}
