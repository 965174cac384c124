package sketch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

type transaction struct {
	id         string
	name       string
	checkpoint *document.Sketch
	startedAt  time.Time
}

// TransactionRecord is an entry of the committed transaction log.
type TransactionRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	CommittedAt       time.Time `json:"committedAt"`
	GeometryAdded     int       `json:"geometryAdded"`
	ConstraintsAdded  int       `json:"constraintsAdded"`
	ExpressionsBefore int       `json:"expressionsBefore"`
	ExpressionsAfter  int       `json:"expressionsAfter"`
}

// Begin opens a transaction. Everything changed until Rollback is undone by it.
func (s *Store) Begin(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		return fmt.Errorf("begin %q while %q is open: %w", name, s.tx.name, ErrTransactionActive)
	}
	s.tx = &transaction{
		id:         typeid.NewTransactionID(),
		name:       name,
		checkpoint: s.sketch.Clone(),
		startedAt:  time.Now(),
	}
	return nil
}

// Commit closes the active transaction and records it in the history.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoTransaction
	}

	rec := TransactionRecord{
		ID:                s.tx.id,
		Name:              s.tx.name,
		CommittedAt:       time.Now().UTC(),
		GeometryAdded:     len(s.sketch.Geometry) - len(s.tx.checkpoint.Geometry),
		ConstraintsAdded:  len(s.sketch.Constraints) - len(s.tx.checkpoint.Constraints),
		ExpressionsBefore: len(s.tx.checkpoint.Expressions),
		ExpressionsAfter:  len(s.sketch.Expressions),
	}
	s.history = append(s.history, rec)
	s.tx = nil

	slog.Info("transaction committed",
		"id", rec.ID,
		"name", rec.Name,
		"geometryAdded", rec.GeometryAdded,
		"constraintsAdded", rec.ConstraintsAdded,
	)
	return nil
}

// Rollback restores the sketch as it was when the active transaction began.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoTransaction
	}

	slog.Warn("transaction rolled back",
		"id", s.tx.id,
		"name", s.tx.name,
		"elapsed", time.Since(s.tx.startedAt),
	)
	s.sketch = s.tx.checkpoint
	s.tx = nil
	return nil
}

// InTransaction reports whether a transaction is open.
func (s *Store) InTransaction() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tx != nil
}

// History returns the committed transactions, oldest first.
func (s *Store) History() []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TransactionRecord(nil), s.history...)
}
