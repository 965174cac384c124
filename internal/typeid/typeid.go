package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixSketch      = "sketch"
	PrefixSnapshot    = "snap"
	PrefixTransaction = "tx"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewSketchID() string      { return New(PrefixSketch) }
func NewSnapshotID() string    { return New(PrefixSnapshot) }
func NewTransactionID() string { return New(PrefixTransaction) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
