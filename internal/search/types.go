// Package search implements a debounced composite search combining walk and
// species result sets into one list.
package search

import (
	"github.com/tphakala/birdwalk/internal/datastore"
)

// Kind discriminates the result variants.
type Kind string

const (
	KindWalk    Kind = "walk"
	KindSpecies Kind = "species"
)

// Result is a closed sum over walk and species matches. The only
// implementations are WalkResult and SpeciesResult; consumers switch on
// Type() and must treat any other value as a programming error.
type Result interface {
	Type() Kind
}

// WalkResult is a walk whose name matched the query.
type WalkResult struct {
	datastore.WalkSummary
}

// Type implements Result.
func (WalkResult) Type() Kind { return KindWalk }

// SpeciesResult is a sighted species whose name matched the query.
type SpeciesResult struct {
	datastore.SpeciesSummary
}

// Type implements Result.
func (SpeciesResult) Type() Kind { return KindSpecies }

// MinQueryLength is the shortest query that triggers a fetch; anything
// shorter clears the results synchronously.
const MinQueryLength = 2
