// Package table holds the canonical per-assembly transcript table produced by
// the record joiner and consumed by the filter, haplotype and completeness
// stages.
package table

import "strings"

// Orthology class tokens emitted by TOGA loss summaries.
const (
	ClassFullyIntact      = "FI"
	ClassIntact           = "I"
	ClassPartiallyIntact  = "PI"
	ClassUncertainLoss    = "UL"
	ClassLoss             = "L"
	ClassMissing          = "M"
	ClassPartiallyMissing = "PM"
	ClassParalogousGene   = "PG"
	ClassNotFound         = "NF"
)

// Orthology relationship tokens in their long form.
const (
	RelOneToOne   = "one2one"
	RelOneToMany  = "one2many"
	RelManyToOne  = "many2one"
	RelManyToMany = "many2many"
	RelOneToZero  = "one2zero"
)

var relationshipAliases = map[string]string{
	"o2o": RelOneToOne,
	"o2m": RelOneToMany,
	"m2o": RelManyToOne,
	"m2m": RelManyToMany,
	"o2z": RelOneToZero,
}

// NormalizeRelationship maps short relationship codes (o2o, o2m, ...) to
// their long form. Unknown tokens are returned trimmed and otherwise unchanged.
func NormalizeRelationship(tok string) string {
	tok = strings.TrimSpace(tok)
	if long, ok := relationshipAliases[strings.ToLower(tok)]; ok {
		return long
	}
	return tok
}

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool {
	return o.ok
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

// Interval is one BED line of a projection. Fields are kept as text and are
// never interpreted arithmetically.
type Interval struct {
	Chrom  string
	Start  string
	End    string
	Name   string // full BED name, including any $fragment suffix
	Strand string
	Line   string // verbatim BED line
}

// Coordinates lists the BED intervals of a projection. Fragmented projections
// have more than one.
type Coordinates []Interval

// TranscriptRecord is one row of the canonical table: a single transcript
// projection in one assembly.
type TranscriptRecord struct {
	TranscriptID        string
	GeneID              string
	ReferenceTranscript string
	ReferenceGene       string
	Class               string
	Relationship        string
	OrthologyScore      Optional[float64]
	ParalogScore        Optional[float64]
	Coordinates         Coordinates
	IsoformGroup        Optional[string]
}

// GeneCall pairs a gene with a single orthology class, e.g. the best class
// among its transcripts.
type GeneCall struct {
	GeneID string
	Class  string
}
