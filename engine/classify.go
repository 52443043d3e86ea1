/*
classify.go - Time-code classification

PURPOSE:
  Maps a time code to its aggregation categories through the single
  classification letter carried on the code's reference row. The letter
  sets are injected as a CategoryTable value rather than hidden in
  string matching at call sites, so tests can substitute alternates.

CATEGORY MEMBERSHIP:
  The letter sets overlap deliberately: Tour is the union of CodeDirect
  and Overhead. A code therefore has one primary Category for display,
  while the membership predicates drive the summary arithmetic.

FAILURE MODE:
  Unknown, inactive, or wrong-type codes are excluded, never an error.
  Excluded codes contribute zero to every category sum.
*/
package engine

import "strings"

// Category is the primary display category of a time code.
type Category string

const (
	CategoryCodeDirect Category = "CODE_DIRECT"
	CategoryOverhead   Category = "OVERHEAD"
	CategoryAdjustment Category = "ADJUSTMENT"
	CategorySchedule   Category = "SCHEDULE"
	CategoryInfo       Category = "INFO"
)

// CategoryTable holds the classification letter sets. Each field is the
// set of letters belonging to that category.
type CategoryTable struct {
	Tour       string
	CodeDirect string
	Overhead   string
	Adjustment string
	Schedule   string
	Info       string
}

// DefaultCategoryTable returns the production letter sets.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		Tour:       "MUCGNROE",
		CodeDirect: "GMCUNE",
		Overhead:   "OR",
		Adjustment: "A",
		Schedule:   "S",
		Info:       "I",
	}
}

// Classification is the resolved category membership of one letter.
type Classification struct {
	Letter string
	table  CategoryTable
}

func (c Classification) InTour() bool       { return c.Letter != "" && strings.Contains(c.table.Tour, c.Letter) }
func (c Classification) InCodeDirect() bool { return c.Letter != "" && strings.Contains(c.table.CodeDirect, c.Letter) }
func (c Classification) InOverhead() bool   { return c.Letter != "" && strings.Contains(c.table.Overhead, c.Letter) }
func (c Classification) IsAdjustment() bool { return c.Letter != "" && strings.Contains(c.table.Adjustment, c.Letter) }
func (c Classification) IsSchedule() bool   { return c.Letter != "" && strings.Contains(c.table.Schedule, c.Letter) }
func (c Classification) IsInfo() bool       { return c.Letter != "" && strings.Contains(c.table.Info, c.Letter) }

// Category returns the primary category. CodeDirect and Overhead
// partition the tour set, so exactly one category applies.
func (c Classification) Category() Category {
	switch {
	case c.IsAdjustment():
		return CategoryAdjustment
	case c.IsSchedule():
		return CategorySchedule
	case c.InCodeDirect():
		return CategoryCodeDirect
	case c.InOverhead():
		return CategoryOverhead
	default:
		return CategoryInfo
	}
}

// DisplayClass returns the drill-down grouping letter: "A" for
// adjustment/schedule codes, "I" for info codes, "T" otherwise.
// Distinct from the aggregation categories.
func (c Classification) DisplayClass() string {
	switch {
	case c.IsAdjustment() || c.IsSchedule():
		return "A"
	case c.IsInfo():
		return "I"
	default:
		return "T"
	}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier resolves time codes against a loaded reference table.
// Immutable after construction; safe for concurrent use.
type Classifier struct {
	table CategoryTable
	codes map[string]TimeCode // keyed by code, type "T" only
}

// NewClassifier builds a classifier from the letter table and the full
// time-code reference set. Codes of other types are ignored.
func NewClassifier(table CategoryTable, codes []TimeCode) *Classifier {
	m := make(map[string]TimeCode, len(codes))
	for _, c := range codes {
		if c.Type == "T" {
			m[c.Code] = c
		}
	}
	return &Classifier{table: table, codes: m}
}

// Classify resolves an active time code. ok is false when the code is
// unknown, inactive, or not a time code; such codes are excluded from
// category sums.
func (cl *Classifier) Classify(code string) (Classification, bool) {
	c, found := cl.codes[code]
	if !found || !c.IsActive() {
		return Classification{}, false
	}
	return Classification{Letter: c.Letter, table: cl.table}, true
}

// Lookup resolves a code's letter regardless of its active marker. The
// drill-down table uses this: an inactive adjustment code still renders
// negated even though it no longer contributes to the summary sums.
func (cl *Classifier) Lookup(code string) (Classification, bool) {
	c, found := cl.codes[code]
	if !found {
		return Classification{}, false
	}
	return Classification{Letter: c.Letter, table: cl.table}, true
}

// ActiveName returns the display description of an active code.
func (cl *Classifier) ActiveName(code string) (string, bool) {
	c, found := cl.codes[code]
	if !found || !c.IsActive() {
		return "", false
	}
	return c.Name, true
}
