package completeness

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/postoga/internal/table"
)

// ClassCount is the number of found catalog keys whose best class is Class.
type ClassCount struct {
	Class   string
	Count   int
	Percent float64 // of found keys
}

// Report summarizes the coverage of one catalog.
type Report struct {
	Catalog   string
	Namespace string
	// Entries is the number of catalog rows; Size the distinct keys used as
	// denominator.
	Entries  int
	Size     int
	Found    int
	Coverage float64 // percent of Size
	ByClass  []ClassCount
	// RetainedGenes is the number of gene calls evaluated.
	RetainedGenes int
	// CatalogUntranslatable counts catalog rows without a key in the
	// namespace; UntranslatableGenes counts retained genes the translator
	// could not map. Untranslatable is their sum.
	CatalogUntranslatable int
	UntranslatableGenes   int
	Untranslatable        int
}

// Evaluator computes completeness reports.
type Evaluator struct {
	order  table.PrecedenceOrder
	logger *zap.Logger
}

// NewEvaluator creates an evaluator that breaks classes down by order.
func NewEvaluator(order table.PrecedenceOrder) *Evaluator {
	return &Evaluator{order: order, logger: zap.NewNop()}
}

// SetLogger sets the logger for report messages.
func (e *Evaluator) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Evaluate uses the default precedence order.
func Evaluate(genes []table.GeneCall, catalog *Catalog, tr Translator) (*Report, error) {
	return NewEvaluator(table.DefaultOrder()).Evaluate(genes, catalog, tr)
}

// Evaluate maps genes into the catalog namespace and counts the catalog keys
// they cover. When several genes translate to one key the key takes the best
// of their classes.
func (e *Evaluator) Evaluate(genes []table.GeneCall, catalog *Catalog, tr Translator) (*Report, error) {
	if catalog == nil || catalog.Entries == 0 {
		name := ""
		if catalog != nil {
			name = catalog.Name
		}
		return nil, &EmptyCatalogError{Catalog: name}
	}

	r := &Report{
		Catalog:               catalog.Name,
		Namespace:             catalog.Namespace,
		Entries:               catalog.Entries,
		Size:                  catalog.Size(),
		RetainedGenes:         len(genes),
		CatalogUntranslatable: catalog.Untranslatable,
	}

	found := make(map[string]string)
	for _, g := range genes {
		key, ok := tr.Translate(g.GeneID)
		if !ok {
			r.UntranslatableGenes++
			continue
		}
		if !catalog.Contains(key) {
			continue
		}
		if prev, seen := found[key]; !seen || e.order.Better(g.Class, prev) {
			found[key] = g.Class
		}
	}
	r.Untranslatable = r.CatalogUntranslatable + r.UntranslatableGenes

	r.Found = len(found)
	r.Coverage = percent(r.Found, r.Size)

	counts := make(map[string]int)
	for _, class := range found {
		counts[class]++
	}
	for class, n := range counts {
		r.ByClass = append(r.ByClass, ClassCount{Class: class, Count: n, Percent: percent(n, r.Found)})
	}
	slices.SortFunc(r.ByClass, func(a, b ClassCount) int {
		if d := e.order.Rank(a.Class) - e.order.Rank(b.Class); d != 0 {
			return d
		}
		return strings.Compare(a.Class, b.Class)
	})

	e.logger.Info("completeness",
		zap.String("catalog", r.Catalog),
		zap.String("namespace", r.Namespace),
		zap.Int("size", r.Size),
		zap.Int("found", r.Found),
		zap.Float64("coverage", r.Coverage),
		zap.Int("untranslatable", r.Untranslatable))

	return r, nil
}

// EvaluateAll evaluates the same genes against several catalogs.
func (e *Evaluator) EvaluateAll(genes []table.GeneCall, catalogs []*Catalog, tr Translator) ([]*Report, error) {
	reports := make([]*Report, 0, len(catalogs))
	for _, c := range catalogs {
		r, err := e.Evaluate(genes, c, tr)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Count returns the found count of class, or 0.
func (r *Report) Count(class string) int {
	for _, c := range r.ByClass {
		if c.Class == class {
			return c.Count
		}
	}
	return 0
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}
