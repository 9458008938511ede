package toga

import (
	"fmt"
	"os"
	"path/filepath"
)

// Annotation targets selectable for the query BED.
const (
	TargetBED = "bed"
	TargetUTR = "utr"
)

// File names inside a TOGA results directory. Where two names are listed the
// first is the current layout and the second the legacy one.
var (
	classificationNames = []string{"orthology_classification.tsv"}
	lossSummaryNames    = []string{"loss_summary.tsv", "loss_summ_data.tsv"}
	scoreNames          = []string{"orthology_scores.tsv", filepath.Join("temp", "orthology_scores.tsv")}
	queryGeneNames      = []string{"query_genes.tsv"}
	bedNames            = map[string][]string{
		TargetBED: {"query_annotation.bed"},
		TargetUTR: {"query_annotation.with_utrs.bed"},
	}
)

// Dir holds resolved paths of a TOGA results directory. Optional files are
// empty when not present.
type Dir struct {
	Root           string
	Classification string
	LossSummary    string
	Scores         string
	QueryGenes     string
	Annotation     string
}

// ResolveDir locates the input files of a TOGA results directory for the
// given annotation target. The classification table and the annotation BED
// are required.
func ResolveDir(root, target string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat toga dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("toga dir %s is not a directory", root)
	}

	if target == "" {
		target = TargetBED
	}
	beds, ok := bedNames[target]
	if !ok {
		return nil, fmt.Errorf("unknown annotation target %q (want %s or %s)", target, TargetBED, TargetUTR)
	}

	d := &Dir{
		Root:           root,
		Classification: findFile(root, classificationNames),
		LossSummary:    findFile(root, lossSummaryNames),
		Scores:         findFile(root, scoreNames),
		QueryGenes:     findFile(root, queryGeneNames),
		Annotation:     findFile(root, beds),
	}
	if d.Classification == "" {
		return nil, fmt.Errorf("%s: %s not found", root, classificationNames[0])
	}
	if d.Annotation == "" {
		return nil, fmt.Errorf("%s: %s not found", root, beds[0])
	}
	return d, nil
}

// Inputs returns the paths of all files that were found, in a fixed order.
func (d *Dir) Inputs() []string {
	var paths []string
	for _, p := range []string{d.Classification, d.LossSummary, d.Scores, d.QueryGenes, d.Annotation} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func findFile(root string, names []string) string {
	for _, name := range names {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
