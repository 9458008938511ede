package completeness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/postoga/internal/table"
)

// Translator maps a gene id into a catalog namespace.
type Translator interface {
	Translate(geneID string) (string, bool)
}

// Identity translates every gene id to itself, for catalogs that already
// use the annotation's gene ids.
type Identity struct{}

// Translate returns geneID unchanged.
func (Identity) Translate(geneID string) (string, bool) {
	return geneID, geneID != ""
}

// Mapping is a lookup table translator.
type Mapping map[string]string

// Translate looks geneID up in the mapping.
func (m Mapping) Translate(geneID string) (string, bool) {
	key, ok := m[geneID]
	return key, ok && key != ""
}

// ReferenceGenes maps every query gene to the reference gene of its first
// transcript that names one, looking through tables in order. TOGA catalogs
// are keyed by reference gene, so this is the default translation.
func ReferenceGenes(tables ...*table.Table) Mapping {
	m := make(Mapping)
	for _, t := range tables {
		for _, r := range t.Records() {
			if r.ReferenceGene == "" {
				continue
			}
			if _, ok := m[r.GeneID]; !ok {
				m[r.GeneID] = r.ReferenceGene
			}
		}
	}
	return m
}

// LoadTranslation reads a two-column TSV of gene id and catalog key. A
// header line whose first cell is gene_id, query_gene or gene is skipped.
func LoadTranslation(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open translation table: %w", err)
	}
	defer f.Close()
	return parseTranslation(f)
}

func parseTranslation(reader io.Reader) (Mapping, error) {
	m := make(Mapping)
	scanner := bufio.NewScanner(reader)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("translation table line %d: expected 2 columns, got %d", lineNumber, len(fields))
		}
		gene, key := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if len(m) == 0 && isTranslationHeader(gene) {
			continue
		}
		if gene == "" || isNull(key) {
			continue
		}
		if prev, dup := m[gene]; dup && prev != key {
			return nil, fmt.Errorf("translation table line %d: gene %q maps to both %q and %q", lineNumber, gene, prev, key)
		}
		m[gene] = key
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan translation table: %w", err)
	}
	return m, nil
}

func isTranslationHeader(cell string) bool {
	switch strings.ToLower(cell) {
	case "gene_id", "query_gene", "gene":
		return true
	}
	return false
}
