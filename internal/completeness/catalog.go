// Package completeness measures how much of a reference gene catalog is
// recovered by the retained genes of an annotation.
package completeness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Identifier namespaces of the bundled catalogs.
const (
	NamespaceEnsembl  = "ensembl"
	NamespaceEntrez   = "entrez"
	NamespaceGeneName = "gene_name"
)

// EmptyCatalogError is returned for a catalog without entries.
type EmptyCatalogError struct {
	Catalog string
}

func (e *EmptyCatalogError) Error() string {
	return fmt.Sprintf("reference catalog %s is empty", e.Catalog)
}

// Catalog is a reference gene set in one identifier namespace.
type Catalog struct {
	Name      string
	Namespace string
	// Entries is the number of catalog rows, including those without an
	// identifier in Namespace.
	Entries int
	// Untranslatable counts rows without an identifier in Namespace.
	Untranslatable int
	keys           []string
	index          map[string]bool
}

// NewCatalog builds a catalog from raw entries. Empty entries have no
// identifier in the namespace; repeated keys collapse into one.
func NewCatalog(name, namespace string, entries []string) *Catalog {
	c := &Catalog{Name: name, Namespace: namespace, index: make(map[string]bool)}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

func (c *Catalog) add(entry string) {
	c.Entries++
	entry = strings.TrimSpace(entry)
	if isNull(entry) {
		c.Untranslatable++
		return
	}
	if !c.index[entry] {
		c.index[entry] = true
		c.keys = append(c.keys, entry)
	}
}

// Keys returns the distinct catalog keys in file order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Size returns the number of distinct keys, the coverage denominator.
func (c *Catalog) Size() int {
	return len(c.keys)
}

// Contains reports whether key is in the catalog.
func (c *Catalog) Contains(key string) bool {
	return c.index[key]
}

var nullCells = map[string]bool{"": true, "NA": true, "nan": true, "NaN": true, "None": true, "-": true}

func isNull(s string) bool {
	return nullCells[s]
}

// LoadCatalog reads a catalog file. Two layouts are accepted: a flat list
// with one identifier per line (optionally headed by the namespace name),
// or a TSV whose header names the namespace column, e.g.
//
//	ensembl	entrez	gene_name
//	ENSG00000000003	7105	TSPAN6
//
// Empty cells in the namespace column count as untranslatable entries.
func LoadCatalog(path, namespace string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c, err := parseCatalog(name, namespace, f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if c.Entries == 0 {
		return nil, &EmptyCatalogError{Catalog: path}
	}
	return c, nil
}

func parseCatalog(name, namespace string, reader io.Reader) (*Catalog, error) {
	c := NewCatalog(name, namespace, nil)
	scanner := bufio.NewScanner(reader)

	col := -1
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if first {
			first = false
			if len(fields) > 1 {
				for i, h := range fields {
					if strings.EqualFold(strings.TrimSpace(h), namespace) {
						col = i
					}
				}
				if col < 0 {
					return nil, fmt.Errorf("namespace column %q not found in header", namespace)
				}
				continue
			}
			col = 0
			if strings.EqualFold(strings.TrimSpace(fields[0]), namespace) {
				continue
			}
		}

		if col < len(fields) {
			c.add(fields[col])
		} else {
			c.add("")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return c, nil
}
