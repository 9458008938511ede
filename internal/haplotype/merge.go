// Package haplotype merges the canonical tables of several haplotype-resolved
// assemblies into one call per gene.
//
// For every gene the best class of each assembly is taken (best = lowest
// rank in the precedence order among the gene's transcripts). The merged
// class is the best of those; ties go to the assembly listed first. A gene
// missing from an assembly ranks below every real class there, so it can
// never win over data from another assembly.
package haplotype

import (
	"slices"

	"github.com/inodb/postoga/internal/table"
)

// EmptyInputError is returned when Merge is called without tables.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "haplotype merge needs at least one assembly table"
}

// MergedGeneRecord is the merged call for one gene.
type MergedGeneRecord struct {
	GeneID string
	Class  string
	// Assembly is the input position of the winning assembly.
	Assembly     int
	AssemblyName string
	// PerAssembly holds the best class of every assembly, NF when the gene
	// is absent from it.
	PerAssembly []string
}

// MergedTable holds one record per gene, in order of first appearance
// across the input assemblies.
type MergedTable struct {
	assemblies []string
	records    []MergedGeneRecord
	index      map[string]int
}

// Merge resolves per-gene classes across assemblies. The input tables are
// only read.
func Merge(tables []*table.Table, order table.PrecedenceOrder) (*MergedTable, error) {
	if len(tables) == 0 {
		return nil, &EmptyInputError{}
	}
	if len(order.Tokens()) == 0 {
		return nil, &table.OrderError{Message: "no class tokens"}
	}

	m := &MergedTable{index: make(map[string]int)}
	best := make([]map[string]string, len(tables))

	var genes []string
	seen := make(map[string]bool)
	for i, t := range tables {
		m.assemblies = append(m.assemblies, t.Name())
		best[i] = make(map[string]string)
		for _, call := range t.BestClassPerGene(order) {
			best[i][call.GeneID] = call.Class
			if !seen[call.GeneID] {
				seen[call.GeneID] = true
				genes = append(genes, call.GeneID)
			}
		}
	}

	for _, gene := range genes {
		rec := MergedGeneRecord{
			GeneID:      gene,
			Assembly:    -1,
			PerAssembly: make([]string, len(tables)),
		}
		bestRank := order.AbsentRank() + 1
		for i := range tables {
			class, ok := best[i][gene]
			if !ok {
				rec.PerAssembly[i] = table.ClassNotFound
				continue
			}
			rec.PerAssembly[i] = class
			if r := order.Rank(class); r < bestRank {
				bestRank = r
				rec.Class = class
				rec.Assembly = i
			}
		}
		rec.AssemblyName = m.assemblies[rec.Assembly]

		m.index[gene] = len(m.records)
		m.records = append(m.records, rec)
	}

	return m, nil
}

// Assemblies returns the assembly names in input order.
func (m *MergedTable) Assemblies() []string {
	return slices.Clone(m.assemblies)
}

// Len returns the number of merged genes.
func (m *MergedTable) Len() int {
	return len(m.records)
}

// Records returns a copy of the merged records.
func (m *MergedTable) Records() []MergedGeneRecord {
	out := make([]MergedGeneRecord, len(m.records))
	for i, r := range m.records {
		r.PerAssembly = slices.Clone(r.PerAssembly)
		out[i] = r
	}
	return out
}

// Get returns the merged record of a gene.
func (m *MergedTable) Get(gene string) (MergedGeneRecord, bool) {
	i, ok := m.index[gene]
	if !ok {
		return MergedGeneRecord{}, false
	}
	r := m.records[i]
	r.PerAssembly = slices.Clone(r.PerAssembly)
	return r, true
}

// ClassCounts returns the number of genes per merged class.
func (m *MergedTable) ClassCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range m.records {
		counts[r.Class]++
	}
	return counts
}

// WinnerCounts returns, per assembly name, how many genes it won.
func (m *MergedTable) WinnerCounts() map[string]int {
	counts := make(map[string]int, len(m.assemblies))
	for _, r := range m.records {
		counts[r.AssemblyName]++
	}
	return counts
}

// GeneCalls returns the merged class of every gene.
func (m *MergedTable) GeneCalls() []table.GeneCall {
	calls := make([]table.GeneCall, len(m.records))
	for i, r := range m.records {
		calls[i] = table.GeneCall{GeneID: r.GeneID, Class: r.Class}
	}
	return calls
}
