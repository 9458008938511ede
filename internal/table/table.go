package table

import (
	"fmt"
	"slices"
)

// Table is the canonical transcript table of one assembly. Records keep the
// order they were added in. A Table and its records must not be modified once
// built; derived tables share record pointers.
type Table struct {
	name    string
	records []*TranscriptRecord
	index   map[string]int
}

// New builds a table from records. Transcript IDs must be unique and every
// record must carry a gene ID.
func New(name string, records []*TranscriptRecord) (*Table, error) {
	t := &Table{
		name:    name,
		records: make([]*TranscriptRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.GeneID == "" {
			return nil, fmt.Errorf("transcript %q has no gene id", r.TranscriptID)
		}
		if _, dup := t.index[r.TranscriptID]; dup {
			return nil, fmt.Errorf("duplicate transcript %q", r.TranscriptID)
		}
		t.index[r.TranscriptID] = len(t.records)
		t.records = append(t.records, r)
	}
	return t, nil
}

// Name returns the assembly name the table was built for.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns the records in table order.
func (t *Table) Records() []*TranscriptRecord {
	return slices.Clone(t.records)
}

// Get returns the record for a transcript, or nil if not present.
func (t *Table) Get(transcriptID string) *TranscriptRecord {
	i, ok := t.index[transcriptID]
	if !ok {
		return nil
	}
	return t.records[i]
}

// Subset returns a new table holding the records for which keep returns true.
func (t *Table) Subset(keep func(*TranscriptRecord) bool) *Table {
	sub := &Table{
		name:  t.name,
		index: make(map[string]int),
	}
	for _, r := range t.records {
		if keep(r) {
			sub.index[r.TranscriptID] = len(sub.records)
			sub.records = append(sub.records, r)
		}
	}
	return sub
}

// Genes returns the distinct gene IDs in order of first appearance.
func (t *Table) Genes() []string {
	seen := make(map[string]bool)
	var genes []string
	for _, r := range t.records {
		if !seen[r.GeneID] {
			seen[r.GeneID] = true
			genes = append(genes, r.GeneID)
		}
	}
	return genes
}

// UniqueGenes returns the number of distinct genes.
func (t *Table) UniqueGenes() int {
	return len(t.Genes())
}

// UniqueTranscripts returns the number of distinct source transcripts. A
// projection counts under its reference transcript when one is known.
func (t *Table) UniqueTranscripts() int {
	seen := make(map[string]bool)
	for _, r := range t.records {
		key := r.ReferenceTranscript
		if key == "" {
			key = r.TranscriptID
		}
		seen[key] = true
	}
	return len(seen)
}

// ClassCounts returns the number of records per orthology class.
func (t *Table) ClassCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.records {
		counts[r.Class]++
	}
	return counts
}

// RelationshipCounts returns the number of records per orthology relationship.
// Records without a relationship are not counted.
func (t *Table) RelationshipCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.records {
		if r.Relationship != "" {
			counts[r.Relationship]++
		}
	}
	return counts
}

// BestClassPerGene returns, for every gene in order of first appearance, the
// best-ranked class among its transcripts. Ties keep the earliest transcript.
func (t *Table) BestClassPerGene(order PrecedenceOrder) []GeneCall {
	pos := make(map[string]int)
	var calls []GeneCall
	for _, r := range t.records {
		i, ok := pos[r.GeneID]
		if !ok {
			pos[r.GeneID] = len(calls)
			calls = append(calls, GeneCall{GeneID: r.GeneID, Class: r.Class})
			continue
		}
		if order.Better(r.Class, calls[i].Class) {
			calls[i].Class = r.Class
		}
	}
	return calls
}
