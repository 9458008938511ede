package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/postoga/internal/haplotype"
)

// MergedWriter writes merged haplotype calls: gene, winning class, winning
// assembly and the best class of every assembly.
type MergedWriter struct {
	w          *bufio.Writer
	assemblies []string
}

// NewMergedWriter creates a writer for calls over the given assemblies.
func NewMergedWriter(w io.Writer, assemblies []string) *MergedWriter {
	return &MergedWriter{w: bufio.NewWriter(w), assemblies: assemblies}
}

// WriteHeader writes the header line.
func (mw *MergedWriter) WriteHeader() error {
	cols := append([]string{"gene_id", "orthology_class", "assembly"}, mw.assemblies...)
	_, err := mw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes a single merged record.
func (mw *MergedWriter) Write(r haplotype.MergedGeneRecord) error {
	values := append([]string{r.GeneID, r.Class, r.AssemblyName}, r.PerAssembly...)
	_, err := mw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteTable writes the header and every record of m.
func (mw *MergedWriter) WriteTable(m *haplotype.MergedTable) error {
	if err := mw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range m.Records() {
		if err := mw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MergedWriter) Flush() error {
	return mw.w.Flush()
}
