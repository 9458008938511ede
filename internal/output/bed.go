package output

import (
	"bufio"
	"io"

	"github.com/inodb/postoga/internal/table"
)

// WriteBED writes the verbatim BED lines of every record in t and returns
// the number of lines written.
func WriteBED(w io.Writer, t *table.Table) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, r := range t.Records() {
		for _, iv := range r.Coordinates {
			if _, err := bw.WriteString(iv.Line + "\n"); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, bw.Flush()
}

// WriteIsoforms writes gene<TAB>bed-name pairs for every BED line of t, the
// isoform table the BED converters expect. The isoform group is used as the
// gene when one was supplied.
func WriteIsoforms(w io.Writer, t *table.Table) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, r := range t.Records() {
		gene := r.IsoformGroup.OrElse(r.GeneID)
		for _, iv := range r.Coordinates {
			if _, err := bw.WriteString(gene + "\t" + iv.Name + "\n"); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, bw.Flush()
}
