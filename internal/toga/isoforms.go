package toga

import (
	"io"
	"strings"
)

// Isoforms maps projection id -> isoform group (usually the query gene).
type Isoforms map[string]string

// ReadIsoforms loads an isoform table. A header naming a group column
// (gene_id, query_gene, isoform_group) and a transcript column is used when
// present; otherwise the first two columns are read as gene, transcript,
// the layout bed2gtf expects.
func ReadIsoforms(path string) (Isoforms, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseIsoforms(r)
}

// ParseIsoforms loads an isoform table from rd.
func ParseIsoforms(name string, rd io.Reader) (Isoforms, error) {
	return parseIsoforms(newTSVReader(name, rd))
}

func parseIsoforms(r *tsvReader) (Isoforms, error) {
	isoforms := make(Isoforms)

	first, err := r.next()
	if err == io.EOF {
		return isoforms, nil
	}
	if err != nil {
		return nil, err
	}

	groupCol := findColumn(first, ColIsoformGroup, ColGeneID, ColQueryGene)
	txCol := findColumn(first, ColTranscriptID, ColQueryTranscript, ColProjection, ColTranscript)
	headerless := groupCol < 0 || txCol < 0
	if headerless {
		groupCol, txCol = 0, 1
	}

	lines := make(map[string]int)
	fields := first
	if !headerless {
		fields, err = r.next()
	}
	for ; err == nil; fields, err = r.next() {
		if len(fields) < 2 {
			return nil, r.parseError("expected 2 columns, got %d", len(fields))
		}
		group := field(fields, groupCol)
		projection := ProjectionID(field(fields, txCol))
		if group == "" || projection == "" {
			continue
		}
		if firstLine, dup := lines[projection]; dup {
			if isoforms[projection] == group {
				continue
			}
			return nil, &DuplicateKeyError{File: r.name, Key: projection, FirstLine: firstLine, Line: r.lineNumber}
		}
		lines[projection] = r.lineNumber
		isoforms[projection] = group
	}
	if err != io.EOF {
		return nil, err
	}
	return isoforms, nil
}

// ProjectionID strips the fragment suffix from a BED name: fragments of one
// projection are written as "<projection>$<n>".
func ProjectionID(name string) string {
	if i := strings.IndexByte(name, '$'); i >= 0 {
		return name[:i]
	}
	return name
}
