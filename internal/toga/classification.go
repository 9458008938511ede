package toga

import (
	"io"

	"github.com/inodb/postoga/internal/table"
)

// ClassificationColumns holds the indices of orthology classification
// columns. -1 means the column is absent.
type ClassificationColumns struct {
	Transcript          int
	Gene                int
	ReferenceTranscript int
	ReferenceGene       int
	Class               int
	Relationship        int
}

// ClassificationRow is one projection of the orthology classification table.
type ClassificationRow struct {
	Line                int
	Transcript          string
	Gene                string
	ReferenceTranscript string
	ReferenceGene       string
	Class               string
	Relationship        string
}

// Classification is a parsed orthology_classification.tsv.
type Classification struct {
	File    string
	Columns ClassificationColumns
	Rows    []ClassificationRow
	// Skipped counts rows without a query projection, e.g. one2zero
	// reference genes.
	Skipped int
}

// togaClassificationLayout is the fixed column order of TOGA2
// orthology_classification.tsv, used when header names are not recognized.
var togaClassificationLayout = ClassificationColumns{
	ReferenceGene:       0,
	ReferenceTranscript: 1,
	Gene:                2,
	Transcript:          3,
	Relationship:        4,
	Class:               -1,
}

// resolveClassificationColumns maps header names to column indices.
//
// "orthology_class" is ambiguous across releases: TOGA2 uses it for the
// relationship (one2one, ...). It is read as the class column only when a
// separate relationship column is present.
func resolveClassificationColumns(header []string) ClassificationColumns {
	c := ClassificationColumns{
		Transcript:          findColumn(header, ColTranscriptID, ColQueryTranscript, ColProjection),
		Gene:                findColumn(header, ColGeneID, ColQueryGene),
		ReferenceTranscript: findColumn(header, ColReferenceTranscript),
		ReferenceGene:       findColumn(header, ColReferenceGene),
		Class:               findColumn(header, ColLossStatus, ColClass),
		Relationship:        findColumn(header, ColOrthologyRelationship, ColRelationship, ColRelation),
	}

	if oc := findColumn(header, ColOrthologyClass); oc >= 0 {
		if c.Relationship < 0 {
			c.Relationship = oc
		} else if c.Class < 0 {
			c.Class = oc
		}
	}

	if c.Transcript < 0 && len(header) == 5 {
		return togaClassificationLayout
	}
	return c
}

// HasClass reports whether the table carries an orthology class column.
func (c *Classification) HasClass() bool {
	return c.Columns.Class >= 0
}

// HasGene reports whether the table carries a query gene column.
func (c *Classification) HasGene() bool {
	return c.Columns.Gene >= 0
}

// ReadClassification reads an orthology classification table from path.
func ReadClassification(path string) (*Classification, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseClassification(r)
}

// ParseClassification reads an orthology classification table from rd.
func ParseClassification(name string, rd io.Reader) (*Classification, error) {
	return parseClassification(newTSVReader(name, rd))
}

func parseClassification(r *tsvReader) (*Classification, error) {
	header, err := r.next()
	if err == io.EOF {
		return nil, r.parseError("no header line found")
	}
	if err != nil {
		return nil, err
	}

	cols := resolveClassificationColumns(header)
	if cols.Transcript < 0 {
		return nil, &SchemaError{File: r.name, Field: ColTranscriptID}
	}

	c := &Classification{File: r.name, Columns: cols}
	seen := make(map[string]int)

	for {
		fields, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := ClassificationRow{
			Line:                r.lineNumber,
			Transcript:          field(fields, cols.Transcript),
			Gene:                field(fields, cols.Gene),
			ReferenceTranscript: field(fields, cols.ReferenceTranscript),
			ReferenceGene:       field(fields, cols.ReferenceGene),
			Class:               field(fields, cols.Class),
			Relationship:        table.NormalizeRelationship(field(fields, cols.Relationship)),
		}
		if row.Transcript == "" {
			c.Skipped++
			continue
		}
		if first, dup := seen[row.Transcript]; dup {
			return nil, &DuplicateKeyError{File: r.name, Key: row.Transcript, FirstLine: first, Line: row.Line}
		}
		seen[row.Transcript] = row.Line
		c.Rows = append(c.Rows, row)
	}

	return c, nil
}
