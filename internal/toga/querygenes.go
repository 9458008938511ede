package toga

import "io"

// QueryGenes maps projection id -> query gene, overriding the gene column of
// the classification table.
type QueryGenes map[string]string

// ReadQueryGenes loads query gene overrides from a query_genes.tsv file with
// columns projection and query_gene.
func ReadQueryGenes(path string) (QueryGenes, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseQueryGenes(r)
}

// ParseQueryGenes loads query gene overrides from rd.
func ParseQueryGenes(name string, rd io.Reader) (QueryGenes, error) {
	return parseQueryGenes(newTSVReader(name, rd))
}

func parseQueryGenes(r *tsvReader) (QueryGenes, error) {
	overrides := make(QueryGenes)

	header, err := r.next()
	if err == io.EOF {
		return overrides, nil
	}
	if err != nil {
		return nil, err
	}

	projCol := findColumn(header, ColProjection, ColQueryTranscript, ColTranscriptID)
	geneCol := findColumn(header, ColQueryGene, ColGeneID)
	if projCol < 0 {
		return nil, &SchemaError{File: r.name, Field: ColProjection}
	}
	if geneCol < 0 {
		return nil, &SchemaError{File: r.name, Field: ColQueryGene}
	}

	lines := make(map[string]int)
	for {
		fields, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		projection := field(fields, projCol)
		gene := field(fields, geneCol)
		if projection == "" || gene == "" {
			continue
		}
		if first, dup := lines[projection]; dup {
			return nil, &DuplicateKeyError{File: r.name, Key: projection, FirstLine: first, Line: r.lineNumber}
		}
		lines[projection] = r.lineNumber
		overrides[projection] = gene
	}
	return overrides, nil
}
