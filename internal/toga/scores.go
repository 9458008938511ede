package toga

import (
	"io"
	"math"
	"strconv"

	"github.com/inodb/postoga/internal/table"
)

// ScoreColumns holds the indices of orthology score columns. -1 means absent.
type ScoreColumns struct {
	Transcript int
	Base       int
	Chain      int
	Orthology  int
	Paralog    int
}

// ScoreRow holds the scores of one projection.
type ScoreRow struct {
	Line      int
	Orthology table.Optional[float64]
	Paralog   table.Optional[float64]
}

// Scores is a parsed orthology_scores.tsv keyed by projection id.
type Scores struct {
	File    string
	Columns ScoreColumns
	Rows    map[string]ScoreRow
	// Order lists projection ids in file order.
	Order []string
}

func resolveScoreColumns(header []string) ScoreColumns {
	c := ScoreColumns{
		Transcript: findColumn(header, ColTranscriptID, ColQueryTranscript, ColProjection),
		Base:       findColumn(header, ColTranscript),
		Chain:      findColumn(header, ColChain),
		Orthology:  findColumn(header, ColOrthologyScore, ColOrthologyProbability, ColPred),
		Paralog:    findColumn(header, ColParalogScore, ColParalogyScore, ColParalogProbability),
	}
	// Legacy three-column layout: transcript, chain, score.
	if c.Transcript < 0 && c.Base < 0 && c.Orthology < 0 && len(header) == 3 {
		return ScoreColumns{Transcript: -1, Base: 0, Chain: 1, Orthology: 2, Paralog: -1}
	}
	return c
}

// key returns the projection id of a score row.
func (c ScoreColumns) key(fields []string) string {
	if c.Transcript >= 0 {
		return field(fields, c.Transcript)
	}
	base := field(fields, c.Base)
	if base == "" {
		return ""
	}
	if chain := field(fields, c.Chain); chain != "" {
		return base + "#" + chain
	}
	return base
}

// ReadScores reads an orthology score table from path.
func ReadScores(path string) (*Scores, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseScores(r)
}

// ParseScores reads an orthology score table from rd.
func ParseScores(name string, rd io.Reader) (*Scores, error) {
	return parseScores(newTSVReader(name, rd))
}

func parseScores(r *tsvReader) (*Scores, error) {
	header, err := r.next()
	if err == io.EOF {
		return nil, r.parseError("no header line found")
	}
	if err != nil {
		return nil, err
	}

	cols := resolveScoreColumns(header)
	if cols.Transcript < 0 && cols.Base < 0 {
		return nil, &SchemaError{File: r.name, Field: ColTranscriptID}
	}
	if cols.Orthology < 0 {
		return nil, &SchemaError{File: r.name, Field: ColOrthologyScore}
	}

	s := &Scores{File: r.name, Columns: cols, Rows: make(map[string]ScoreRow)}
	for {
		fields, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id := cols.key(fields)
		if id == "" {
			return nil, r.parseError("missing projection id")
		}
		if prev, dup := s.Rows[id]; dup {
			return nil, &DuplicateKeyError{File: r.name, Key: id, FirstLine: prev.Line, Line: r.lineNumber}
		}

		row := ScoreRow{Line: r.lineNumber}
		if row.Orthology, err = r.score(fields, cols.Orthology); err != nil {
			return nil, err
		}
		if row.Paralog, err = r.score(fields, cols.Paralog); err != nil {
			return nil, err
		}
		s.Rows[id] = row
		s.Order = append(s.Order, id)
	}
	return s, nil
}

// score parses a probability cell. Null cells yield an absent value.
func (r *tsvReader) score(fields []string, idx int) (table.Optional[float64], error) {
	v := field(fields, idx)
	if v == "" {
		return table.None[float64](), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return table.None[float64](), r.parseError("invalid score %q", v)
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return table.None[float64](), r.parseError("score %s outside [0,1]", v)
	}
	return table.Some(f), nil
}
