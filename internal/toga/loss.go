package toga

import (
	"io"
	"strings"
)

// LossColumns holds the indices of loss summary columns. -1 means absent.
type LossColumns struct {
	Level      int
	Projection int
	Status     int
}

// LossRow is the loss status of one projection.
type LossRow struct {
	Line   int
	Status string
}

// LossSummary is a parsed loss_summary.tsv restricted to PROJECTION rows.
type LossSummary struct {
	File    string
	Columns LossColumns
	Rows    map[string]LossRow
	Order   []string
}

var lossLevels = map[string]bool{
	"PROJECTION": true,
	"TRANSCRIPT": true,
	"GENE":       true,
}

// Get returns the loss status of a projection.
func (l *LossSummary) Get(projection string) (string, bool) {
	if l == nil {
		return "", false
	}
	row, ok := l.Rows[projection]
	return row.Status, ok
}

// ReadLossSummary reads a loss summary from path.
func ReadLossSummary(path string) (*LossSummary, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseLossSummary(r)
}

// ParseLossSummary reads a loss summary from rd.
func ParseLossSummary(name string, rd io.Reader) (*LossSummary, error) {
	return parseLossSummary(newTSVReader(name, rd))
}

func parseLossSummary(r *tsvReader) (*LossSummary, error) {
	first, err := r.next()
	if err == io.EOF {
		return nil, r.parseError("no header line found")
	}
	if err != nil {
		return nil, err
	}

	l := &LossSummary{File: r.name, Rows: make(map[string]LossRow)}

	// Older releases write the summary without a header.
	headerless := lossLevels[strings.ToUpper(strings.TrimSpace(first[0]))]
	if headerless {
		l.Columns = LossColumns{Level: 0, Projection: 1, Status: 2}
	} else {
		l.Columns = LossColumns{
			Level:      findColumn(first, ColLevel),
			Projection: findColumn(first, ColProjection, ColQueryTranscript, ColTranscriptID, ColTranscript),
			Status:     findColumn(first, ColLossStatus, ColClass, "status"),
		}
		if l.Columns.Projection < 0 {
			return nil, &SchemaError{File: r.name, Field: ColProjection}
		}
		if l.Columns.Status < 0 {
			return nil, &SchemaError{File: r.name, Field: ColLossStatus}
		}
	}

	fields := first
	if !headerless {
		fields, err = r.next()
	}
	for ; err == nil; fields, err = r.next() {
		if err := l.add(r, fields); err != nil {
			return nil, err
		}
	}
	if err != io.EOF {
		return nil, err
	}
	return l, nil
}

func (l *LossSummary) add(r *tsvReader, fields []string) error {
	if l.Columns.Level >= 0 && !strings.EqualFold(field(fields, l.Columns.Level), LevelProjection) {
		return nil
	}
	id := field(fields, l.Columns.Projection)
	if id == "" {
		return r.parseError("missing projection id")
	}
	if prev, dup := l.Rows[id]; dup {
		return &DuplicateKeyError{File: r.name, Key: id, FirstLine: prev.Line, Line: r.lineNumber}
	}
	l.Rows[id] = LossRow{Line: r.lineNumber, Status: field(fields, l.Columns.Status)}
	l.Order = append(l.Order, id)
	return nil
}
