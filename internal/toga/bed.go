package toga

import (
	"io"
	"strconv"
	"strings"

	"github.com/inodb/postoga/internal/table"
)

// minBEDColumns is the minimum column count of a query annotation line:
// chrom, start, end, name, score, strand.
const minBEDColumns = 6

// BED is a parsed query annotation. Lines are kept verbatim and grouped by
// projection id.
type BED struct {
	File        string
	projections []string
	intervals   map[string]table.Coordinates
}

// Projections returns projection ids in first-appearance order.
func (b *BED) Projections() []string {
	return b.projections
}

// Intervals returns the lines of one projection, or nil.
func (b *BED) Intervals(projection string) table.Coordinates {
	if b == nil {
		return nil
	}
	return b.intervals[projection]
}

// Len returns the number of distinct projections.
func (b *BED) Len() int {
	return len(b.projections)
}

// ReadBED reads a query annotation BED file.
func ReadBED(path string) (*BED, error) {
	r, err := openTSV(path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return parseBED(r)
}

// ParseBED reads a query annotation from rd.
func ParseBED(name string, rd io.Reader) (*BED, error) {
	return parseBED(newTSVReader(name, rd))
}

func parseBED(r *tsvReader) (*BED, error) {
	b := &BED{File: r.name, intervals: make(map[string]table.Coordinates)}

	for {
		line, err := r.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < minBEDColumns {
			return nil, r.parseError("expected at least %d columns, got %d", minBEDColumns, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, r.parseError("invalid start %q", fields[1])
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, r.parseError("invalid end %q", fields[2])
		}
		if end < start {
			return nil, r.parseError("end %d before start %d", end, start)
		}

		projection := ProjectionID(fields[3])
		if projection == "" {
			return nil, r.parseError("empty name field")
		}
		if _, seen := b.intervals[projection]; !seen {
			b.projections = append(b.projections, projection)
		}
		b.intervals[projection] = append(b.intervals[projection], table.Interval{
			Chrom:  fields[0],
			Start:  fields[1],
			End:    fields[2],
			Name:   fields[3],
			Strand: fields[5],
			Line:   line,
		})
	}
	return b, nil
}
