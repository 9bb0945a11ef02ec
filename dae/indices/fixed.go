package indices

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
)

const (
	TriangleVertices = 3
	LineVertices     = 2
)

// Window is the record range of a fixed-size primitive. Count mirrors the
// standard count attribute. First and End are non-standard exporter
// extensions; when either is present the primitive covers only
// records [First, First+Count).
type Window struct {
	First    int
	End      int
	Count    int
	HasFirst bool
	HasEnd   bool
	HasCount bool
}

// bounds returns the first record and the number of records to read out of
// observed records.
func (w Window) bounds(element string, observed, recordSize, streamLen int, log *zap.Logger) (int, int, error) {
	if !w.HasFirst && !w.HasEnd {
		if w.HasCount && w.Count != observed {
			log.Warn("declared record count differs from <p> length",
				zap.String("element", element), zap.Int("declared", w.Count), zap.Int("observed", observed))
		}
		return 0, observed, nil
	}

	first := 0
	if w.HasFirst {
		first = w.First
	}
	if first < 0 {
		return 0, 0, &dae.IndexOutOfRangeError{Element: element, What: "first record", Index: first, Len: observed}
	}

	var n int
	switch {
	case w.HasCount && w.HasEnd:
		if w.End != first+w.Count {
			log.Warn("window end and count disagree, using count",
				zap.String("element", element), zap.Int("first", first),
				zap.Int("end", w.End), zap.Int("count", w.Count))
		}
		n = w.Count
	case w.HasCount:
		n = w.Count
	case w.HasEnd:
		n = w.End - first
	default:
		n = observed - first
	}
	if n < 0 {
		return 0, 0, &dae.IndexOutOfRangeError{Element: element, What: "end record", Index: first + n, Len: observed}
	}
	if first+n > observed {
		return 0, 0, &dae.InconsistentLengthError{Element: element, Need: (first + n) * recordSize, Len: streamLen}
	}
	return first, n, nil
}

// Fixed deinterleaves triangles or lines, whose <p> holds
// verticesPerRecord*numOffsets values per record.
func Fixed(element string, p []int, numOffsets, verticesPerRecord int, w Window, log *zap.Logger) (*Deinterleaved, error) {
	if err := checkOffsets(element, numOffsets); err != nil {
		return nil, err
	}
	if verticesPerRecord < 1 {
		return nil, errors.Errorf("%q: invalid vertices per record %d", element, verticesPerRecord)
	}
	log = dae.Logger(log)

	recordSize := verticesPerRecord * numOffsets
	observed := len(p) / recordSize
	if len(p)%recordSize != 0 {
		log.Warn("<p> length is not a multiple of the record size",
			zap.String("element", element), zap.Int("length", len(p)), zap.Int("record", recordSize))
	}

	first, n, err := w.bounds(element, observed, recordSize, len(p), log)
	if err != nil {
		return nil, err
	}

	start := first * verticesPerRecord
	vertices := n * verticesPerRecord
	d := newDeinterleaved(numOffsets, vertices)
	for i := 0; i < vertices; i++ {
		for k := 0; k < numOffsets; k++ {
			d.Offsets[k][i] = p[(start+i)*numOffsets+k]
		}
	}
	return d, nil
}
