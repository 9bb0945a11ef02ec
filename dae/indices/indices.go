// Package indices splits the shared <p> streams of mesh primitives into one
// index array per input offset.
//
// A primitive with inputs at offsets 0..n-1 writes n integers per vertex.
// Deinterleaving turns that stream into n arrays of equal length, one entry
// per vertex, so every semantic can be gathered independently.
package indices

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
)

type Deinterleaved struct {
	NumOffsets int
	// Offsets[k][i] is the index written at offset k for vertex i.
	Offsets [][]int
	// GroupVertexCounts holds the vertex count of every polygon for ragged
	// primitives. It is nil for triangles and lines.
	GroupVertexCounts []int

	starts []int
}

func (d *Deinterleaved) VertexCount() int {
	if len(d.Offsets) == 0 {
		return 0
	}
	return len(d.Offsets[0])
}

// GroupStarts returns the first vertex of every group.
func (d *Deinterleaved) GroupStarts() []int {
	starts := make([]int, len(d.GroupVertexCounts))
	pos := 0
	for g, n := range d.GroupVertexCounts {
		starts[g] = pos
		pos += n
	}
	return starts
}

// Group returns the indices at offset k belonging to group g.
// Group starts are computed on the first call and reused, so Group must not
// be called from several goroutines on the same value.
func (d *Deinterleaved) Group(k, g int) []int {
	if len(d.starts) != len(d.GroupVertexCounts) {
		d.starts = d.GroupStarts()
	}
	start := d.starts[g]
	return d.Offsets[k][start : start+d.GroupVertexCounts[g]]
}

// StreamLength sums non-negative per-group counts and returns the total
// together with the stream length it takes at width values per count.
// On overflow need is math.MaxInt, longer than any stream.
func StreamLength(counts []int, width int) (total, need int) {
	for _, n := range counts {
		if n > math.MaxInt/width-total {
			return total, math.MaxInt
		}
		total += n
	}
	return total, total * width
}

// NumOffsets returns the number of integers written per vertex by inputs
// with the given offsets.
func NumOffsets(offsets []int) int {
	max := 0
	for _, o := range offsets {
		if o > max {
			max = o
		}
	}
	return max + 1
}

func newDeinterleaved(numOffsets, vertices int) *Deinterleaved {
	d := &Deinterleaved{
		NumOffsets: numOffsets,
		Offsets:    make([][]int, numOffsets),
	}
	for k := range d.Offsets {
		d.Offsets[k] = make([]int, vertices)
	}
	return d
}

func checkOffsets(element string, numOffsets int) error {
	if numOffsets < 1 {
		return errors.Errorf("%q: invalid number of offsets %d", element, numOffsets)
	}
	return nil
}

// Groups deinterleaves primitives that carry one <p> per group: polygons,
// trifans, tristrips and linestrips. Groups whose length is not a multiple of
// numOffsets are truncated with a warning. A negative declaredCount skips
// the group count check.
func Groups(element string, groups [][]int, numOffsets, declaredCount int, log *zap.Logger) (*Deinterleaved, error) {
	if err := checkOffsets(element, numOffsets); err != nil {
		return nil, err
	}
	log = dae.Logger(log)

	if declaredCount >= 0 && declaredCount != len(groups) {
		log.Warn("declared group count differs from <p> elements",
			zap.String("element", element), zap.Int("declared", declaredCount), zap.Int("observed", len(groups)))
	}

	counts := make([]int, len(groups))
	total := 0
	for g, group := range groups {
		if len(group)%numOffsets != 0 {
			log.Warn("group length is not a multiple of the input offsets",
				zap.String("element", element), zap.Int("group", g),
				zap.Int("length", len(group)), zap.Int("offsets", numOffsets))
		}
		counts[g] = len(group) / numOffsets
		total += counts[g]
	}

	d := newDeinterleaved(numOffsets, total)
	d.GroupVertexCounts = counts
	cursor := 0
	for g, group := range groups {
		for v := 0; v < counts[g]; v++ {
			for k := 0; k < numOffsets; k++ {
				d.Offsets[k][cursor] = group[v*numOffsets+k]
			}
			cursor++
		}
	}
	return d, nil
}

// PolyList deinterleaves one shared <p> stream sliced by <vcount>.
func PolyList(element string, vcount, p []int, numOffsets, declaredCount int, log *zap.Logger) (*Deinterleaved, error) {
	if err := checkOffsets(element, numOffsets); err != nil {
		return nil, err
	}
	log = dae.Logger(log)

	if declaredCount >= 0 && declaredCount != len(vcount) {
		log.Warn("declared polygon count differs from <vcount> entries",
			zap.String("element", element), zap.Int("declared", declaredCount), zap.Int("observed", len(vcount)))
	}

	for g, n := range vcount {
		if n < 0 {
			return nil, errors.Errorf("%q: negative vertex count %d for polygon %d", element, n, g)
		}
	}

	total, need := StreamLength(vcount, numOffsets)
	if len(p) < need {
		return nil, &dae.InconsistentLengthError{Element: element, Need: need, Len: len(p)}
	}
	if len(p) > need {
		log.Warn("<p> has values past the last polygon",
			zap.String("element", element), zap.Int("used", need), zap.Int("length", len(p)))
	}

	d := newDeinterleaved(numOffsets, total)
	d.GroupVertexCounts = append([]int(nil), vcount...)
	for i := 0; i < total; i++ {
		for k := 0; k < numOffsets; k++ {
			d.Offsets[k][i] = p[i*numOffsets+k]
		}
	}
	return d, nil
}
