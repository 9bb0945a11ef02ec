package skin

import "sort"

// VertexInfluenceTable stores the influences of every vertex back to back.
// Counts[v] influences of vertex v start at the sum of the preceding counts.
type VertexInfluenceTable struct {
	Counts  []int
	Joints  []int
	Weights []float32

	starts []int
}

func (t *VertexInfluenceTable) VertexCount() int { return len(t.Counts) }

// Starts returns the position of the first influence of every vertex.
func (t *VertexInfluenceTable) Starts() []int {
	starts := make([]int, len(t.Counts))
	pos := 0
	for v, n := range t.Counts {
		starts[v] = pos
		pos += n
	}
	return starts
}

// Influences returns the joints and weights of vertex v. The slices alias the table.
// Vertex starts are computed on the first call and reused, so Influences must
// not be called from several goroutines on the same table.
func (t *VertexInfluenceTable) Influences(v int) ([]int, []float32) {
	if len(t.starts) != len(t.Counts) {
		t.starts = t.Starts()
	}
	start := t.starts[v]
	end := start + t.Counts[v]
	return t.Joints[start:end], t.Weights[start:end]
}

type influence struct {
	joint  int
	weight float32
}

// Limit keeps at most n of the heaviest influences per vertex and rescales
// the kept weights so they sum to the original total of the vertex.
func (t *VertexInfluenceTable) Limit(n int) *VertexInfluenceTable {
	out := &VertexInfluenceTable{Counts: make([]int, len(t.Counts))}
	buf := make([]influence, 0, 8)
	pos := 0
	for v, count := range t.Counts {
		buf = buf[:0]
		var total float32
		for i := pos; i < pos+count; i++ {
			buf = append(buf, influence{t.Joints[i], t.Weights[i]})
			total += t.Weights[i]
		}
		pos += count

		if len(buf) > n {
			sort.SliceStable(buf, func(i, j int) bool { return buf[i].weight > buf[j].weight })
			buf = buf[:n]
		}

		var kept float32
		for _, inf := range buf {
			kept += inf.weight
		}
		scale := float32(1)
		if kept > 0 {
			scale = total / kept
		}
		for _, inf := range buf {
			out.Joints = append(out.Joints, inf.joint)
			out.Weights = append(out.Weights, inf.weight*scale)
		}
		out.Counts[v] = len(buf)
	}
	return out
}
