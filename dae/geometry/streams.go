package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/document"
	"github.com/mogaika/dae_browser/dae/indices"
)

func hasAll(r *accessor.Resolved, names []string) bool {
	for _, name := range names {
		if !r.Has(name) {
			return false
		}
	}
	return true
}

// gatherVectors reads width components per vertex. Named components are
// preferred, otherwise the first width values of each record are used.
func gatherVectors(doc *document.Document, element string, b binding, idx []int, width int, names []string) ([]float32, error) {
	r, err := doc.Sources.Resolve(element, b.source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve %s of %q", b.semantic, element)
	}
	var fields []string
	if hasAll(r, names) {
		fields = names
	}
	return gatherRecords(r, element, b.semantic, idx, width, fields)
}

func gatherRecords(r *accessor.Resolved, element, semantic string, idx []int, width int, fields []string) ([]float32, error) {
	values, err := r.Floats(fields...)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s of %q", semantic, element)
	}
	blockSize, _ := r.BlockSize(fields...)
	if blockSize < width {
		return nil, errors.Errorf("%q: %s source %q has %d values per record, need %d",
			element, semantic, r.Descriptor().Owner, blockSize, width)
	}

	out := make([]float32, len(idx)*width)
	for i, index := range idx {
		if index < 0 || index >= r.Count() {
			return nil, &dae.IndexOutOfRangeError{Element: element, What: semantic, Index: index, Len: r.Count()}
		}
		copy(out[i*width:(i+1)*width], values[index*blockSize:index*blockSize+width])
	}
	return out, nil
}

func gatherColors(doc *document.Document, element string, b binding, idx []int) ([]mgl32.Vec4, error) {
	r, err := doc.Sources.Resolve(element, b.source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve %s of %q", b.semantic, element)
	}

	var fields []string
	if hasAll(r, []string{"R", "G", "B"}) {
		fields = []string{"R", "G", "B"}
		if r.Has("A") {
			fields = append(fields, "A")
		}
	}
	blockSize, err := r.BlockSize(fields...)
	if err != nil {
		return nil, err
	}
	width := 3
	if blockSize >= 4 {
		width = 4
	}

	values, err := gatherRecords(r, element, b.semantic, idx, width, fields)
	if err != nil {
		return nil, err
	}
	colors := make([]mgl32.Vec4, len(idx))
	for i := range colors {
		c := mgl32.Vec4{values[i*width], values[i*width+1], values[i*width+2], 1}
		if width == 4 {
			c[3] = values[i*width+3]
		}
		colors[i] = c
	}
	return colors, nil
}

func toVec3(values []float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(values)/3)
	for i := range out {
		out[i] = mgl32.Vec3{values[i*3], values[i*3+1], values[i*3+2]}
	}
	return out
}

func toVec2(values []float32) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, len(values)/2)
	for i := range out {
		out[i] = mgl32.Vec2{values[i*2], values[i*2+1]}
	}
	return out
}

// topology builds a triangle or line list over the expanded vertices.
// Polygons and fans are split into fans around their first vertex.
func topology(kind document.PrimitiveKind, d *indices.Deinterleaved) []uint32 {
	n := d.VertexCount()
	switch kind {
	case document.Triangles, document.Lines:
		list := make([]uint32, n)
		for i := range list {
			list[i] = uint32(i)
		}
		return list
	}

	list := make([]uint32, 0, n*3)
	for g, start := range d.GroupStarts() {
		count := d.GroupVertexCounts[g]
		s := uint32(start)
		switch kind {
		case document.PolyList, document.Polygons, document.TriFans:
			for j := uint32(1); int(j)+1 < count; j++ {
				list = append(list, s, s+j, s+j+1)
			}
		case document.TriStrips:
			for j := uint32(0); int(j)+2 < count; j++ {
				if j%2 == 0 {
					list = append(list, s+j, s+j+1, s+j+2)
				} else {
					list = append(list, s+j+1, s+j, s+j+2)
				}
			}
		case document.LineStrips:
			for j := uint32(0); int(j)+1 < count; j++ {
				list = append(list, s+j, s+j+1)
			}
		}
	}
	return list
}
