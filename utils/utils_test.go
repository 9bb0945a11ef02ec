package utils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRowMajorToMat4(t *testing.T) {
	m := RowMajorToMat4([16]float32{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	})
	if tr := m.Col(3); tr != (mgl32.Vec4{5, 6, 7, 1}) {
		t.Errorf("translation column=%v; expected [5 6 7 1]", tr)
	}
	cols := Mat4ToColumns(m)
	if cols[3] != [4]float32{5, 6, 7, 1} || cols[0] != [4]float32{1, 0, 0, 0} {
		t.Errorf("Mat4ToColumns=%v", cols)
	}
}

func TestColorToRGBA8(t *testing.T) {
	var colorTests = []struct {
		in  mgl32.Vec4
		out [4]uint8
	}{
		{mgl32.Vec4{0, 0.5, 1, 1}, [4]uint8{0, 128, 255, 255}},
		{mgl32.Vec4{-1, 2, 0.2, 0}, [4]uint8{0, 255, 51, 0}},
	}
	for _, test := range colorTests {
		if out := ColorToRGBA8(test.in); out != test.out {
			t.Errorf("ColorToRGBA8(%v)=%v; expected %v", test.in, out, test.out)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("loud", ""); err == nil {
		t.Errorf("NewLogger with unknown level succeeded")
	}

	logger, err := NewLogger("debug", filepath.Join(t.TempDir(), "dae.log"))
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("written to the rotated file")
	logger.Sync()
}

func TestSDump(t *testing.T) {
	dump := SDump(map[string]int{"b": 2, "a": 1})
	if strings.Index(dump, `"a"`) > strings.Index(dump, `"b"`) {
		t.Errorf("SDump did not sort keys: %s", dump)
	}
}
