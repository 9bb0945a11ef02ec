package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RowMajorToMat4 reads a matrix written row by row, as COLLADA stores them.
func RowMajorToMat4(m [16]float32) mgl32.Mat4 {
	return mgl32.Mat4(m).Transpose()
}

// Mat4ToColumns splits m into the column arrays glTF accessors expect.
func Mat4ToColumns(m mgl32.Mat4) (out [4][4]float32) {
	for col := 0; col < 4; col++ {
		out[col] = m.Col(col)
	}
	return out
}
