package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ColorToRGBA8 converts a float color to the normalized bytes of glTF COLOR_0.
func ColorToRGBA8(c mgl32.Vec4) (out [4]uint8) {
	for i := range out {
		out[i] = uint8(mgl32.Clamp(c[i], 0, 1)*255 + 0.5)
	}
	return out
}
