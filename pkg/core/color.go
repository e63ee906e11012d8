package core

import (
	"fmt"
	"image/color"
	"math"
)

// Color is a floating point RGB color. Every channel stays within [0, 1].
type Color struct {
	R, G, B float64
}

// Color8 is an integer RGBA color. Every channel stays within [0, 255].
type Color8 struct {
	R, G, B, A int
}

var (
	Black = Color{}
	White = Color{1, 1, 1}
)

// clampUnit clamps a channel into [0, limit]; NaN becomes 0
func clampUnit(x, limit float64) float64 {
	if x != x || x < 0 {
		return 0
	}
	if x > limit {
		return limit
	}
	return x
}

func clampByte(x int) int {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// NewColor creates a clamped float color
func NewColor(r, g, b float64) Color {
	return Color{clampUnit(r, 1), clampUnit(g, 1), clampUnit(b, 1)}
}

// Gray creates a color with equal channels
func Gray(level float64) Color {
	return NewColor(level, level, level)
}

// Add returns the clamped sum of two colors
func (c Color) Add(other Color) Color {
	return NewColor(c.R+other.R, c.G+other.G, c.B+other.B)
}

// Subtract returns the clamped difference of two colors
func (c Color) Subtract(other Color) Color {
	return NewColor(c.R-other.R, c.G-other.G, c.B-other.B)
}

// Multiply returns the component-wise product of two colors
func (c Color) Multiply(other Color) Color {
	return NewColor(c.R*other.R, c.G*other.G, c.B*other.B)
}

// Scale returns the color multiplied by a scalar, clamped
func (c Color) Scale(s float64) Color {
	return NewColor(c.R*s, c.G*s, c.B*s)
}

// Divide returns the color divided by a scalar, clamped.
// Division by zero saturates nonzero channels.
func (c Color) Divide(s float64) Color {
	return NewColor(c.R/s, c.G/s, c.B/s)
}

// To8 converts to an opaque integer color, rounding to nearest
func (c Color) To8() Color8 {
	return NewColor8(
		int(math.Round(c.R*255)),
		int(math.Round(c.G*255)),
		int(math.Round(c.B*255)),
		255,
	)
}

func (c Color) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", c.R, c.G, c.B)
}

// NewColor8 creates a clamped integer color
func NewColor8(r, g, b, a int) Color8 {
	return Color8{clampByte(r), clampByte(g), clampByte(b), clampByte(a)}
}

// Add returns the clamped sum of two colors; alpha is kept from the receiver
func (c Color8) Add(other Color8) Color8 {
	return NewColor8(c.R+other.R, c.G+other.G, c.B+other.B, c.A)
}

// Subtract returns the clamped difference of two colors
func (c Color8) Subtract(other Color8) Color8 {
	return NewColor8(c.R-other.R, c.G-other.G, c.B-other.B, c.A)
}

// Multiply returns the component-wise product, normalized to [0, 255]
func (c Color8) Multiply(other Color8) Color8 {
	return NewColor8(c.R*other.R/255, c.G*other.G/255, c.B*other.B/255, c.A)
}

// Scale returns the color multiplied by a scalar, clamped
func (c Color8) Scale(s float64) Color8 {
	return NewColor8(scaleByte(c.R, s), scaleByte(c.G, s), scaleByte(c.B, s), c.A)
}

// Divide returns the color divided by a scalar, clamped
func (c Color8) Divide(s float64) Color8 {
	return c.Scale(1 / s)
}

func scaleByte(x int, s float64) int {
	return int(math.Round(clampUnit(float64(x)*s, 255)))
}

// ToFloat converts to a float color, dropping alpha
func (c Color8) ToFloat() Color {
	return NewColor(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// RGBA implements image/color.Color
func (c Color8) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(c.A)}.RGBA()
}
