package renderer

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Framebuffer is a row-major RGB image, three bytes per pixel
type Framebuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Width: width, Height: height, Pix: make([]byte, 3*width*height)}
}

// validate checks the buffer can hold Width x Height pixels
func (fb *Framebuffer) validate() error {
	if fb == nil || fb.Width <= 0 || fb.Height <= 0 {
		return ErrEmptyBuffer
	}
	if len(fb.Pix) != 3*fb.Width*fb.Height {
		return errors.Wrapf(ErrBufferSize, "%d bytes for %dx%d", len(fb.Pix), fb.Width, fb.Height)
	}
	return nil
}

// Set writes pixel (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Color8) {
	i := 3 * (y*fb.Width + x)
	fb.Pix[i] = byte(c.R)
	fb.Pix[i+1] = byte(c.G)
	fb.Pix[i+2] = byte(c.B)
}

// At reads pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Color8 {
	i := 3 * (y*fb.Width + x)
	return core.Color8{R: int(fb.Pix[i]), G: int(fb.Pix[i+1]), B: int(fb.Pix[i+2]), A: 255}
}

// Image converts the framebuffer to an RGBA image
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, j := 0, 0; i < len(fb.Pix); i, j = i+3, j+4 {
		img.Pix[j] = fb.Pix[i]
		img.Pix[j+1] = fb.Pix[i+1]
		img.Pix[j+2] = fb.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// WritePNG encodes the framebuffer as PNG
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return errors.Wrap(png.Encode(w, fb.Image()), "encoding png")
}

// WriteGIF encodes frames as a looping animated GIF.
// delay is in 100ths of a second per frame.
func WriteGIF(w io.Writer, frames []*Framebuffer, delay int) error {
	out := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(frames)),
		Delay: make([]int, 0, len(frames)),
	}
	for _, fb := range frames {
		rgba := fb.Image()
		pimg := image.NewPaletted(rgba.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), rgba, image.Point{})
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}
	return errors.Wrap(gif.EncodeAll(w, out), "encoding gif")
}
