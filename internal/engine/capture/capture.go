// Package capture writes rendered frames to image files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"
)

// Capture saves frames into a directory, one timestamped file per call.
type Capture struct {
	dir    string
	prefix string
	format string
	now    func() time.Time
}

// New creates a capture writing <prefix>_<timestamp>.<format> files to dir.
// Format is "png" or "bmp".
func New(dir, prefix, format string) (*Capture, error) {
	if _, err := encoder(format); err != nil {
		return nil, err
	}
	return &Capture{dir: dir, prefix: prefix, format: format, now: time.Now}, nil
}

func encoder(format string) (func(io.Writer, image.Image) error, error) {
	switch format {
	case "png":
		return png.Encode, nil
	case "bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("unsupported capture format %q", format)
	}
}

// Filename returns the path the next capture would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.%s", c.prefix, c.now().Format("2006-01-02_15-04-05.000"), c.format)
	if c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// FromPixels converts bottom-up RGBA rows, as read back from a GL
// framebuffer, into a top-down image.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// SavePixels writes a framebuffer read-back and returns the file path.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img)
}

// Save writes img and returns the file path.
func (c *Capture) Save(img image.Image) (string, error) {
	encode, err := encoder(c.format)
	if err != nil {
		return "", err
	}
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding %s: %w", c.format, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filename, err)
	}
	return filename, nil
}
