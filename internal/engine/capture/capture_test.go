package capture

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

// pixels returns a bottom-up 2x2 frame: bottom row red, top row blue.
func pixels() []byte {
	return []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
}

func TestFromPixelsFlips(t *testing.T) {
	img, err := FromPixels(pixels(), 2, 2)
	if err != nil {
		t.Fatalf("FromPixels: %v", err)
	}

	if r, _, b, _ := img.At(0, 0).RGBA(); b == 0 || r != 0 {
		t.Errorf("top-left should be blue, got %v", img.At(0, 0))
	}
	if r, _, b, _ := img.At(1, 1).RGBA(); r == 0 || b != 0 {
		t.Errorf("bottom-right should be red, got %v", img.At(1, 1))
	}
}

func TestFromPixelsErrors(t *testing.T) {
	if _, err := FromPixels(pixels(), 3, 2); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := FromPixels(nil, 0, 0); err == nil {
		t.Error("expected invalid size error")
	}
}

func TestNewRejectsFormat(t *testing.T) {
	if _, err := New(t.TempDir(), "frame", "gif"); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestSavePixels(t *testing.T) {
	tests := []struct {
		format string
		decode func(*os.File) (image.Image, error)
	}{
		{"png", func(f *os.File) (image.Image, error) { return png.Decode(f) }},
		{"bmp", func(f *os.File) (image.Image, error) { return bmp.Decode(f) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "captures")
			c, err := New(dir, "frame", tt.format)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

			path, err := c.SavePixels(pixels(), 2, 2)
			if err != nil {
				t.Fatalf("SavePixels: %v", err)
			}
			if want := filepath.Join(dir, "frame_2024-03-01_12-00-00.000."+tt.format); path != want {
				t.Errorf("path = %s, want %s", path, want)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer f.Close()
			img, err := tt.decode(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
				t.Errorf("bounds = %v, want 2x2", b)
			}
			if _, _, blue, _ := img.At(0, 0).RGBA(); blue == 0 {
				t.Errorf("top-left should be blue, got %v", img.At(0, 0))
			}
		})
	}
}

func TestFilenameWithoutDir(t *testing.T) {
	c, err := New("", "shot", "png")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	name := c.Filename()
	if filepath.Dir(name) != "." || !strings.HasPrefix(name, "shot_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("unexpected filename %s", name)
	}
}
