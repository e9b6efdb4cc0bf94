package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// createTestTGA builds an uncompressed 24-bit top-left origin TGA.
func createTestTGA(w, h int, c color.RGBA) []byte {
	buf := new(bytes.Buffer)
	header := make([]byte, 18)
	header[2] = 2 // uncompressed true-color
	header[12] = byte(w)
	header[13] = byte(w >> 8)
	header[14] = byte(h)
	header[15] = byte(h >> 8)
	header[16] = 24
	header[17] = 0x20
	buf.Write(header)
	for range w * h {
		buf.Write([]byte{c.B, c.G, c.R})
	}
	return buf.Bytes()
}

func TestAverageColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 21, G: 41, B: 61, A: 255})

	got := AverageColor(img)
	want := color.RGBA{R: 15, G: 30, B: 45, A: 255}
	if got != want {
		t.Errorf("AverageColor() = %v, want %v", got, want)
	}
}

func TestAverageColor_Empty(t *testing.T) {
	got := AverageColor(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if got != (color.RGBA{A: 255}) {
		t.Errorf("expected opaque black, got %v", got)
	}
}

func TestDecode_Formats(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	src := solidImage(4, 4, c)

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}

	tests := []struct {
		path string
		data []byte
	}{
		{"a.png", pngBuf.Bytes()},
		{"a.BMP", bmpBuf.Bytes()},
		{"a.tga", createTestTGA(4, 4, c)},
	}
	for _, tc := range tests {
		img, err := Decode(tc.data, tc.path)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", tc.path, err)
		}
		if got := AverageColor(img); got != c {
			t.Errorf("%s: average = %v, want %v", tc.path, got, c)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte("nope"), "a.gif"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Decode([]byte("nope"), "a.png"); err == nil {
		t.Error("expected error for corrupt png")
	}
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "terrain0.png"), solidImage(2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255}))
	writePNG(t, filepath.Join(dir, "terrain7.png"), solidImage(2, 2, color.RGBA{R: 70, G: 80, B: 90, A: 255}))
	if err := os.WriteFile(filepath.Join(dir, "terrain3.png"), []byte("corrupt"), 0644); err != nil {
		t.Fatal(err)
	}
	// Beyond maxID, never read.
	writePNG(t, filepath.Join(dir, "terrain9.png"), solidImage(1, 1, color.RGBA{A: 255}))

	palette, err := LoadPalette(dir, "terrain%d.png", 8)
	if err != nil {
		t.Fatalf("LoadPalette failed: %v", err)
	}
	if len(palette) != 2 {
		t.Fatalf("expected 2 textures, got %d", len(palette))
	}
	if c, ok := palette.Color(7); !ok || c != (color.RGBA{R: 70, G: 80, B: 90, A: 255}) {
		t.Errorf("palette[7] = %v, %v", c, ok)
	}
	if c, ok := palette.Color(3); ok || c != (color.RGBA{A: 255}) {
		t.Errorf("corrupt texture should be absent, got %v", c)
	}
}

func TestLoadPalette_BadPattern(t *testing.T) {
	if _, err := LoadPalette(t.TempDir(), "terrain.png", 1); err == nil {
		t.Error("expected error for pattern without %d")
	}
}
