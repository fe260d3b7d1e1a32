package retro

import (
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/retro/pcx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var inputExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".pcx":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

var outputExtensions = map[string]struct{}{
	".gif": {},
	".pcx": {},
	".png": {},
}

func isImage(file string) bool {
	_, ok := inputExtensions[strings.ToLower(filepath.Ext(file))]
	return ok
}

// Encode writes m to w in the format implied by the file extension ext,
// which is one of ".png", ".gif" or ".pcx".
func Encode(w io.Writer, m image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, m)
	case ".gif":
		return gif.Encode(w, m, &gif.Options{NumColors: 256})
	case ".pcx":
		return pcx.Encode(w, m)
	}
	return fmt.Errorf("%w: %q", errUnknownOutput, ext)
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// ConvertFile reads the image in, converts it and writes the result to out,
// the format being chosen by the extension of out. Any missing parent
// directories of out are created.
func (c *Converter) ConvertFile(in, out string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(out))
	if _, ok := outputExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownOutput, ext)
	}

	m, err := decodeFile(in)
	if err != nil {
		return nil, err
	}

	r, err := c.Convert(m, cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := Encode(f, r.Image, ext); err != nil {
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, err
	}

	c.logger.Printf("Converted \"%s\" to \"%s\"\n", in, out)

	return r, nil
}
