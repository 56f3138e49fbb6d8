// ABOUTME: Code128 barcode rendering for catalog item codes.
// ABOUTME: Produces scaled PNG images suitable for embedding in spreadsheets.

package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

var (
	ErrEmptyCode     = errors.New("item code is empty")
	ErrUnencodable   = errors.New("item code contains characters Code128 cannot encode")
	ErrImageTooSmall = errors.New("barcode dimensions must be positive")
)

// EncodeError reports a code that could not be rendered.
type EncodeError struct {
	Code string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode barcode %q: %v", e.Code, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Options controls the rendered image size.
type Options struct {
	// ModuleWidth is the width in pixels of the narrowest bar.
	ModuleWidth int
	// Height is the image height in pixels.
	Height int
}

// DefaultOptions matches the image size used for catalog exports.
func DefaultOptions() Options {
	return Options{ModuleWidth: 2, Height: 100}
}

// Encode builds the Code128 symbol for code. The symbol's Content() is the
// input string.
func Encode(code string) (bc.BarcodeIntCS, error) {
	if code == "" {
		return nil, &EncodeError{Code: code, Err: ErrEmptyCode}
	}
	for _, r := range code {
		if r > 127 {
			return nil, &EncodeError{Code: code, Err: fmt.Errorf("%w: %q", ErrUnencodable, r)}
		}
	}

	symbol, err := code128.Encode(code)
	if err != nil {
		return nil, &EncodeError{Code: code, Err: fmt.Errorf("%w: %v", ErrUnencodable, err)}
	}
	return symbol, nil
}

// Generate renders code as a PNG image.
func Generate(code string, opts Options) ([]byte, error) {
	if opts.ModuleWidth <= 0 || opts.Height <= 0 {
		return nil, &EncodeError{Code: code, Err: ErrImageTooSmall}
	}

	symbol, err := Encode(code)
	if err != nil {
		return nil, err
	}

	width := symbol.Bounds().Dx() * opts.ModuleWidth
	scaled, err := bc.Scale(symbol, width, opts.Height)
	if err != nil {
		return nil, &EncodeError{Code: code, Err: err}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, &EncodeError{Code: code, Err: err}
	}
	return buf.Bytes(), nil
}
