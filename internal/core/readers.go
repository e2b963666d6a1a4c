package core

// readers.go provides streaming readers that prepare CSV input for import.
//
//   - BOMSkippingReader: removes a leading UTF-8 BOM (0xEF 0xBB 0xBF) that
//     spreadsheet programs on Windows like to add
//   - UTF8ValidatingReader: fails with ErrInvalidInput as soon as the input
//     stops being valid UTF-8
//
// Use WrapForImport to apply both in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call drops the BOM.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		// A short Peek means there is no full BOM; the error resurfaces on Read.
		if head, err := b.r.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = b.r.Discard(len(utf8BOM))
		}
	}
	return b.r.Read(p)
}

// UTF8ValidatingReader passes bytes through unchanged and returns an error
// wrapping ErrInvalidInput once an invalid sequence is seen. Multi-byte
// sequences split across reads are handled.
type UTF8ValidatingReader struct {
	r       io.Reader
	pending []byte // incomplete trailing sequence from the previous read
	offset  int64
	err     error
}

// NewUTF8ValidatingReader creates a validating reader.
func NewUTF8ValidatingReader(r io.Reader) *UTF8ValidatingReader {
	return &UTF8ValidatingReader{r: r}
}

// Read implements io.Reader.
func (v *UTF8ValidatingReader) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}

	n, err := v.r.Read(p)
	if n > 0 {
		chunk := p[:n]
		if len(v.pending) > 0 {
			chunk = append(slices.Clone(v.pending), chunk...)
		}

		keep := incompleteTrailingBytes(chunk)
		if !utf8.Valid(chunk[:len(chunk)-keep]) {
			return 0, v.fail()
		}
		v.pending = slices.Clone(chunk[len(chunk)-keep:])
		v.offset += int64(n)
	}

	if err == io.EOF && len(v.pending) > 0 {
		return 0, v.fail()
	}
	return n, err
}

func (v *UTF8ValidatingReader) fail() error {
	v.err = fmt.Errorf("%w: encoding error near byte %d, input is not valid UTF-8 text", ErrInvalidInput, v.offset)
	return v.err
}

// incompleteTrailingBytes returns the number of bytes at the end of data
// that start a multi-byte UTF-8 sequence which has not been completed yet.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue // continuation byte
		}
		if b >= 0xC0 && runeLen(b) > i {
			return i
		}
		return 0
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with lead byte b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// WrapForImport strips a BOM and validates UTF-8. The BOM must go first.
func WrapForImport(r io.Reader) io.Reader {
	return NewUTF8ValidatingReader(NewBOMSkippingReader(r))
}
