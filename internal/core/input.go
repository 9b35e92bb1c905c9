package core

// input.go normalizes raw upload bytes before CSV parsing.
//
//   - A UTF-8 BOM (0xEF 0xBB 0xBF), commonly added by Windows programs, is skipped
//   - Invalid UTF-8 sequences are replaced with U+FFFD
//
// Use NewInputReader to apply both transforms in the correct order.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// InputReader wraps an io.Reader, skips a leading BOM and replaces invalid
// UTF-8 with the replacement character.
type InputReader struct {
	br         *bufio.Reader
	bomChecked bool
	pending    []byte // encoded rune that did not fit the caller's buffer
	BytesRead  int64  // bytes consumed from the underlying reader
}

// NewInputReader creates a BOM-skipping, UTF-8 sanitizing reader.
func NewInputReader(r io.Reader) *InputReader {
	return &InputReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *InputReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !r.bomChecked {
		r.bomChecked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
			r.br.Discard(len(utf8BOM))
			r.BytesRead += int64(len(utf8BOM))
		}
	}

	n := 0
	for n < len(p) {
		if len(r.pending) > 0 {
			c := copy(p[n:], r.pending)
			r.pending = r.pending[c:]
			n += c
			continue
		}

		ru, size, err := r.br.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		r.BytesRead += int64(size)

		// Invalid bytes come back as RuneError, which encodes as U+FFFD.
		var buf [utf8.UTFMax]byte
		k := utf8.EncodeRune(buf[:], ru)
		r.pending = append(r.pending[:0], buf[:k]...)
	}
	return n, nil
}
