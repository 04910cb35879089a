// Package upload extracts reference text from user-supplied files for the
// retrieval-augmented generation path.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxReferenceBytes caps how much of an upload is read.
const MaxReferenceBytes = 2 << 20

// ErrUnsupportedType reports an upload with an extension we do not accept.
var ErrUnsupportedType = errors.New("upload: unsupported file type")

// Extract pulls reference text out of an uploaded file, dispatching on the
// file extension (.txt, .md, .pdf).
func Extract(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	data, err := io.ReadAll(io.LimitReader(r, MaxReferenceBytes))
	if err != nil {
		return "", fmt.Errorf("upload: read %s: %w", filename, err)
	}
	switch ext {
	case ".txt", ".md":
		return strings.TrimSpace(string(data)), nil
	case ".pdf":
		return extractPDFText(data), nil
	default:
		return "", ErrUnsupportedType
	}
}

// extractPDFText is a best-effort scan for readable text in a PDF: printable
// UTF-8 runs of a minimum length are kept, everything else is dropped.
// Compressed content streams yield little; format fidelity is out of scope.
func extractPDFText(data []byte) string {
	const minRun = 4

	var (
		out bytes.Buffer
		run bytes.Buffer
	)
	flush := func() {
		if run.Len() >= minRun {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.Write(run.Bytes())
		}
		run.Reset()
	}

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			flush()
			i++
			continue
		}
		if r == '\n' || r == '\t' || (r >= 0x20 && r != 0x7f) {
			run.WriteRune(r)
		} else {
			flush()
		}
		i += size
	}
	flush()
	return strings.TrimSpace(out.String())
}
