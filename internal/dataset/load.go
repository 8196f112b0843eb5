package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Options controls loading of a tabular source.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects from the file extension.
	Delimiter rune
	// Encodings is the ranked list of candidate text encodings. The first
	// that decodes the raw bytes wins. Defaults to UTF-8 with a Latin-1
	// fallback; survey exports are inconsistently encoded, so at least two
	// candidates are always tried.
	Encodings []string
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns the default load behavior.
func DefaultOptions() Options {
	return Options{
		Encodings: []string{"utf-8", "latin-1"},
	}
}

// Load reads a CSV/TSV file into a Dataset. The source is read exactly once;
// two calls on an unchanged file yield row-for-row identical Datasets.
// Failures surface as *SourceError or *DecodeError so callers can show a
// "load failed" state instead of mistaking it for an empty dataset.
func Load(path string, opt Options) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return parse(data, filepath.Base(path), opt)
}

// Read parses a Dataset from an in-memory source, applying the same encoding
// fallback as Load.
func Read(r io.Reader, name string, opt Options) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &SourceError{Source: name, Err: err}
	}
	return parse(data, name, opt)
}

func parse(data []byte, name string, opt Options) (*Dataset, error) {
	encs := opt.Encodings
	if len(encs) == 0 {
		encs = DefaultOptions().Encodings
	}
	text, err := decode(data, encs)
	if err != nil {
		return nil, &DecodeError{Source: name, Tried: encs}
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(name, nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	maxRows := opt.MaxRows
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if maxRows > 0 && len(rows) >= maxRows {
			continue
		}
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}
	return New(name, header, rows), nil
}

// decode tries each candidate encoding in order and returns the first
// successful decoding as a UTF-8 string.
func decode(data []byte, candidates []string) (string, error) {
	var lastErr error
	for _, name := range candidates {
		text, err := decodeAs(data, name)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate encodings")
	}
	return "", lastErr
}

func decodeAs(data []byte, name string) (string, error) {
	switch normalizeEncoding(name) {
	case "utf-8":
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8 byte sequence")
		}
		return string(data), nil
	case "latin-1":
		return decodeWith(data, charmap.ISO8859_1)
	case "windows-1252":
		return decodeWith(data, charmap.Windows1252)
	case "utf-16":
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	case "utf-16le":
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	case "utf-16be":
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

func decodeWith(data []byte, enc encoding.Encoding) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func normalizeEncoding(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", "-")
	switch s {
	case "utf8":
		return "utf-8"
	case "latin1", "iso-8859-1", "iso8859-1":
		return "latin-1"
	case "cp1252", "windows1252":
		return "windows-1252"
	}
	return s
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
