package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Format selects how records are delimited in an input source.
type Format string

const (
	// FormatSMILES reads one record per line; the record body is the
	// first whitespace-separated token (trailing name columns dropped).
	FormatSMILES Format = "smiles"

	// FormatSDF reads multi-line records terminated by the "$$$$"
	// sentinel line.
	FormatSDF Format = "sdf"
)

// sdfSentinel terminates one SDF record.
const sdfSentinel = "$$$$"

// Reader yields records one at a time. Next returns io.EOF after the
// last record; a reader is not resumable once exhausted.
type Reader interface {
	Next() (string, error)
}

// NewReader wraps an input stream with the reader for the given format.
// An unknown format is a configuration error, rejected before any read.
func NewReader(r io.Reader, format Format) (Reader, error) {
	switch format {
	case FormatSMILES:
		return &lineReader{scanner: bufio.NewScanner(r)}, nil
	case FormatSDF:
		return &sdfReader{reader: bufio.NewReader(r)}, nil
	default:
		return nil, fmt.Errorf("unknown record format %q", format)
	}
}

// ParseFormat validates a format name from configuration.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatSMILES:
		return FormatSMILES, nil
	case FormatSDF:
		return FormatSDF, nil
	default:
		return "", fmt.Errorf("unknown record format %q", name)
	}
}

// lineReader reads delimiter-terminated records, skipping blank lines.
type lineReader struct {
	scanner *bufio.Scanner
}

func (r *lineReader) Next() (string, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		// First token only: SMILES files commonly carry a name column.
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			line = line[:i]
		}
		return line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// sdfReader reads multi-line records terminated by the 4-character
// sentinel. The sentinel may carry a trailing carriage return before the
// line break; any non-matching byte resets the match counter.
type sdfReader struct {
	reader    *bufio.Reader
	exhausted bool
}

func (r *sdfReader) Next() (string, error) {
	if r.exhausted {
		return "", io.EOF
	}

	var buf strings.Builder
	match := 0
	for {
		b, err := r.reader.ReadByte()
		if err == io.EOF {
			r.exhausted = true
			rec := strings.TrimSpace(buf.String())
			if rec == "" {
				return "", io.EOF
			}
			return rec, nil
		}
		if err != nil {
			return "", err
		}

		buf.WriteByte(b)
		if b == '$' {
			match++
		} else {
			match = 0
		}

		if match == len(sdfSentinel) {
			r.consumeLineBreak()
			rec := buf.String()
			rec = strings.TrimSpace(rec[:len(rec)-len(sdfSentinel)])
			return rec, nil
		}
	}
}

// consumeLineBreak eats an optional "\r" and the "\n" after a sentinel.
func (r *sdfReader) consumeLineBreak() {
	b, err := r.reader.ReadByte()
	if err != nil {
		r.exhausted = true
		return
	}
	if b == '\r' {
		b, err = r.reader.ReadByte()
		if err != nil {
			r.exhausted = true
			return
		}
	}
	if b != '\n' {
		_ = r.reader.UnreadByte()
	}
}
