// Package parser decodes drawing program logs into typed events.
//
// A log is a sequence of lines; each non-blank, non-comment line decodes
// to exactly one event or one ParseError. The field layout per record
// kind is a property of the target program's logging convention, carried
// here as a Dialect so nothing downstream hardcodes it.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/canvascheck/canvascheck/internal/model"
)

// Dialect identifies a logging convention of the drawing program.
type Dialect uint8

const (
	DialectUnknown Dialect = iota

	// DialectTagged is the current convention: space-separated fields
	// with a leading kind token (spawn, draw, done).
	DialectTagged

	// DialectLegacy is the original convention: draw records only, six
	// comma-and-space separated fields, no kind token.
	DialectLegacy
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectTagged:
		return "tagged"
	case DialectLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseDialect parses a dialect name.
func ParseDialect(s string) Dialect {
	switch s {
	case "tagged", "v1":
		return DialectTagged
	case "legacy", "v0":
		return DialectLegacy
	default:
		return DialectUnknown
	}
}

// Config holds scanner configuration.
type Config struct {
	// Dialect selects the logging convention to decode.
	Dialect Dialect

	// BufferSize is the size of the read buffer in bytes.
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dialect:    DialectTagged,
		BufferSize: 64 * 1024,
	}
}

// Scanner decodes a log stream line by line. A Scanner is stateless
// between Scan calls and safe for concurrent use.
type Scanner struct {
	cfg Config
}

// NewScanner creates a scanner for the configured dialect.
func NewScanner(cfg Config) (*Scanner, error) {
	if cfg.Dialect != DialectTagged && cfg.Dialect != DialectLegacy {
		return nil, ErrUnknownDialect
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	return &Scanner{cfg: cfg}, nil
}

// Scan reads r to EOF in a single forward pass, invoking fn once per
// non-blank, non-comment line. Exactly one of the two arguments is
// meaningful per call: perr is nil when the line decoded, and the event
// is zero when it did not. A non-nil error from fn aborts the scan and
// is returned as-is. Blank (including whitespace-only) lines and
// comment lines starting with '#' are skipped in every dialect and
// never emit errors.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, fn func(ev model.Event, perr *ParseError) error) error {
	reader := bufio.NewReaderSize(r, s.cfg.BufferSize)

	lineNum := 0
	for {
		select {
		case <-ctx.Done():
			return ErrContextCanceled
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("parser: read: %w", err)
		}
		if len(line) == 0 && err == io.EOF {
			break
		}

		lineNum++
		line = trimLineEnding(line)

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] != '#' {
			ev, perr := s.decodeLine(line, lineNum)
			if cbErr := fn(ev, perr); cbErr != nil {
				return cbErr
			}
		}

		if err == io.EOF {
			break
		}
	}

	return nil
}

// decodeLine dispatches on the configured dialect.
func (s *Scanner) decodeLine(line []byte, lineNum int) (model.Event, *ParseError) {
	if s.cfg.Dialect == DialectLegacy {
		return decodeLegacy(line, lineNum)
	}
	return decodeTagged(line, lineNum)
}

// DetectDialect sniffs a dialect from the head of a log. It inspects the
// first non-blank, non-comment line: a recognized kind token means
// tagged, a line whose first field is numeric means legacy. Returns
// DialectUnknown when the sample decides nothing.
func DetectDialect(sample []byte) Dialect {
	for _, line := range bytes.Split(sample, []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if model.ParseEventKind(string(fields[0])) != model.KindUnknown {
			return DialectTagged
		}
		if _, ok := parseInt(trimTrailingCommas(fields[0])); ok {
			return DialectLegacy
		}
		return DialectUnknown
	}
	return DialectUnknown
}

// trimLineEnding removes trailing \n and \r characters.
func trimLineEnding(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
