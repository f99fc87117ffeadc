package dcadash

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// maxLineSize bounds a single NDJSON record.
const maxLineSize = 1 << 20

// DecodeNDJSON decodes one T per non blank line of r.
//
// Malformed lines are logged, reported as *ParseError and skipped: a bad line never
// aborts the decoding. The returned error is only set when r itself fails.
// resource names the stream in messages.
func DecodeNDJSON[T any](r io.Reader, resource string, log zerolog.Logger) ([]T, []*ParseError, error) {
	var (
		items []T
		bad   []*ParseError
	)
	err := scanLines(r, func(i int, line string) {
		var item T
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			bad = append(bad, badLine(log, resource, i, line, err))
			return
		}
		items = append(items, item)
	})
	if err != nil {
		return nil, bad, fmt.Errorf("cannot read %s: %w", resource, err)
	}
	return items, bad, nil
}

// scanLines calls f for every non blank line with its 1-based line number.
func scanLines(r io.Reader, f func(i int, line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		f(i, line)
	}
	return scanner.Err()
}

func badLine(log zerolog.Logger, resource string, i int, line string, err error) *ParseError {
	perr := &ParseError{Resource: resource, Line: i, Err: err}
	log.Warn().Err(err).Str("resource", resource).Int("line", i).Str("text", truncate(line, 120)).Msg("skipping malformed NDJSON line")
	return perr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
