// Package csv tokenizes raw spreadsheet-export text into rows and cells.
//
// This is deliberately not encoding/csv: spreadsheet exports in the wild
// contain unterminated quotes, doubled quotes outside quoted fields, and
// rows of uneven width, and all of them must yield a best-effort row
// instead of an error. The splitter is a single left-to-right scan with a
// quoted/unquoted mode flag; no state survives between rows.
package csv

import "strings"

// RawTable is the splitter output: rows of cells, header row first.
type RawTable [][]string

// Splitter tokenizes one CSV line at a time.
//
// TrimFields selects the permissive policy (surrounding whitespace is
// stripped from every field, matching what most spreadsheet exports
// intend). Setting it false preserves fields byte-for-byte.
type Splitter struct {
	TrimFields bool
}

// NewSplitter returns a splitter with the given trim policy.
func NewSplitter(trim bool) *Splitter {
	return &Splitter{TrimFields: trim}
}

// Split tokenizes a single line into fields.
//
// A '"' toggles quoted mode, except a doubled '""' inside quotes, which
// emits one literal quote. A ',' outside quotes ends the field. End of
// line always flushes the final field, even if empty. A blank line yields
// an empty slice, which callers treat as a skippable row.
func (s *Splitter) Split(line string) []string {
	if strings.TrimSpace(line) == "" {
		return []string{}
	}

	fields := make([]string, 0, 8)
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++ // consume the second quote
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, s.finish(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}

	return append(fields, s.finish(cur.String()))
}

// Parse splits raw export text into a RawTable, dropping blank lines.
// Newline normalization happens here, not in Split: \r\n, \r and \n are
// all row separators.
func (s *Splitter) Parse(text string) RawTable {
	table := RawTable{}
	for _, line := range SplitRows(text) {
		row := s.Split(line)
		if len(row) == 0 {
			continue
		}
		table = append(table, row)
	}
	return table
}

func (s *Splitter) finish(field string) string {
	if s.TrimFields {
		return strings.TrimSpace(field)
	}
	return field
}

// SplitRows normalizes line endings and splits raw text into lines.
// A UTF-8 BOM on the first line is stripped so header matching works on
// files saved by Excel.
func SplitRows(text string) []string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="value"), and any
// stray surrounding quotes the splitter left behind.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
