package source

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/estore-app/sheetfeed/internal/csv"
)

// gsxPrefix marks column cells in the legacy public entry feed.
const gsxPrefix = "gsx$"

// DecodeFeed turns a Sheets API response into a raw row table. Two
// shapes are understood: the values API ({"values": [[...], ...]}) and
// the legacy public entry feed, whose rows are objects keyed by
// "gsx$<column>" holding {"$t": <value>}.
func DecodeFeed(data []byte) (csv.RawTable, error) {
	var envelope struct {
		Values [][]any `json:"values"`
		Feed   *struct {
			Entry []map[string]json.RawMessage `json:"entry"`
		} `json:"feed"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	if envelope.Values != nil {
		table := make(csv.RawTable, 0, len(envelope.Values))
		for _, row := range envelope.Values {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = cellString(v)
			}
			table = append(table, cells)
		}
		return table, nil
	}

	if envelope.Feed != nil {
		return decodeEntryFeed(envelope.Feed.Entry)
	}

	return nil, fmt.Errorf("feed response has neither values nor entries")
}

// decodeEntryFeed rebuilds a header row from the gsx$ keys, then one
// data row per entry. Column order in the legacy feed is lost, so keys
// are sorted; header resolution matches by name, not position.
func decodeEntryFeed(entries []map[string]json.RawMessage) (csv.RawTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry feed has no rows")
	}

	seen := map[string]bool{}
	var columns []string
	for _, entry := range entries {
		for key := range entry {
			if !strings.HasPrefix(key, gsxPrefix) || seen[key] {
				continue
			}
			seen[key] = true
			columns = append(columns, key)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("entry feed has no gsx columns")
	}
	sort.Strings(columns)

	header := make([]string, len(columns))
	for i, key := range columns {
		header[i] = strings.TrimPrefix(key, gsxPrefix)
	}

	table := make(csv.RawTable, 0, len(entries)+1)
	table = append(table, header)
	for _, entry := range entries {
		row := make([]string, len(columns))
		for i, key := range columns {
			raw, ok := entry[key]
			if !ok {
				continue
			}
			var cell struct {
				T string `json:"$t"`
			}
			if err := json.Unmarshal(raw, &cell); err != nil {
				continue
			}
			row[i] = cell.T
		}
		table = append(table, row)
	}
	return table, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
