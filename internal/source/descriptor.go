// Package source fetches raw catalog data from one of several origins
// and turns it into the row table the pipeline consumes.
//
// Supported origins: a direct CSV export URL, a Google spreadsheet id
// plus sheet tab (from which the public CSV export URL is derived), the
// Sheets values API (including the legacy gsx entry feed), and a local
// CSV or XLSX file. Every network attempt is bounded by a timeout, and
// a failed direct fetch is retried once through a configured proxy
// rewrite of the URL.
package source

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind selects the origin type of a Descriptor.
type Kind string

const (
	// KindCSVURL fetches a CSV document from a direct URL.
	KindCSVURL Kind = "csv_url"
	// KindSpreadsheet derives the public CSV export URL from a
	// spreadsheet id and sheet tab (gid).
	KindSpreadsheet Kind = "spreadsheet"
	// KindFeedAPI fetches the Sheets values API, or the legacy public
	// entry feed when no API key is configured.
	KindFeedAPI Kind = "feed_api"
	// KindLocalFile reads a CSV or XLSX file from disk.
	KindLocalFile Kind = "local_file"
)

// Descriptor tells the adapter where one catalog lives.
type Descriptor struct {
	Kind Kind `yaml:"kind"`

	// URL is the direct CSV export URL for KindCSVURL.
	URL string `yaml:"url,omitempty"`

	// SpreadsheetID and GID identify a sheet tab for KindSpreadsheet
	// and KindFeedAPI. GID defaults to "0".
	SpreadsheetID string `yaml:"spreadsheetId,omitempty"`
	GID           string `yaml:"gid,omitempty"`

	// SheetName and APIKey are used by KindFeedAPI. With an APIKey the
	// values API is queried; without one the legacy public entry feed
	// is used instead.
	SheetName string `yaml:"sheetName,omitempty"`
	APIKey    string `yaml:"apiKey,omitempty"`

	// Path is the file location for KindLocalFile.
	Path string `yaml:"path,omitempty"`
}

// Validate reports whether the descriptor names a usable origin.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindCSVURL:
		if strings.TrimSpace(d.URL) == "" {
			return fmt.Errorf("csv_url source requires a url")
		}
	case KindSpreadsheet, KindFeedAPI:
		if strings.TrimSpace(d.SpreadsheetID) == "" {
			return fmt.Errorf("%s source requires a spreadsheetId", d.Kind)
		}
	case KindLocalFile:
		if strings.TrimSpace(d.Path) == "" {
			return fmt.Errorf("local_file source requires a path")
		}
	case "":
		return fmt.Errorf("source kind is empty")
	default:
		return fmt.Errorf("unknown source kind %q", d.Kind)
	}
	return nil
}

// FetchURL returns the concrete URL the adapter requests for a network
// descriptor.
func (d Descriptor) FetchURL() string {
	switch d.Kind {
	case KindCSVURL:
		return d.URL
	case KindSpreadsheet:
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s",
			d.SpreadsheetID, d.gid())
	case KindFeedAPI:
		if d.APIKey != "" {
			sheet := d.SheetName
			if sheet == "" {
				sheet = "Sheet1"
			}
			return fmt.Sprintf("https://sheets.googleapis.com/v4/spreadsheets/%s/values/%s?key=%s",
				d.SpreadsheetID, url.PathEscape(sheet), url.QueryEscape(d.APIKey))
		}
		return fmt.Sprintf("https://spreadsheets.google.com/feeds/list/%s/%s/public/values?alt=json",
			d.SpreadsheetID, d.gid())
	}
	return ""
}

func (d Descriptor) gid() string {
	if d.GID == "" {
		return "0"
	}
	return d.GID
}

// String identifies the origin in logs without leaking the API key.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindCSVURL:
		return fmt.Sprintf("csv_url(%s)", d.URL)
	case KindSpreadsheet:
		return fmt.Sprintf("spreadsheet(%s, gid=%s)", d.SpreadsheetID, d.gid())
	case KindFeedAPI:
		return fmt.Sprintf("feed_api(%s)", d.SpreadsheetID)
	case KindLocalFile:
		return fmt.Sprintf("local_file(%s)", d.Path)
	}
	return "unknown"
}
