// Package export writes a user's data to CSV, JSON or YAML files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/hibidash/internal/store"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in picker order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
}

// Label is the name shown in the export picker.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "CSV (spending)"
	case FormatJSON:
		return "JSON (everything)"
	case FormatYAML:
		return "YAML (everything)"
	}
	return string(f)
}

// Filename returns hibidash-<kind>-<date>.<ext>.
func Filename(f Format, day time.Time) string {
	kind := "export"
	if f == FormatCSV {
		kind = "spending"
	}
	return fmt.Sprintf("hibidash-%s-%s.%s", kind, day.Format("2006-01-02"), f)
}

// Write exports user's data into dir and returns the written path.
func Write(src Source, user *store.User, f Format, dir string) (string, error) {
	path := filepath.Join(dir, Filename(f, time.Now()))
	switch f {
	case FormatCSV:
		entries, err := src.ListSpending(user.ID)
		if err != nil {
			return "", err
		}
		return path, ToCSV(entries, path)
	case FormatJSON, FormatYAML:
		snap, err := Collect(src, user)
		if err != nil {
			return "", err
		}
		if f == FormatJSON {
			return path, ToJSON(snap, path)
		}
		return path, ToYAML(snap, path)
	}
	return "", fmt.Errorf("unknown export format %q", f)
}
