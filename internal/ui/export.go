package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ikersanz-debug/MyTracker/internal/stats"
)

// Series output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// writeSeries renders a cumulative series. names maps series keys to the
// column titles used by the table and CSV formats.
func writeSeries(w io.Writer, series stats.Series, format string, names map[string]string) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return writeSeriesTable(w, series, names)
	case FormatCSV:
		return writeSeriesCSV(w, series, names)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(series); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, csv, json or yaml)", format)
	}
}

func columnTitle(key string, names map[string]string) string {
	if n, ok := names[key]; ok && n != "" {
		return n
	}
	return key
}

func writeSeriesCSV(w io.Writer, series stats.Series, names map[string]string) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "total"}
	for _, k := range series.Keys {
		header = append(header, columnTitle(k, names))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range series.Rows {
		rec := []string{row.Date, strconv.Itoa(row.Total)}
		for _, k := range series.Keys {
			rec = append(rec, strconv.Itoa(row.Subjects[k]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSeriesTable(w io.Writer, series stats.Series, names map[string]string) error {
	widths := make([]int, len(series.Keys))
	header := fmt.Sprintf("  %-10s  %8s", "Date", "Total")
	for i, k := range series.Keys {
		title := truncate(columnTitle(k, names), 16)
		widths[i] = max(len([]rune(title)), 8)
		header += fmt.Sprintf("  %*s", widths[i], title)
	}
	if _, err := fmt.Fprintln(w, formatHeader(header)); err != nil {
		return err
	}
	for _, row := range series.Rows {
		line := fmt.Sprintf("  %-10s  %8s", row.Date, FormatDuration(row.Total))
		for i, k := range series.Keys {
			line += fmt.Sprintf("  %*s", widths[i], FormatDuration(row.Subjects[k]))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
