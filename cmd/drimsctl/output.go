package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

var stdout io.Writer = os.Stdout

// column is one table column read from a dot-separated path in each row.
type column struct {
	Header string
	Path   string
	Width  int
}

func structured() bool {
	return outputFmt == "json" || outputFmt == "yaml"
}

func printOutput(v any) error {
	switch outputFmt {
	case "json":
		return printJSON(v)
	case "yaml":
		return printYAML(v)
	default:
		return fmt.Errorf("unsupported output format for structured data: %s (use json or yaml)", outputFmt)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(v any) error {
	// Convert through JSON to get consistent keys (json tags).
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	return enc.Encode(m)
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)

	upperHeaders := make([]string, len(headers))
	for i, h := range headers {
		upperHeaders[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(w, strings.Join(upperHeaders, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// printRows renders items as a table of cols, or as json/yaml when asked.
func printRows(items []map[string]any, cols []column) error {
	if structured() {
		return printOutput(items)
	}
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			val := extractValue(item, c.Path)
			if val == "" {
				val = "-"
			}
			if c.Width > 0 {
				val = truncate(val, c.Width)
			}
			row[i] = val
		}
		rows = append(rows, row)
	}
	printTable(headers, rows)
	return nil
}

// printDetail renders one record as aligned label: value lines.
func printDetail(item map[string]any, cols []column) error {
	if structured() {
		return printOutput(item)
	}
	for _, c := range cols {
		val := extractValue(item, c.Path)
		if val == "" {
			val = "-"
		}
		fmt.Fprintf(stdout, "  %-20s %s\n", c.Header+":", val)
	}
	return nil
}

// extractValue reads a dot-separated path from decoded JSON and formats it.
func extractValue(data map[string]any, path string) string {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = m[part]
	}

	switch v := current.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []any:
		strs := make([]string, 0, len(v))
		for _, item := range v {
			strs = append(strs, fmt.Sprintf("%v", item))
		}
		return strings.Join(strs, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// listItems returns the array under key in a list response.
func listItems(data map[string]any, key string) []map[string]any {
	arr, ok := data[key].([]any)
	if !ok {
		return nil
	}
	result := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}

// truncate shortens a string to max length, appending "..." if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
