// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat converts a string (case-insensitive) to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Exportable is the set of record types ExportAggregatedData accepts.
type Exportable interface {
	models.DailyStats | models.WeeklyStats
}

// ExportAggregatedData serializes stats records.
//
// json produces a 2-space indented array ("[]" for empty input). csv produces a
// header of the records' json field names followed by one row per record;
// fields holding nested objects or lists are left out, and values containing a
// comma are double-quoted. Empty csv input yields "".
func ExportAggregatedData[T Exportable](format Format, data []T) (string, error) {
	start := time.Now()

	var out string
	var err error
	switch format {
	case FormatJSON:
		out, err = exportJSON(data)
	case FormatCSV:
		out, err = exportCSV(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	metrics.RecordAggregation("export_"+string(format), len(data), time.Since(start))
	return out, nil
}

func exportJSON[T any](data []T) (string, error) {
	if data == nil {
		data = []T{}
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(b), nil
}

// csvColumn is one flat exported field.
type csvColumn struct {
	name  string
	index int
}

// csvColumns lists the json-named scalar fields of struct type t.
func csvColumns(t reflect.Type) []csvColumn {
	var cols []csvColumn
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		switch f.Type.Kind() {
		case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer, reflect.Interface:
			continue
		}
		cols = append(cols, csvColumn{name: name, index: i})
	}
	return cols
}

func exportCSV[T any](data []T) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	cols := csvColumns(reflect.TypeOf(data[0]))

	var sb strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = csvField(c.name)
	}
	sb.WriteString(strings.Join(header, ","))

	row := make([]string, len(cols))
	for _, record := range data {
		v := reflect.ValueOf(record)
		for i, c := range cols {
			s, err := csvValue(v.Field(c.index))
			if err != nil {
				return "", fmt.Errorf("csv column %s: %w", c.name, err)
			}
			row[i] = csvField(s)
		}
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(row, ","))
	}
	return sb.String(), nil
}

// csvValue formats a scalar field.
func csvValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	}
	return "", fmt.Errorf("unsupported kind %s", v.Kind())
}

// csvField quotes s when it contains a comma, doubling embedded quotes.
func csvField(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
