package timetable

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
)

// Load parses a timetable from a zip archive or a directory of CSV files.
func Load(path string, logger *slog.Logger) (*Timetable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat timetable: %w", err)
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(path), logger)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()
	return LoadFS(r, logger)
}

// LoadFS parses lines.csv, stops.csv, departures.csv and the optional alerts.csv from fsys.
func LoadFS(fsys fs.FS, logger *slog.Logger) (*Timetable, error) {
	tt := &Timetable{}
	var err error

	if tt.Lines, err = parseCSVFile[LineRecord](fsys, "lines.csv"); err != nil {
		return nil, err
	}
	if tt.Stops, err = parseCSVFile[StopRecord](fsys, "stops.csv"); err != nil {
		return nil, err
	}
	if tt.Departures, err = parseCSVFile[DepartureRecord](fsys, "departures.csv"); err != nil {
		return nil, err
	}
	tt.Alerts, err = parseCSVFile[AlertRecord](fsys, "alerts.csv")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	logger.Info("timetable parsed",
		"lines", len(tt.Lines),
		"stops", len(tt.Stops),
		"departures", len(tt.Departures),
		"alerts", len(tt.Alerts),
	)
	return tt, nil
}

// parseCSVFile reads a single CSV file and decodes it into a slice of T using csv struct tags.
func parseCSVFile[T any](fsys fs.FS, name string) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	out, err := decodeCSV[T](f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return out, nil
}

func decodeCSV[T any](r io.Reader) ([]T, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Strip BOM from first field if present
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	fieldMap := buildFieldMap[T](header)

	var results []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		results = append(results, decodeRecord[T](record, fieldMap))
	}
	return results, nil
}

type fieldMapping struct {
	csvIndex   int
	fieldIndex int
}

// buildFieldMap maps CSV column positions to struct field positions.
func buildFieldMap[T any](header []string) []fieldMapping {
	var t T
	typ := reflect.TypeOf(t)

	tagToField := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("csv"); tag != "" {
			tagToField[tag] = i
		}
	}

	var mappings []fieldMapping
	for csvIdx, colName := range header {
		if fieldIdx, ok := tagToField[strings.TrimSpace(colName)]; ok {
			mappings = append(mappings, fieldMapping{csvIndex: csvIdx, fieldIndex: fieldIdx})
		}
	}
	return mappings
}

// decodeRecord fills a struct T from a CSV record using the field mapping.
func decodeRecord[T any](record []string, fieldMap []fieldMapping) T {
	var t T
	v := reflect.ValueOf(&t).Elem()
	for _, fm := range fieldMap {
		if fm.csvIndex < len(record) {
			v.Field(fm.fieldIndex).SetString(strings.TrimSpace(record[fm.csvIndex]))
		}
	}
	return t
}
