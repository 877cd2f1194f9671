// Package ingest loads PVT samples from CSV or YAML files.
//
// Property cells that are blank, non-numeric or non-finite load as absent.
// A missing or malformed completion id, test date or pressure fails the load
// with the offending line.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"pvt-resolver/internal/domain"
)

// Key columns every file must carry.
const (
	ColCompletionID = "completion_id"
	ColTestDate     = "test_date"
	ColPressure     = "pressure"
)

// ErrUnsupportedFormat is returned for file extensions other than csv, yaml and yml.
var ErrUnsupportedFormat = eris.New("ingest: unsupported file format")

// LoadFile reads samples from path, picking the parser by extension.
func LoadFile(path string) ([]*domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", path)
	}
}

// ReadCSV parses a header-led CSV. Columns may appear in any order; property
// columns are optional and unknown columns are rejected.
func ReadCSV(r io.Reader) ([]*domain.Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}

	idx, props, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var samples []*domain.Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}

		s, err := parseKey(record[idx[ColCompletionID]], record[idx[ColTestDate]], record[idx[ColPressure]])
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: csv line %d", line)
		}
		for col, p := range props {
			s.Properties.Set(p, parseValue(record[col]))
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func mapHeader(header []string) (map[string]int, map[int]domain.Property, error) {
	idx := make(map[string]int, 3)
	props := make(map[int]domain.Property)
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if seen[name] {
			return nil, nil, eris.Errorf("ingest: duplicate column %q", raw)
		}
		seen[name] = true
		switch name {
		case ColCompletionID, ColTestDate, ColPressure:
			idx[name] = i
		default:
			p, ok := domain.ParseProperty(name)
			if !ok {
				return nil, nil, eris.Errorf("ingest: unknown column %q", raw)
			}
			props[i] = p
		}
	}
	for _, col := range []string{ColCompletionID, ColTestDate, ColPressure} {
		if _, ok := idx[col]; !ok {
			return nil, nil, eris.Errorf("ingest: missing column %q", col)
		}
	}
	return idx, props, nil
}

type yamlFile struct {
	Samples []map[string]any `yaml:"samples"`
}

// ReadYAML parses a document of the form
//
//	samples:
//	  - completion_id: C1
//	    test_date: 2023-11-20
//	    pressure: 1000
//	    oil_formation_volume_factor: 1.1
func ReadYAML(r io.Reader) ([]*domain.Sample, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "ingest: decode yaml")
	}

	samples := make([]*domain.Sample, 0, len(doc.Samples))
	for i, row := range doc.Samples {
		s, err := parseKey(scalar(row[ColCompletionID]), scalar(row[ColTestDate]), scalar(row[ColPressure]))
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: yaml sample %d", i)
		}
		for k, v := range row {
			switch k {
			case ColCompletionID, ColTestDate, ColPressure:
				continue
			}
			p, ok := domain.ParseProperty(k)
			if !ok {
				return nil, eris.Errorf("ingest: yaml sample %d: unknown field %q", i, k)
			}
			s.Properties.Set(p, parseValue(scalar(v)))
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// scalar renders a decoded YAML value as text. yaml.v3 decodes unquoted
// dates into time.Time when the target is any.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case interface{ Format(string) string }:
		return t.Format(domain.DateLayout)
	default:
		return ""
	}
}

func parseKey(id, date, pressure string) (*domain.Sample, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, eris.New("completion_id is empty")
	}
	d, err := domain.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, eris.Wrapf(err, "test_date %q", date)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(pressure), 64)
	if err != nil || !domain.IsFinite(p) {
		return nil, eris.Errorf("pressure %q is not a finite number", pressure)
	}
	return &domain.Sample{CompletionID: id, TestDate: d, Pressure: p}, nil
}

// parseValue returns nil for blank, malformed or non-finite input.
func parseValue(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !domain.IsFinite(v) {
		return nil
	}
	return domain.Float(v)
}
