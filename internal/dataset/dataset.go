// Package dataset loads the historical energy measurements and answers the
// aggregate queries served to the dashboard.
//
// A Dataset is built once by Load and never modified afterwards, so every
// query is safe for concurrent use without locking.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
)

// Column names the queries read.
const (
	ColumnEnergyTotal = "energy_consumption_llm_total"
	ColumnWordCount   = "word_count"
)

var (
	// ErrEmptyDataset is returned by Load when no measurement row could be read.
	ErrEmptyDataset = errors.New("no measurement data loaded")

	// ErrMissingColumn is returned by queries that need a column none of the files carry.
	ErrMissingColumn = errors.New("missing column")
)

// Record is one measurement row tagged with the file it came from.
type Record struct {
	Model      string `csv:"-"`
	Platform   string `csv:"-"`
	SourceFile string `csv:"-"`

	EnergyTotal   Measurement `csv:"energy_consumption_llm_total"`
	EnergyCPU     Measurement `csv:"energy_consumption_llm_cpu"`
	EnergyGPU     Measurement `csv:"energy_consumption_llm_gpu"`
	WordCount     Measurement `csv:"word_count"`
	TotalDuration Measurement `csv:"total_duration"`
}

// Dataset is the immutable, sorted union of all measurement files.
type Dataset struct {
	records []Record
	columns map[string]bool
	files   int
}

// New builds a Dataset from already tagged records. Records are stably sorted
// by (model, platform).
func New(records []Record, columns []string) *Dataset {
	d := &Dataset{
		records: make([]Record, len(records)),
		columns: make(map[string]bool, len(columns)),
	}
	copy(d.records, records)
	sort.SliceStable(d.records, func(i, j int) bool {
		a, b := d.records[i], d.records[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.Platform < b.Platform
	})

	files := make(map[string]bool)
	for _, r := range d.records {
		files[r.SourceFile] = true
	}
	d.files = len(files)

	for _, c := range columns {
		d.columns[c] = true
	}
	return d
}

// Load reads every *.csv file of dir in lexical order. Files whose name does
// not follow the naming convention, or that fail to parse, are logged and
// skipped. It returns ErrEmptyDataset when no row was loaded.
func Load(dir string, logger zerolog.Logger) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var records []Record
	columns := make(map[string]bool)
	for _, name := range names {
		model, platform, ok := ParseFilename(name)
		if !ok {
			logger.Warn().Str("file", name).Msg("Skipping file with unknown name format")
			continue
		}

		rows, header, err := readFile(filepath.Join(dir, name))
		if err != nil {
			logger.Error().Err(err).Str("file", name).Msg("Failed to load measurement file")
			continue
		}
		for _, c := range header {
			columns[c] = true
		}
		for _, r := range rows {
			r.Model = model
			r.Platform = platform
			r.SourceFile = name
			records = append(records, *r)
		}
		logger.Debug().
			Str("file", name).
			Str("model", model).
			Str("platform", platform).
			Int("rows", len(rows)).
			Msg("Loaded measurement file")
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrEmptyDataset, dir)
	}

	header := make([]string, 0, len(columns))
	for c := range columns {
		header = append(header, c)
	}
	d := New(records, header)
	logger.Info().
		Int("rows", d.Len()).
		Int("files", d.Files()).
		Msg("Measurement data loaded")
	return d, nil
}

// headerReader remembers the header row gocsv consumes.
type headerReader struct {
	gocsv.CSVReader
	header []string
}

func (h *headerReader) ReadAll() ([][]string, error) {
	rows, err := h.CSVReader.ReadAll()
	if len(rows) > 0 {
		h.header = rows[0]
	}
	return rows, err
}

func readFile(path string) ([]*Record, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	hr := &headerReader{CSVReader: r}

	var rows []*Record
	if err := gocsv.UnmarshalCSV(hr, &rows); err != nil {
		return nil, nil, err
	}
	return rows, hr.header, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Files returns the number of files that contributed rows.
func (d *Dataset) Files() int {
	return d.files
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.records) == 0
}

// HasColumn reports whether any loaded file carried the column.
func (d *Dataset) HasColumn(name string) bool {
	return d.columns[name]
}

// Records returns a copy of the rows in dataset order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}
