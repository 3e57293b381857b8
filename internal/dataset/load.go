package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
)

// ErrSourceNotFound is returned when the dataset file does not exist.
var ErrSourceNotFound = errors.New("file not found")

// SchemaError reports the first required column missing from the source.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// ParseError reports a source that exists but could not be parsed.
type ParseError struct {
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error loading file: %s", e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// nullValues are cell contents treated as missing: the tokens common CSV
// writers emit for absent values, plus Go's own "<nil>".
var nullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null", "<nil>",
}

// utf8BOM is stripped from the start of a source before parsing.
var utf8BOM = []byte("\xef\xbb\xbf")

// Load reads and validates the CSV at path.
//
// It returns ErrSourceNotFound (wrapped) when the file is missing, a
// *SchemaError naming the first missing required column, or a *ParseError
// when the content is malformed. On any error no dataset is returned.
// Null cells are not rejected; they surface as nil values on the songs.
func Load(path string) (*Dataset, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return parse(path, data, versionOf(data))
}

// Parse validates CSV content already in memory. The source is only used
// for identification.
func Parse(source string, data []byte) (*Dataset, error) {
	return parse(source, data, versionOf(data))
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, &ParseError{Detail: err.Error(), Err: err}
	}
	return data, nil
}

// versionOf derives a stable identifier from the raw content.
func versionOf(data []byte) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, data)
}

func parse(source string, data []byte, version uuid.UUID) (*Dataset, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	// Duplicate names would be renamed by the reader and then reported as
	// missing, so they are rejected by name first.
	if err := checkDuplicateColumns(data); err != nil {
		return nil, err
	}

	// Everything is read as text so that numeric conversion and null
	// handling stay under our control.
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &ParseError{Detail: df.Err.Error(), Err: df.Err}
	}

	columns := df.Names()
	for _, col := range RequiredColumns() {
		if !slices.Contains(columns, col) {
			return nil, &SchemaError{Column: col}
		}
	}

	songs := make([]Song, df.Nrow())

	for j, name := range FeatureNames {
		for i, raw := range df.Col(name).Records() {
			v, err := parseFeature(raw)
			if err != nil {
				return nil, cellError(i, name, raw, err)
			}
			*songs[i].featureRef(j) = v
		}
	}

	for i, raw := range df.Col(ClusterColumn).Records() {
		label, err := parseLabel(raw)
		if err != nil {
			return nil, cellError(i, ClusterColumn, raw, err)
		}
		songs[i].Cluster = label
	}

	if slices.Contains(columns, TrackNameColumn) {
		for i, raw := range df.Col(TrackNameColumn).Records() {
			songs[i].TrackName = textValue(raw)
		}
	}
	if slices.Contains(columns, ArtistColumn) {
		for i, raw := range df.Col(ArtistColumn).Records() {
			songs[i].Artist = textValue(raw)
		}
	}

	return &Dataset{
		source:  source,
		version: version,
		columns: columns,
		songs:   songs,
	}, nil
}

// checkDuplicateColumns rejects a header that names a column we read twice.
func checkDuplicateColumns(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		// Left to the dataframe reader, which reports it with context.
		return nil
	}
	known := append(RequiredColumns(), DescriptiveColumns...)
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] && slices.Contains(known, name) {
			return &ParseError{Detail: fmt.Sprintf("duplicate column: %s", name)}
		}
		seen[name] = true
	}
	return nil
}

// cellError builds a ParseError for a data cell. Row numbers are 1-based
// and count the header line, matching what an editor shows.
func cellError(row int, column, raw string, err error) error {
	return &ParseError{
		Detail: fmt.Sprintf("line %d, column %s: invalid value %q", row+2, column, raw),
		Err:    err,
	}
}

func isNull(raw string) bool {
	return slices.Contains(nullValues, strings.TrimSpace(raw))
}

func parseFeature(raw string) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, err
	}
	// Spellings such as "NAN" parse; they are nulls all the same.
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}

func parseLabel(raw string) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	// Labels written by float-typed writers ("3.0") are accepted when integral.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cluster label %v is not an integer", f)
	}
	n := int(f)
	return &n, nil
}

func textValue(raw string) string {
	if isNull(raw) {
		return ""
	}
	return raw
}
