// Package corpus reads breed records into search documents.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pawfect-mate/backend/internal/search"
)

// Column names of the breed dataset.
const (
	FieldID              = search.IDField
	FieldBreedName       = "breed_name"
	FieldHistory         = "history"
	FieldHealth          = "health"
	FieldDescription     = "description"
	FieldCharacteristics = "characteristics"
	FieldAppearance      = "appearance"
	FieldTemperament     = "temperament"
)

// DefaultTextFields are the free-text columns indexed for retrieval.
var DefaultTextFields = []string{
	FieldBreedName,
	FieldHistory,
	FieldHealth,
	FieldDescription,
	FieldCharacteristics,
	FieldAppearance,
	FieldTemperament,
}

// DefaultKeywordFields are matched by exact value only.
var DefaultKeywordFields = []string{FieldID}

// Markers that dataframe exports write for absent cells.
var missingMarkers = map[string]bool{
	"nan":  true,
	"NaN":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"<NA>": true,
}

type options struct {
	textFields    []string
	keywordFields []string
	stripMarkup   bool
	logger        *logrus.Entry
}

// Option configures Load and Read.
type Option func(*options)

func WithTextFields(fields ...string) Option {
	return func(o *options) { o.textFields = fields }
}

func WithKeywordFields(fields ...string) Option {
	return func(o *options) { o.keywordFields = fields }
}

// WithMarkupStripping converts HTML cell values to plain text.
func WithMarkupStripping(enabled bool) Option {
	return func(o *options) { o.stripMarkup = enabled }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		textFields:    DefaultTextFields,
		keywordFields: DefaultKeywordFields,
		logger:        logrus.WithField("component", "corpus"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load reads a CSV corpus from path.
func Load(path string, opts ...Option) ([]*search.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	docs, err := read(f, newOptions(opts))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return docs, nil
}

// LoadIndex reads the corpus at path and indexes it over the configured
// text and keyword fields.
func LoadIndex(path string, opts ...Option) (*search.Index, error) {
	o := newOptions(opts)
	docs, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	idx, err := search.Build(docs, o.textFields, o.keywordFields)
	if err != nil {
		return nil, err
	}
	o.logger.WithFields(logrus.Fields{
		"documents":      idx.Len(),
		"text_fields":    len(o.textFields),
		"keyword_fields": len(o.keywordFields),
	}).Info("Built search index")
	return idx, nil
}

// Read parses a CSV corpus from r. The first row must be the header.
func Read(r io.Reader, opts ...Option) ([]*search.Document, error) {
	docs, err := read(r, newOptions(opts))
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return docs, nil
}

func read(r io.Reader, o *options) ([]*search.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("corpus is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]bool, len(header))
	for _, name := range header {
		columns[name] = true
	}
	for _, group := range [][]string{o.textFields, o.keywordFields} {
		for _, field := range group {
			if !columns[field] {
				return nil, fmt.Errorf("%w: %q", ErrMissingColumn, field)
			}
		}
	}

	markup := make(map[string]bool, len(o.textFields))
	if o.stripMarkup {
		for _, field := range o.textFields {
			markup[field] = true
		}
	}

	var docs []*search.Document
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			value := ""
			if i < len(record) {
				value = normalize(record[i])
			}
			if markup[name] {
				value = StripMarkup(value)
			}
			fields[name] = value
		}
		docs = append(docs, search.NewDocument(fields))
	}

	o.logger.WithFields(logrus.Fields{
		"documents": len(docs),
		"columns":   len(header),
	}).Info("Loaded corpus")

	return docs, nil
}

// normalize turns absent-value markers into the empty string.
func normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if missingMarkers[trimmed] {
		return ""
	}
	return trimmed
}
