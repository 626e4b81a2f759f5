package search

// IDField is the keyword column that uniquely identifies a document.
const IDField = "id"

// Document represents one searchable breed record.
// Fields holds every column of the source row, the id column included.
// A document must not be modified once it has been passed to Build.
type Document struct {
	ID     string
	Fields map[string]string
}

// NewDocument creates a document from a column -> value mapping.
// The id is taken from the IDField column.
func NewDocument(fields map[string]string) *Document {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Document{
		ID:     copied[IDField],
		Fields: copied,
	}
}

// Get returns the value of a field and whether the document has it.
// Only Fields is consulted; a hand-built document needs an explicit
// IDField entry to satisfy an "id" keyword field.
func (d *Document) Get(field string) (string, bool) {
	v, ok := d.Fields[field]
	return v, ok
}

// Value returns the value of a field, or "" when it is absent.
func (d *Document) Value(field string) string {
	v, _ := d.Get(field)
	return v
}
