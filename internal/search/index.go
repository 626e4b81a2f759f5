package search

import (
	"fmt"
	"math"
)

// Posting records that a document contains a term, and how often.
type Posting struct {
	Doc  int // ingestion ordinal
	Freq int
}

// PostingList holds every posting for one (field, term) pair in ingestion order.
type PostingList struct {
	DocFreq  int
	IDF      float64
	Postings []Posting
}

// Index is an inverted index over the text fields of a fixed document set,
// plus exact-value lookups over its keyword fields.
// It is never modified after Build returns, so it can be shared by any number
// of concurrent queries.
type Index struct {
	docs          []*Document
	byID          map[string]int
	textFields    []string
	keywordFields []string

	// field -> term -> postings
	postings map[string]map[string]*PostingList
	// field -> value -> ordinals, ascending
	keywords map[string]map[string][]int
}

// Build indexes docs. Every text field is tokenized into postings; every
// keyword field is indexed by its whole value.
func Build(docs []*Document, textFields, keywordFields []string) (*Index, error) {
	if err := validateSchema(docs, textFields, keywordFields); err != nil {
		return nil, err
	}

	idx := &Index{
		docs:          make([]*Document, len(docs)),
		byID:          make(map[string]int, len(docs)),
		textFields:    append([]string(nil), textFields...),
		keywordFields: append([]string(nil), keywordFields...),
		postings:      make(map[string]map[string]*PostingList, len(textFields)),
		keywords:      make(map[string]map[string][]int, len(keywordFields)),
	}
	copy(idx.docs, docs)
	for _, field := range textFields {
		idx.postings[field] = make(map[string]*PostingList)
	}
	for _, field := range keywordFields {
		idx.keywords[field] = make(map[string][]int)
	}

	for ord, doc := range idx.docs {
		if prev, dup := idx.byID[doc.ID]; dup {
			return nil, &SchemaError{
				Field:  IDField,
				Reason: fmt.Sprintf("duplicate id %q at documents %d and %d", doc.ID, prev, ord),
			}
		}
		idx.byID[doc.ID] = ord

		for _, field := range idx.textFields {
			idx.addText(field, ord, doc.Value(field))
		}
		for _, field := range idx.keywordFields {
			value := doc.Value(field)
			idx.keywords[field][value] = append(idx.keywords[field][value], ord)
		}
	}

	// idf = ln(N / df)
	n := float64(len(idx.docs))
	for _, terms := range idx.postings {
		for _, list := range terms {
			list.DocFreq = len(list.Postings)
			list.IDF = math.Log(n / float64(list.DocFreq))
		}
	}

	return idx, nil
}

func (idx *Index) addText(field string, ord int, text string) {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return
	}
	tf := TermFrequency(terms)
	lists := idx.postings[field]
	// Walk terms in token order so each list only ever grows by ascending ordinal.
	for _, term := range terms {
		freq, pending := tf[term]
		if !pending {
			continue
		}
		delete(tf, term)

		list, ok := lists[term]
		if !ok {
			list = &PostingList{}
			lists[term] = list
		}
		list.Postings = append(list.Postings, Posting{Doc: ord, Freq: freq})
	}
}

func validateSchema(docs []*Document, textFields, keywordFields []string) error {
	for _, group := range [][]string{textFields, keywordFields} {
		seen := make(map[string]bool, len(group))
		for _, field := range group {
			if field == "" {
				return &SchemaError{Reason: "empty field name"}
			}
			if seen[field] {
				return &SchemaError{Field: field, Reason: "declared more than once"}
			}
			seen[field] = true
		}
	}

	for ord, doc := range docs {
		if doc == nil {
			return &SchemaError{Reason: fmt.Sprintf("document %d is nil", ord)}
		}
		for _, group := range [][]string{textFields, keywordFields} {
			for _, field := range group {
				if _, ok := doc.Get(field); !ok {
					return &SchemaError{
						Field:  field,
						Reason: fmt.Sprintf("missing from document %q", doc.ID),
					}
				}
			}
		}
	}
	return nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Documents returns the indexed documents in ingestion order.
// The returned slice is a copy; the documents themselves are shared.
func (idx *Index) Documents() []*Document {
	out := make([]*Document, len(idx.docs))
	copy(out, idx.docs)
	return out
}

// Document looks a document up by id.
func (idx *Index) Document(id string) (*Document, bool) {
	ord, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.docs[ord], true
}

func (idx *Index) TextFields() []string {
	return append([]string(nil), idx.textFields...)
}

func (idx *Index) KeywordFields() []string {
	return append([]string(nil), idx.keywordFields...)
}

// DocFreq returns how many documents contain term in field.
func (idx *Index) DocFreq(field, term string) int {
	if list, ok := idx.postings[field][term]; ok {
		return list.DocFreq
	}
	return 0
}

// IDF returns the inverse document frequency of term in field, or 0 when the
// term does not occur there.
func (idx *Index) IDF(field, term string) float64 {
	if list, ok := idx.postings[field][term]; ok {
		return list.IDF
	}
	return 0
}
