package search

import (
	"github.com/sirupsen/logrus"
)

// SearchOptions narrows or reweights a single Retriever call. Zero values
// fall back to the retriever defaults.
type SearchOptions struct {
	Filters map[string]string
	K       int
	Boosts  map[string]float64
}

// Retriever is the entry point callers use to fetch relevant documents.
// It holds no state besides an immutable index and its defaults.
type Retriever struct {
	index  *Index
	k      int
	boosts map[string]float64
	logger *logrus.Entry
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithDefaultK sets the result count used when SearchOptions.K is unset.
func WithDefaultK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.k = k
		}
	}
}

// WithBoosts sets default field boosts. Per-call boosts override them field by field.
func WithBoosts(boosts map[string]float64) RetrieverOption {
	return func(r *Retriever) {
		r.boosts = make(map[string]float64, len(boosts))
		for field, b := range boosts {
			r.boosts[field] = b
		}
	}
}

func WithLogger(logger *logrus.Entry) RetrieverOption {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRetriever(index *Index, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		index:  index,
		k:      DefaultK,
		logger: logrus.WithField("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index exposes the underlying index.
func (r *Retriever) Index() *Index {
	return r.index
}

// SearchScored returns ranked results together with their scores.
func (r *Retriever) SearchScored(question string, opts SearchOptions) []Result {
	k := opts.K
	if k <= 0 {
		k = r.k
	}

	results := r.index.Query(Query{
		Question: question,
		Filters:  opts.Filters,
		K:        k,
		Boosts:   r.mergeBoosts(opts.Boosts),
	})

	r.logger.WithFields(logrus.Fields{
		"question": question,
		"filters":  len(opts.Filters),
		"k":        k,
		"hits":     len(results),
	}).Debug("Retrieved documents")

	return results
}

// Search returns ranked documents without scores.
func (r *Retriever) Search(question string, opts SearchOptions) []*Document {
	results := r.SearchScored(question, opts)
	if len(results) == 0 {
		return nil
	}
	docs := make([]*Document, len(results))
	for i, res := range results {
		docs[i] = res.Document
	}
	return docs
}

func (r *Retriever) mergeBoosts(override map[string]float64) map[string]float64 {
	if len(override) == 0 {
		return r.boosts
	}
	if len(r.boosts) == 0 {
		return override
	}
	merged := make(map[string]float64, len(r.boosts)+len(override))
	for field, b := range r.boosts {
		merged[field] = b
	}
	for field, b := range override {
		merged[field] = b
	}
	return merged
}
