package search

import (
	"math"
	"sort"
)

// DefaultK is the number of results returned when a query does not set K.
const DefaultK = 5

// Query is a single retrieval request.
type Query struct {
	Question string
	// Filters maps keyword fields to the exact value a result must carry.
	Filters map[string]string
	K       int
	// Boosts multiplies a text field's score. Fields not listed, and
	// non-finite values, use 1.0.
	Boosts map[string]float64
}

// Result holds a matching document and its score.
type Result struct {
	Document *Document
	Score    float64
}

// ScoreField scores every document matching at least one of terms in field.
// Each term contributes tf * idf; a document without any of the terms is
// absent from the result.
func (idx *Index) ScoreField(field string, terms []string) map[string]float64 {
	scores := idx.scoreField(field, terms, nil)
	out := make(map[string]float64, len(scores))
	for ord, score := range scores {
		out[idx.docs[ord].ID] = score
	}
	return out
}

func (idx *Index) scoreField(field string, terms []string, eligible []bool) map[int]float64 {
	lists, ok := idx.postings[field]
	if !ok {
		return nil
	}
	scores := make(map[int]float64)
	for _, term := range terms {
		list, ok := lists[term]
		if !ok {
			continue
		}
		for _, p := range list.Postings {
			if eligible != nil && !eligible[p.Doc] {
				continue
			}
			scores[p.Doc] += float64(p.Freq) * list.IDF
		}
	}
	return scores
}

// Query returns at most K documents ordered by descending score. Ties keep
// ingestion order. Only documents with a positive score are returned, and a
// question without any terms matches nothing.
func (idx *Index) Query(q Query) []Result {
	terms := Tokenize(q.Question)
	if len(terms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	eligible, ok := idx.filter(q.Filters)
	if !ok {
		return nil
	}

	k := q.K
	if k <= 0 {
		k = DefaultK
	}

	totals := make([]float64, len(idx.docs))
	for _, field := range idx.textFields {
		boost := boostFor(q.Boosts, field)
		if boost == 0 {
			continue
		}
		for ord, score := range idx.scoreField(field, terms, eligible) {
			totals[ord] += score * boost
		}
	}

	var results []Result
	for ord, score := range totals {
		if score > 0 {
			results = append(results, Result{Document: idx.docs[ord], Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		return results[:k]
	}
	return results
}

// filter intersects the keyword sets named by filters. A nil mask means every
// document is eligible; ok is false when no document can pass.
func (idx *Index) filter(filters map[string]string) (eligible []bool, ok bool) {
	if len(filters) == 0 {
		return nil, true
	}

	hits := make([]int, len(idx.docs))
	for field, value := range filters {
		values, indexed := idx.keywords[field]
		if !indexed {
			return nil, false
		}
		ords := values[value]
		if len(ords) == 0 {
			return nil, false
		}
		for _, ord := range ords {
			hits[ord]++
		}
	}

	eligible = make([]bool, len(idx.docs))
	matched := false
	for ord, n := range hits {
		if n == len(filters) {
			eligible[ord] = true
			matched = true
		}
	}
	return eligible, matched
}

// boostFor returns the weight for field. Missing or non-finite boosts count as 1.0.
func boostFor(boosts map[string]float64, field string) float64 {
	if b, ok := boosts[field]; ok && !math.IsInf(b, 0) && !math.IsNaN(b) {
		return b
	}
	return 1.0
}
