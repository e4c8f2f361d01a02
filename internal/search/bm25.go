// Package search implements the lexical and fusion half of hybrid search:
// a BM25 inverted index (no Tantivy/Bleve-equivalent library exists in the
// retrieval pack, so this is hand-rolled — see DESIGN.md) and the score
// fusion that combines vector, BM25, and optional graph-boost modalities.
package search

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

func tokenize(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	return tokens
}

// BM25Doc is one document indexed for lexical search.
type BM25Doc struct {
	ID      string
	Content string
}

// BM25Index is an in-memory inverted index implementing Okapi BM25
// scoring. Append-only: documents are added via Index/IndexBatch and never
// mutated in place; a later Index call with the same ID overwrites it.
type BM25Index struct {
	k1 float64
	b  float64

	mu        sync.RWMutex
	docs      map[string][]string // id -> tokens
	postings  map[string]map[string]int // token -> docID -> term frequency
	docLength map[string]int
	totalLen  int
}

func NewBM25Index() *BM25Index {
	return &BM25Index{
		k1:        1.2,
		b:         0.75,
		docs:      make(map[string][]string),
		postings:  make(map[string]map[string]int),
		docLength: make(map[string]int),
	}
}

func (idx *BM25Index) Index(doc BM25Doc) {
	tokens := tokenize(doc.Content)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if old, exists := idx.docs[doc.ID]; exists {
		idx.totalLen -= len(old)
		for _, tok := range old {
			if m, ok := idx.postings[tok]; ok {
				delete(m, doc.ID)
			}
		}
	}

	idx.docs[doc.ID] = tokens
	idx.docLength[doc.ID] = len(tokens)
	idx.totalLen += len(tokens)

	freq := make(map[string]int)
	for _, tok := range tokens {
		freq[tok]++
	}
	for tok, f := range freq {
		if idx.postings[tok] == nil {
			idx.postings[tok] = make(map[string]int)
		}
		idx.postings[tok][doc.ID] = f
	}
}

func (idx *BM25Index) IndexBatch(docs []BM25Doc) {
	for _, d := range docs {
		idx.Index(d)
	}
}

// BM25Result is one scored hit.
type BM25Result struct {
	ID    string
	Score float64
}

// Search returns the top-k documents by BM25 score against query.
func (idx *BM25Index) Search(query string, limit int) []BM25Result {
	terms := tokenize(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docs)
	if n == 0 || len(terms) == 0 {
		return nil
	}
	avgDocLen := float64(idx.totalLen) / float64(n)

	scores := make(map[string]float64)
	for _, term := range terms {
		postings, ok := idx.postings[term]
		if !ok {
			continue
		}
		df := len(postings)
		idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
		for docID, tf := range postings {
			dl := float64(idx.docLength[docID])
			num := float64(tf) * (idx.k1 + 1)
			den := float64(tf) + idx.k1*(1-idx.b+idx.b*dl/avgDocLen)
			scores[docID] += idf * num / den
		}
	}

	results := make([]BM25Result, 0, len(scores))
	for id, score := range scores {
		results = append(results, BM25Result{ID: id, Score: score})
	}
	sortResultsDesc(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func sortResultsDesc(results []BM25Result) {
	// simple insertion sort is fine: result sets are small (top-k' per
	// query) and this avoids pulling in sort.Slice's closure allocation
	// for a hot path called once per hybrid search.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}
