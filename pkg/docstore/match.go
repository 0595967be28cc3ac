package docstore

import (
	"fmt"
	"sort"
)

// Matches reports whether the document satisfies every filter.
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		raw, ok := doc.Fields[f.Field]
		if !ok {
			return false
		}
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprint(raw)
		}
		if s != f.Value {
			return false
		}
	}
	return true
}

// SortNewestFirst orders documents by creation time descending, breaking ties
// on the store-assigned sequence so ordering stays stable across backends.
func SortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].Seq > docs[j].Seq
	})
}

// Select filters and orders a raw document slice for the given query,
// returning cloned documents safe to hand to consumers.
func Select(docs []Document, q Query) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if Matches(doc, q.Filters) {
			out = append(out, doc.Clone())
		}
	}
	SortNewestFirst(out)
	return out
}
