package domain

// Vocabulary is an ordered set of distinct terms (genres or artist names)
// scoped to a single playlist load. Term positions define the layout of the
// one-hot vectors, so order must be deterministic: first appearance wins.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func NewVocabulary(terms ...string) Vocabulary {
	v := Vocabulary{index: make(map[string]int)}
	v.Add(terms...)
	return v
}

// Add registers terms that are not yet part of the vocabulary, preserving
// first-seen order. Empty strings are ignored.
func (v *Vocabulary) Add(terms ...string) {
	if v.index == nil {
		v.index = make(map[string]int)
	}
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
}

func (v Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns the vocabulary in index order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Encode produces the one-hot membership vector for items. Terms outside
// the vocabulary are dropped; the result always has length Len.
func (v Vocabulary) Encode(items []string) []bool {
	vec := make([]bool, len(v.terms))
	for _, it := range items {
		if i, ok := v.index[it]; ok {
			vec[i] = true
		}
	}
	return vec
}
