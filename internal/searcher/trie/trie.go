// Package trie indexes SAX words by symbol prefix. Terminal nodes own the
// ascending start positions of their word, which makes rarest-first
// enumeration and occurrence lookup cheap for the discord and motif engines.
package trie

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

type node struct {
	children  [config.MaxAlphabetSize]*node
	terminal  bool
	positions []int
}

// WordFrequency is one distinct word with its occurrences.
type WordFrequency struct {
	Word      sax.Word
	Frequency int
	Positions []int
}

// Trie is built once and read-only afterwards.
type Trie struct {
	root      *node
	words     int
	positions int
}

func New() *Trie {
	return &Trie{root: &node{}}
}

// Build indexes every start position in [0, lastStart]. A retained entry
// stands for itself and every suppressed position up to the next retained
// one, so the trie always covers the full series even when the index was
// built with a suppression strategy.
func Build(idx *index.OccurrenceIndex, lastStart int) (*Trie, error) {
	t := New()
	entries := idx.Entries()
	for i, e := range entries {
		end := lastStart + 1
		if i+1 < len(entries) {
			end = min(entries[i+1].Position, end)
		}
		for pos := e.Position; pos < end; pos++ {
			if err := t.Insert(e.Word, pos); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Insert appends pos to word's occurrences. Positions must be inserted in
// ascending order per word.
func (t *Trie) Insert(word sax.Word, pos int) error {
	n := t.root
	for i := range len(word) {
		s := word.Symbol(i)
		if s < 0 || s >= config.MaxAlphabetSize {
			return apperrors.Newf(apperrors.ErrNonLiteralSymbol, "trie", "%q at offset %d", word[i], i)
		}
		if n.children[s] == nil {
			n.children[s] = &node{}
		}
		n = n.children[s]
	}
	if !n.terminal {
		n.terminal = true
		t.words++
	}
	n.positions = append(n.positions, pos)
	t.positions++
	return nil
}

func (t *Trie) find(word sax.Word) *node {
	n := t.root
	for i := range len(word) {
		s := word.Symbol(i)
		if s < 0 || s >= config.MaxAlphabetSize || n.children[s] == nil {
			return nil
		}
		n = n.children[s]
	}
	return n
}

// Occurrences returns the ascending positions of word. The slice is shared
// and must not be modified.
func (t *Trie) Occurrences(word sax.Word) []int {
	if n := t.find(word); n != nil && n.terminal {
		return n.positions
	}
	return nil
}

func (t *Trie) Frequency(word sax.Word) int {
	return len(t.Occurrences(word))
}

// Len is the number of distinct words.
func (t *Trie) Len() int { return t.words }

// Positions is the number of indexed positions.
func (t *Trie) Positions() int { return t.positions }

// WithPrefix lists the words starting with prefix in symbol order.
func (t *Trie) WithPrefix(prefix sax.Word) []WordFrequency {
	n := t.find(prefix)
	if n == nil {
		return nil
	}
	out := make([]WordFrequency, 0)
	buf := []byte(prefix)
	collect(n, buf, &out)
	return out
}

func collect(n *node, buf []byte, out *[]WordFrequency) {
	if n.terminal {
		*out = append(*out, WordFrequency{
			Word:      sax.Word(buf),
			Frequency: len(n.positions),
			Positions: n.positions,
		})
	}
	for s, child := range n.children {
		if child != nil {
			collect(child, append(buf, byte('a'+s)), out)
		}
	}
}

// ByFrequency lists every word from rarest to most frequent; ties are broken
// by first occurrence.
func (t *Trie) ByFrequency() []WordFrequency {
	out := t.WithPrefix("")
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency < out[j].Frequency
		}
		return out[i].Positions[0] < out[j].Positions[0]
	})
	return out
}
