package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
)

// Entry is one retained (position, word) pair.
type Entry struct {
	Position int      `json:"position"`
	Word     sax.Word `json:"word"`
}

// WordEntry lists every retained position of one word.
type WordEntry struct {
	Word      sax.Word
	Positions []int
}

// OccurrenceIndex maps words to the start positions where they were retained
// and positions back to their word. Each position belongs to exactly one
// word; a word disappears with its last position.
type OccurrenceIndex struct {
	mu        sync.RWMutex
	words     map[sax.Word]*roaring.Bitmap
	byPos     map[uint32]sax.Word
	positions *roaring.Bitmap
}

func New() *OccurrenceIndex {
	return &OccurrenceIndex{
		words:     make(map[sax.Word]*roaring.Bitmap),
		byPos:     make(map[uint32]sax.Word),
		positions: roaring.New(),
	}
}

// Add records word at pos, replacing whatever word pos held before.
func (x *OccurrenceIndex) Add(pos int, word sax.Word) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.addLocked(uint32(pos), word)
}

func (x *OccurrenceIndex) addLocked(p uint32, word sax.Word) {
	if prev, ok := x.byPos[p]; ok {
		if prev == word {
			return
		}
		x.removeLocked(p)
	}
	bm, ok := x.words[word]
	if !ok {
		bm = roaring.New()
		x.words[word] = bm
	}
	bm.Add(p)
	x.byPos[p] = word
	x.positions.Add(p)
}

// Remove drops pos and reports whether it was present.
func (x *OccurrenceIndex) Remove(pos int) bool {
	if pos < 0 {
		return false
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeLocked(uint32(pos))
}

func (x *OccurrenceIndex) removeLocked(p uint32) bool {
	word, ok := x.byPos[p]
	if !ok {
		return false
	}
	delete(x.byPos, p)
	x.positions.Remove(p)
	bm := x.words[word]
	bm.Remove(p)
	if bm.IsEmpty() {
		delete(x.words, word)
	}
	return true
}

// Merge copies every entry of other into x. Positions present in both take
// the word from other.
func (x *OccurrenceIndex) Merge(other *OccurrenceIndex) {
	if other == nil || other == x {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	x.mu.Lock()
	defer x.mu.Unlock()
	it := other.positions.Iterator()
	for it.HasNext() {
		p := it.Next()
		x.addLocked(p, other.byPos[p])
	}
}

func (x *OccurrenceIndex) WordAt(pos int) (sax.Word, bool) {
	if pos < 0 {
		return "", false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	w, ok := x.byPos[uint32(pos)]
	return w, ok
}

func (x *OccurrenceIndex) Contains(pos int) bool {
	_, ok := x.WordAt(pos)
	return ok
}

// Positions returns the ascending positions of word, or nil.
func (x *OccurrenceIndex) Positions(word sax.Word) []int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	bm, ok := x.words[word]
	if !ok {
		return nil
	}
	return toInts(bm.ToArray())
}

// Frequency is the number of retained positions of word.
func (x *OccurrenceIndex) Frequency(word sax.Word) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if bm, ok := x.words[word]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// Len is the number of retained positions.
func (x *OccurrenceIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byPos)
}

// WordCount is the number of distinct words.
func (x *OccurrenceIndex) WordCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.words)
}

// Floor returns the greatest retained position <= pos.
func (x *OccurrenceIndex) Floor(pos int) (int, bool) {
	if pos < 0 {
		return 0, false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	rank := x.positions.Rank(uint32(pos))
	if rank == 0 {
		return 0, false
	}
	p, err := x.positions.Select(uint32(rank - 1))
	if err != nil {
		return 0, false
	}
	return int(p), true
}

// Ceiling returns the smallest retained position >= pos.
func (x *OccurrenceIndex) Ceiling(pos int) (int, bool) {
	if pos < 0 {
		pos = 0
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	var below uint64
	if pos > 0 {
		below = x.positions.Rank(uint32(pos - 1))
	}
	if below >= x.positions.GetCardinality() {
		return 0, false
	}
	p, err := x.positions.Select(uint32(below))
	if err != nil {
		return 0, false
	}
	return int(p), true
}

// Range returns the entries with from <= position < to in ascending order.
func (x *OccurrenceIndex) Range(from, to int) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Entry, 0)
	if to <= from || to <= 0 {
		return out
	}
	it := x.positions.Iterator()
	if from > 0 {
		it.AdvanceIfNeeded(uint32(from))
	}
	for it.HasNext() {
		p := it.Next()
		if int(p) >= to {
			break
		}
		out = append(out, Entry{Position: int(p), Word: x.byPos[p]})
	}
	return out
}

// Entries returns every retained entry ordered by position.
func (x *OccurrenceIndex) Entries() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Entry, 0, len(x.byPos))
	it := x.positions.Iterator()
	for it.HasNext() {
		p := it.Next()
		out = append(out, Entry{Position: int(p), Word: x.byPos[p]})
	}
	return out
}

// Snapshot lists every word with its positions, sorted by word.
func (x *OccurrenceIndex) Snapshot() []WordEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries := make([]WordEntry, 0, len(x.words))
	for word, bm := range x.words {
		entries = append(entries, WordEntry{
			Word:      word,
			Positions: toInts(bm.ToArray()),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Export renders the retained words in position order joined by sep.
func (x *OccurrenceIndex) Export(sep string) string {
	entries := x.Entries()
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(string(e.Word))
	}
	return sb.String()
}

func toInts(in []uint32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
