package indexer

import (
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
)

// stitcher merges chunk results in completion order. It is only ever used
// from the coordinating goroutine.
type stitcher struct {
	strategy sax.Strategy
	merged   *index.OccurrenceIndex
	done     map[int]chunkResult
}

func newStitcher(strategy sax.Strategy) *stitcher {
	return &stitcher{
		strategy: strategy,
		merged:   index.New(),
		done:     make(map[int]chunkResult),
	}
}

// add merges res and stitches every boundary it shares with an already
// merged neighbour. Each boundary is stitched exactly once, by whichever of
// its two chunks arrives second.
func (s *stitcher) add(res chunkResult) {
	empty := s.merged.Len() == 0
	s.merged.Merge(res.index)
	if !empty && s.strategy != sax.StrategyNone {
		if _, ok := s.done[res.id-1]; ok {
			s.stitch(res.from)
		}
		if right, ok := s.done[res.id+1]; ok {
			s.stitch(right.from)
		}
	}
	s.done[res.id] = res
}

// stitch drops the record at boundary when it repeats the nearest retained
// record before it. That record may sit further left than boundary-1 when
// the adjoining positions were themselves suppressed.
func (s *stitcher) stitch(boundary int) {
	word, ok := s.merged.WordAt(boundary)
	if !ok {
		return
	}
	prevPos, ok := s.merged.Floor(boundary - 1)
	if !ok {
		return
	}
	prev, _ := s.merged.WordAt(prevPos)
	if s.strategy.Redundant(prev, word) {
		s.merged.Remove(boundary)
	}
}

// finish returns the merged index, applying target suppression in one
// ordered pass when the workers could not apply it themselves.
func (s *stitcher) finish(target sax.Strategy) *index.OccurrenceIndex {
	if target == s.strategy {
		return s.merged
	}
	Suppress(s.merged, target)
	return s.merged
}

// Suppress removes, in position order, every entry that is redundant with
// the last entry kept before it.
func Suppress(idx *index.OccurrenceIndex, strategy sax.Strategy) {
	if strategy == sax.StrategyNone {
		return
	}
	var prev sax.Word
	kept := false
	for _, e := range idx.Entries() {
		if kept && strategy.Redundant(prev, e.Word) {
			idx.Remove(e.Position)
			continue
		}
		prev = e.Word
		kept = true
	}
}
