// Package records defines the result types produced by the discord and
// motif engines.
package records

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
)

// DiscordRecord describes one anomalous subsequence. A larger NNDistance is
// more anomalous.
type DiscordRecord struct {
	Position   int      `json:"position"`
	NNDistance float64  `json:"nn_distance"`
	Length     int      `json:"length"`
	Rank       int      `json:"rank"`
	Word       sax.Word `json:"word,omitempty"`
	Info       string   `json:"info,omitempty"`
}

func (d DiscordRecord) String() string {
	return fmt.Sprintf("#%d position=%d nn_distance=%.6f length=%d %s", d.Rank, d.Position, d.NNDistance, d.Length, d.Info)
}

// MotifRecord describes a repeated subsequence.
type MotifRecord struct {
	Position    int      `json:"position"`
	Word        sax.Word `json:"word"`
	Occurrences []int    `json:"occurrences"`
}

// Frequency is the number of occurrences, the representative included.
func (m MotifRecord) Frequency() int {
	return len(m.Occurrences)
}

func (m MotifRecord) String() string {
	return fmt.Sprintf("motif %s position=%d frequency=%d occurrences=%v", m.Word, m.Position, m.Frequency(), m.Occurrences)
}
