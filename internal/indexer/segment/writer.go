// Package segment exports an occurrence index to a single file for offline
// inspection. Runs never load an exported index.
//
// Layout: a 64-byte header, the postings (one serialized roaring bitmap per
// word), a JSON dictionary locating each word's postings, and a 32-byte
// footer holding the checksums and the series fingerprint.
package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
)

const (
	MagicBytes    uint32 = 0x53415849 // "SAXI"
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32
)

// Meta identifies what the index was built from.
type Meta struct {
	SeriesLength   int
	SeriesChecksum uint64
	WindowSize     int
	PAASize        int
	AlphabetSize   int
	Strategy       sax.Strategy
	NormThreshold  float64
	CreatedAt      int64
}

// MetaFor describes the index of series built with p.
func MetaFor(series []float64, p sax.Params) Meta {
	return Meta{
		SeriesLength:   len(series),
		SeriesChecksum: Checksum(series),
		WindowSize:     p.WindowSize,
		PAASize:        p.PAASize,
		AlphabetSize:   p.AlphabetSize,
		Strategy:       p.Strategy,
		NormThreshold:  p.NormThreshold,
	}
}

// Checksum is the FNV-1a hash of the values' IEEE-754 bits.
func Checksum(series []float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range series {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// DictEntry locates one word's postings relative to the postings start.
type DictEntry struct {
	Word       sax.Word `json:"w"`
	PostOffset int64    `json:"o"`
	PostLen    int      `json:"l"`
	Frequency  int      `json:"f"`
}

// Write atomically replaces path with a snapshot of idx. It writes to a
// .tmp file first and renames on success.
func Write(path string, idx *index.OccurrenceIndex, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating segment directory: %w", err)
	}
	if meta.CreatedAt == 0 {
		meta.CreatedAt = time.Now().Unix()
	}

	var postings bytes.Buffer
	entries := idx.Snapshot()
	dict := make([]DictEntry, 0, len(entries))
	for _, e := range entries {
		bm := roaring.New()
		for _, p := range e.Positions {
			bm.Add(uint32(p))
		}
		bm.RunOptimize()
		offset := int64(postings.Len())
		n, err := bm.WriteTo(&postings)
		if err != nil {
			return fmt.Errorf("serializing postings for %q: %w", e.Word, err)
		}
		dict = append(dict, DictEntry{Word: e.Word, PostOffset: offset, PostLen: int(n), Frequency: len(e.Positions)})
	}
	dictData, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshaling dictionary: %w", err)
	}

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(dict)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(idx.Len()))
	binary.LittleEndian.PutUint64(header[16:24], uint64(meta.CreatedAt))
	binary.LittleEndian.PutUint32(header[24:28], uint32(meta.SeriesLength))
	binary.LittleEndian.PutUint32(header[28:32], uint32(meta.WindowSize))
	binary.LittleEndian.PutUint32(header[32:36], uint32(meta.PAASize))
	binary.LittleEndian.PutUint32(header[36:40], uint32(meta.AlphabetSize))
	binary.LittleEndian.PutUint32(header[40:44], uint32(meta.Strategy))
	binary.LittleEndian.PutUint64(header[44:52], uint64(postings.Len()))
	binary.LittleEndian.PutUint64(header[52:60], uint64(len(dictData)))

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(postings.Bytes()))
	binary.LittleEndian.PutUint32(footer[8:12], MagicBytes)
	binary.LittleEndian.PutUint64(footer[12:20], meta.SeriesChecksum)
	binary.LittleEndian.PutUint64(footer[20:28], math.Float64bits(meta.NormThreshold))

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp segment file: %w", err)
	}
	for _, part := range [][]byte{header, postings.Bytes(), dictData, footer} {
		if _, err := f.Write(part); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing segment: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming segment file: %w", err)
	}
	return nil
}
