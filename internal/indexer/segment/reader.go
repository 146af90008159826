package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"math"
	"os"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Read loads a segment written by Write, verifying both checksums.
func Read(path string) (*index.OccurrenceIndex, Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("reading segment file: %w", err)
	}
	if len(data) < HeaderSize+FooterSize {
		return nil, Meta{}, corrupt(path, "file too short")
	}
	header := data[:HeaderSize]
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != MagicBytes {
		return nil, Meta{}, corrupt(path, fmt.Sprintf("bad magic bytes %x", magic))
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != FormatVersion {
		return nil, Meta{}, corrupt(path, fmt.Sprintf("unsupported version %d", v))
	}
	words := int(binary.LittleEndian.Uint32(header[8:12]))
	retained := int(binary.LittleEndian.Uint32(header[12:16]))
	meta := Meta{
		CreatedAt:    int64(binary.LittleEndian.Uint64(header[16:24])),
		SeriesLength: int(binary.LittleEndian.Uint32(header[24:28])),
		WindowSize:   int(binary.LittleEndian.Uint32(header[28:32])),
		PAASize:      int(binary.LittleEndian.Uint32(header[32:36])),
		AlphabetSize: int(binary.LittleEndian.Uint32(header[36:40])),
		Strategy:     sax.Strategy(binary.LittleEndian.Uint32(header[40:44])),
	}
	postSize := int64(binary.LittleEndian.Uint64(header[44:52]))
	dictSize := int64(binary.LittleEndian.Uint64(header[52:60]))
	if int64(HeaderSize)+postSize+dictSize+int64(FooterSize) != int64(len(data)) {
		return nil, Meta{}, corrupt(path, "section sizes do not match file size")
	}

	postings := data[HeaderSize : int64(HeaderSize)+postSize]
	dictData := data[int64(HeaderSize)+postSize : int64(HeaderSize)+postSize+dictSize]
	footer := data[len(data)-FooterSize:]
	if crc32.ChecksumIEEE(dictData) != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, Meta{}, corrupt(path, "dictionary checksum mismatch")
	}
	if crc32.ChecksumIEEE(postings) != binary.LittleEndian.Uint32(footer[4:8]) {
		return nil, Meta{}, corrupt(path, "postings checksum mismatch")
	}
	meta.SeriesChecksum = binary.LittleEndian.Uint64(footer[12:20])
	meta.NormThreshold = math.Float64frombits(binary.LittleEndian.Uint64(footer[20:28]))

	var dict []DictEntry
	if err := json.Unmarshal(dictData, &dict); err != nil {
		return nil, Meta{}, corrupt(path, fmt.Sprintf("parsing dictionary: %v", err))
	}
	if len(dict) != words {
		return nil, Meta{}, corrupt(path, fmt.Sprintf("dictionary has %d words, header says %d", len(dict), words))
	}

	idx := index.New()
	for _, e := range dict {
		if e.PostOffset < 0 || e.PostOffset+int64(e.PostLen) > postSize {
			return nil, Meta{}, corrupt(path, fmt.Sprintf("postings for %q out of range", e.Word))
		}
		bm := roaring.New()
		if _, err := bm.ReadFrom(bytes.NewReader(postings[e.PostOffset : e.PostOffset+int64(e.PostLen)])); err != nil {
			return nil, Meta{}, corrupt(path, fmt.Sprintf("decoding postings for %q: %v", e.Word, err))
		}
		it := bm.Iterator()
		for it.HasNext() {
			idx.Add(int(it.Next()), e.Word)
		}
	}
	if idx.Len() != retained {
		return nil, Meta{}, corrupt(path, fmt.Sprintf("index has %d positions, header says %d", idx.Len(), retained))
	}
	return idx, meta, nil
}

func corrupt(path, msg string) error {
	return apperrors.Newf(apperrors.ErrInvalidInput, "segment.read", "%s: %s", path, msg)
}
