package source

import (
	"errors"
	"sort"
)

const (
	// DefaultGroupKey is assigned to stems too short to carry a key character.
	DefaultGroupKey = "0"

	groupKeyIndex = 6
)

// ErrInvalidBatchSize is returned by Chunk for a non-positive size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Groups maps a group key to its files in original relative order.
type Groups map[string][]InputFile

// Keys returns the non-empty group keys in ascending order.
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for k, files := range g {
		if len(files) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Key returns the 7th character of stem, or DefaultGroupKey when stem is shorter.
func Key(stem string) string {
	runes := []rune(stem)
	if len(runes) <= groupKeyIndex {
		return DefaultGroupKey
	}
	return string(runes[groupKeyIndex])
}

// Group partitions files by Key(stem). Every file lands in exactly one bucket.
func Group(files []InputFile) Groups {
	groups := make(Groups)
	for _, f := range files {
		k := Key(f.Stem)
		groups[k] = append(groups[k], f)
	}
	return groups
}

// Chunk splits files into contiguous batches of at most size, preserving order.
func Chunk(files []InputFile, size int) ([][]InputFile, error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}

	batches := make([][]InputFile, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		batches = append(batches, files[start:end:end])
	}
	return batches, nil
}
