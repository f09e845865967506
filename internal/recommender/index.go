package recommender

import (
	"fmt"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// TitleIndex maps a title to its row in the similarity matrix. When a title
// occurs more than once the first row wins; later duplicates keep their row
// in the matrix but are unreachable by title.
type TitleIndex struct {
	positions map[string]int
	order     []string
}

// IndexEntry is one title to row mapping, in insertion order.
type IndexEntry struct {
	Title string `json:"title"`
	Row   int    `json:"row"`
}

// BuildTitleIndex indexes titles by position, keeping first occurrences.
func BuildTitleIndex(titles []string) *TitleIndex {
	idx := &TitleIndex{positions: make(map[string]int, len(titles))}
	for row, title := range titles {
		idx.insert(title, row)
	}
	return idx
}

// indexFromEntries rebuilds an index from its persisted entries.
func indexFromEntries(entries []IndexEntry) *TitleIndex {
	idx := &TitleIndex{positions: make(map[string]int, len(entries))}
	for _, e := range entries {
		idx.insert(e.Title, e.Row)
	}
	return idx
}

func (idx *TitleIndex) insert(title string, row int) {
	if _, exists := idx.positions[title]; exists {
		return
	}
	idx.positions[title] = row
	idx.order = append(idx.order, title)
}

// Lookup returns the matrix row of title, or domain.ErrTitleNotFound.
func (idx *TitleIndex) Lookup(title string) (int, error) {
	row, ok := idx.positions[title]
	if !ok {
		return 0, fmt.Errorf("%q: %w", title, domain.ErrTitleNotFound)
	}
	return row, nil
}

// Len returns the number of distinct titles.
func (idx *TitleIndex) Len() int {
	return len(idx.order)
}

// Entries returns the mappings in first-seen order.
func (idx *TitleIndex) Entries() []IndexEntry {
	entries := make([]IndexEntry, len(idx.order))
	for i, title := range idx.order {
		entries[i] = IndexEntry{Title: title, Row: idx.positions[title]}
	}
	return entries
}
