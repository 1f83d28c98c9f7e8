package core

import (
	"iter"
	"strings"

	"github.com/illarion/hush/internal/storage"
	"golang.org/x/text/unicode/norm"
)

// RecordView is what a listing shows for one record. It never carries the secret.
type RecordView struct {
	Index         int // 1-based display index
	Title         string
	Login         string
	IsFavorite    bool
	RequiresToken bool
}

// Store owns the ordered records of the open vault.
//
// Records have no identity of their own: callers address them by display
// index, the 1-based position in the favorites-first listing produced by the
// most recent List call. Store is not safe for concurrent use.
type Store struct {
	records []storage.Record
	filter  string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in insertion order
func (s *Store) Records() []storage.Record {
	out := make([]storage.Record, len(s.records))
	copy(out, s.records)
	return out
}

// ReplaceAll swaps in a freshly loaded record set
func (s *Store) ReplaceAll(records []storage.Record) {
	s.records = make([]storage.Record, len(records))
	copy(s.records, records)
	s.filter = ""
}

// Clear empties the store
func (s *Store) Clear() {
	s.records = nil
	s.filter = ""
}

// List yields the records matching filter, favorites first, then the rest,
// each group in insertion order. A record matches when filter is empty or is
// a case-sensitive substring of its title.
//
// The returned sequence is lazy and can be ranged over any number of times.
// Later Get/Update/Remove calls resolve display indices against this filter.
func (s *Store) List(filter string) iter.Seq2[int, RecordView] {
	s.filter = filter
	return func(yield func(int, RecordView) bool) {
		for idx, pos := range s.positions(filter) {
			r := s.records[pos]
			view := RecordView{
				Index:         idx,
				Title:         r.Title,
				Login:         r.Login,
				IsFavorite:    r.IsFavorite,
				RequiresToken: r.RequiresToken,
			}
			if !yield(idx, view) {
				return
			}
		}
	}
}

// Views collects List into a slice
func (s *Store) Views(filter string) []RecordView {
	var out []RecordView
	for _, v := range s.List(filter) {
		out = append(out, v)
	}
	return out
}

// positions yields (display index, storage position) pairs in display order
func (s *Store) positions(filter string) iter.Seq2[int, int] {
	needle := norm.NFC.String(filter)
	return func(yield func(int, int) bool) {
		idx := 0
		for _, favorites := range []bool{true, false} {
			for pos, r := range s.records {
				if r.IsFavorite != favorites || !matches(r.Title, needle) {
					continue
				}
				idx++
				if !yield(idx, pos) {
					return
				}
			}
		}
	}
}

func matches(title, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(norm.NFC.String(title), needle)
}

// resolve maps a display index to a storage position using the same
// ordering and filter as the last List
func (s *Store) resolve(displayIndex int) (int, error) {
	if displayIndex < 1 {
		return 0, ErrIndexOutOfRange
	}
	for idx, pos := range s.positions(s.filter) {
		if idx == displayIndex {
			return pos, nil
		}
	}
	return 0, ErrIndexOutOfRange
}

// Get returns the record at a display index
func (s *Store) Get(displayIndex int) (storage.Record, error) {
	pos, err := s.resolve(displayIndex)
	if err != nil {
		return storage.Record{}, err
	}
	return s.records[pos], nil
}

// Add appends a record
func (s *Store) Add(rec storage.Record) error {
	if !rec.Valid() {
		return ErrEmptyTitle
	}
	s.records = append(s.records, normalize(rec))
	return nil
}

// Update replaces the record at a display index
func (s *Store) Update(displayIndex int, rec storage.Record) error {
	pos, err := s.resolve(displayIndex)
	if err != nil {
		return err
	}
	if !rec.Valid() {
		return ErrEmptyTitle
	}
	s.records[pos] = normalize(rec)
	return nil
}

// Remove deletes and returns the record at a display index.
// Display indices of the records after it shift down by one.
func (s *Store) Remove(displayIndex int) (storage.Record, error) {
	pos, err := s.resolve(displayIndex)
	if err != nil {
		return storage.Record{}, err
	}
	rec := s.records[pos]
	s.records = append(s.records[:pos], s.records[pos+1:]...)
	return rec, nil
}

// normalize drops a token id that no gate refers to
func normalize(rec storage.Record) storage.Record {
	if !rec.RequiresToken {
		rec.TokenID = ""
	}
	return rec
}
