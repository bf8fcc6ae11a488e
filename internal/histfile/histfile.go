// Package histfile persists command history and loads it back into an
// *edit.History.
//
// The newline-separated text file is the wire format of record. An
// optional LevelDB mirror keeps one `h|<seq>` record per entry; it is
// purely a recovery copy, consulted only when the text file has gone
// missing while the mirror survived.
package histfile

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vush-shell/vush/internal/edit"
)

const prefixEntry = "h|"

// Store owns the on-disk history file and an optional LevelDB mirror.
type Store struct {
	path string
	db   *leveldb.DB // nil when no mirror directory was configured
}

// Open wires a Store to path (the newline history file) and, if
// mirrorDir is non-empty, opens or creates a LevelDB mirror there.
func Open(path, mirrorDir string) (*Store, error) {
	s := &Store{path: path}
	if mirrorDir != "" {
		db, err := leveldb.OpenFile(mirrorDir, nil)
		if err != nil {
			return nil, fmt.Errorf("histfile: open mirror: %w", err)
		}
		s.db = db
		slog.Debug("history mirror open", "path", path, "mirror", mirrorDir)
	}
	return s, nil
}

// Close releases the LevelDB mirror, if one is open.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the newline-separated history file into a fresh
// *edit.History, oldest entry first. A missing file yields an empty,
// non-error history (first run).
func Load(path string) (*edit.History, error) {
	h := edit.NewHistory()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("histfile: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		h.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("histfile: read %s: %w", path, err)
	}
	return h, nil
}

// Append writes one entry to the history file (newline-terminated) and,
// if a LevelDB mirror is configured, records it there under its
// sequence number.
func (s *Store) Append(seq int, text string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("histfile: append: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, text); err != nil {
		return fmt.Errorf("histfile: append: %w", err)
	}

	if s.db == nil {
		return nil
	}
	return s.db.Put([]byte(prefixEntry+strconv.Itoa(seq)), []byte(text), nil)
}

// Recover rebuilds a history from the LevelDB mirror, in sequence
// order. Used when the text file is gone but the mirror survived;
// returns an empty history when no mirror is configured.
func (s *Store) Recover() (*edit.History, error) {
	h := edit.NewHistory()
	if s.db == nil {
		return h, nil
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixEntry)), nil)
	defer iter.Release()

	type rec struct {
		seq  int
		text string
	}
	var recs []rec
	for iter.Next() {
		suffix := strings.TrimPrefix(string(iter.Key()), prefixEntry)
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		recs = append(recs, rec{seq: seq, text: string(iter.Value())})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("histfile: recover: %w", err)
	}
	// LevelDB key order is lexicographic, so "h|10" sorts before "h|2";
	// order numerically instead.
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	for _, r := range recs {
		h.Add(r.text)
	}
	slog.Debug("history recovered from mirror", "entries", len(recs))
	return h, nil
}
