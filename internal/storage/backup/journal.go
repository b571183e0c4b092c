package backup

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mrkline/modman/internal/domain"
)

const journalName = "activate.journal"

// JournalOp is the directive recorded for one journaled path.
type JournalOp int

const (
	// Replace means P existed in the target and was backed up before
	// being overwritten.
	Replace JournalOp = iota
	// Add means P is new; nothing existed at that path before activation.
	Add
)

func (op JournalOp) String() string {
	if op == Replace {
		return "Replace"
	}
	return "Add"
}

// JournalEntry is one parsed line of the activation journal.
type JournalEntry struct {
	Op   JournalOp
	Path string
}

// Journal is the append-only, per-file-operation log written during
// activation. Its presence after process exit is the sole signal that a
// prior activation did not complete.
type Journal struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// NewJournal returns a handle to the store's journal file. It does not
// open or create the file; call Append or Open to do so.
func NewJournal(s *Store) *Journal {
	return &Journal{path: s.JournalPath()}
}

// Exists reports whether the journal file is present.
func (j *Journal) Exists() bool {
	_, err := os.Stat(j.path)
	return err == nil
}

// Open opens the journal for appending, creating it if necessary. Callers
// that will make multiple Append calls should Open once up front so each
// append doesn't pay open/close overhead; Close releases the handle.
func (j *Journal) Open() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f != nil {
		return nil
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &domain.IOError{Path: j.path, Kind: "open", Err: err}
	}
	j.f = f
	return nil
}

// Append writes one directive line and flushes it to durable storage
// before returning. Safe for concurrent use by multiple workers; writes
// are serialized.
func (j *Journal) Append(op JournalOp, path string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &domain.IOError{Path: j.path, Kind: "open", Err: err}
		}
		j.f = f
	}

	line := fmt.Sprintf("%s %s\n", op, path)
	if _, err := j.f.WriteString(line); err != nil {
		return &domain.IOError{Path: j.path, Kind: "write", Err: err}
	}
	if err := j.f.Sync(); err != nil {
		return &domain.IOError{Path: j.path, Kind: "sync", Err: err}
	}
	return nil
}

// Close releases the journal's open file handle, if any.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	if err != nil {
		return &domain.IOError{Path: j.path, Kind: "close", Err: err}
	}
	return nil
}

// Lines reads and parses every directive currently in the journal.
func (j *Journal) Lines() ([]JournalEntry, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.IOError{Path: j.path, Kind: "open", Err: err}
	}
	defer f.Close()

	var entries []JournalEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseJournalLine(j.path, line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.IOError{Path: j.path, Kind: "read", Err: err}
	}
	return entries, nil
}

func parseJournalLine(journalPath, line string) (JournalEntry, error) {
	op, path, ok := strings.Cut(line, " ")
	if !ok || path == "" {
		return JournalEntry{}, &domain.IOError{
			Path: journalPath,
			Kind: "parse",
			Err:  fmt.Errorf("malformed journal line: %q", line),
		}
	}
	switch op {
	case "Replace":
		return JournalEntry{Op: Replace, Path: path}, nil
	case "Add":
		return JournalEntry{Op: Add, Path: path}, nil
	default:
		return JournalEntry{}, &domain.IOError{
			Path: journalPath,
			Kind: "parse",
			Err:  fmt.Errorf("unknown journal directive: %q", op),
		}
	}
}

// Delete removes the journal file, closing any open handle first.
func (j *Journal) Delete() error {
	if err := j.Close(); err != nil {
		return err
	}
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return &domain.IOError{Path: j.path, Kind: "remove", Err: err}
	}
	return nil
}
