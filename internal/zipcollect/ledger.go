package zipcollect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chalk/internal/fileutil"
	"chalk/internal/logging"
)

// ledgerFile sits at the root of the extracted tree and records which
// archives have already been unpacked.
const ledgerFile = ".extracted.json"

// ledgerEntry records one completed extraction.
type ledgerEntry struct {
	Archive     string    `json:"archive"`
	SHA256      string    `json:"sha256"`
	ExtractedAt time.Time `json:"extracted_at"`
	Files       []string  `json:"files"`
}

// ledger provides checksum-gated extraction bookkeeping. Entries are keyed
// by archive basename; a changed checksum means the archive was re-uploaded
// and must be extracted again.
type ledger struct {
	path    string
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]ledgerEntry
}

func loadLedger(dir string, logger *slog.Logger) *ledger {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &ledger{
		path:    filepath.Join(dir, ledgerFile),
		logger:  logger,
		entries: make(map[string]ledgerEntry),
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("extraction ledger unreadable, starting empty",
				logging.String("path", l.path), logging.Error(err))
		}
		return l
	}
	var entries []ledgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("extraction ledger corrupt, starting empty",
			logging.String("path", l.path), logging.Error(err))
		return l
	}
	for _, entry := range entries {
		l.entries[entry.Archive] = entry
	}
	return l
}

// seen reports whether the archive was already extracted with this checksum.
func (l *ledger) seen(archive, sum string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[archive]
	return ok && entry.SHA256 == sum
}

// record commits one extraction. The ledger is rewritten atomically per
// archive so an interrupted run never re-extracts completed work.
func (l *ledger) record(entry ledgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.Archive] = entry
	return l.save()
}

func (l *ledger) save() error {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ledgerEntry, 0, len(names))
	for _, name := range names {
		out = append(out, l.entries[name])
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create extracted directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
