package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var _ contract.IJournal = JournalRepository{}

const JournalPrefix = "journal:"

type JournalRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitEntries *int
}

func NewJournalRepository(db *badger.DB, log *slog.Logger, limitEntries *int) JournalRepository {
	return JournalRepository{db: db, log: log, limitEntries: limitEntries}
}

type diskEntry struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	At     int64  `json:"at"`
}

// StoreEntry persists one journal line.
// The key is "journal:{timestamp_padded}:{uuid}": 19 digits keep the
// lexicographical order chronological and the uuid separates entries
// written in the same nanosecond.
func (j JournalRepository) StoreEntry(entry domain.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	key := fmt.Sprintf("%s%019d:%s", JournalPrefix, entry.At.UnixNano(), entry.ID)
	bytes, err := json.Marshal(fromJournalEntry(entry))
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetEntries returns the newest entries first.
// limit overrides the repository limit when set.
func (j JournalRepository) GetEntries(limit *int) ([]domain.JournalEntry, error) {
	if limit == nil {
		limit = j.limitEntries
	}
	var entries []domain.JournalEntry
	err := j.db.View(func(txn *badger.Txn) error {
		prefix := []byte(JournalPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key of the prefix
		seekKey := append([]byte(JournalPrefix), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(entries) == *limit {
				j.log.Debug(fmt.Sprintf("Maximum of %d journal entries reached", *limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				entry, err := DecodeEntry(value)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// DecodeEntry reads one stored journal value.
func DecodeEntry(value []byte) (domain.JournalEntry, error) {
	var d diskEntry
	if err := json.Unmarshal(value, &d); err != nil {
		return domain.JournalEntry{}, err
	}
	return toJournalEntry(d)
}

func fromJournalEntry(e domain.JournalEntry) diskEntry {
	return diskEntry{
		ID:     e.ID.String(),
		Kind:   string(e.Kind),
		URL:    e.URL,
		Target: e.Target,
		Status: e.Status,
		Error:  e.Error,
		At:     e.At.UnixNano(),
	}
}

func toJournalEntry(d diskEntry) (domain.JournalEntry, error) {
	parsedID, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return domain.JournalEntry{
		ID:     parsedID,
		Kind:   domain.JournalKind(d.Kind),
		URL:    d.URL,
		Target: d.Target,
		Status: d.Status,
		Error:  d.Error,
		At:     time.Unix(0, d.At).UTC(),
	}, nil
}
