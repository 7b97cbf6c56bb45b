package repositories

import (
	"log/slog"
	"testing"
	"time"
	"wa-bridge/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Record_Multiple_Entries_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openTestDB(t), slog.Default(), nil)
	at := time.Now().UTC()
	entries := []domain.JournalEntry{
		{ID: uuid.New(), Kind: domain.JournalRegister, URL: "http://a/hook", Status: domain.StatusOK, At: at},
		{ID: uuid.New(), Kind: domain.JournalDelivery, URL: "http://a/hook", Target: "msg-1", Status: domain.StatusFailed, Error: "boom", At: at.Add(time.Minute)},
		{ID: uuid.New(), Kind: domain.JournalUnregister, URL: "http://a/hook", Status: domain.StatusOK, At: at.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		req.NoError(repository.StoreEntry(e))
	}

	fetched, err := repository.GetEntries(nil)

	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal(entries[2].ID, fetched[0].ID)
	req.Equal(entries[1], fetched[1])
	req.Equal(entries[0].Kind, fetched[2].Kind)
}

func Test_Record_Entries_And_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openTestDB(t), slog.Default(), lo.ToPtr(2))
	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		req.NoError(repository.StoreEntry(domain.JournalEntry{
			Kind: domain.JournalDelivery, Status: domain.StatusOK, At: at.Add(time.Duration(i) * time.Second),
		}))
	}

	// Repository limit
	fetched, err := repository.GetEntries(nil)
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal(at.Add(4*time.Second).UnixNano(), fetched[0].At.UnixNano())

	// Caller limit wins
	fetched, err = repository.GetEntries(lo.ToPtr(4))
	req.NoError(err)
	req.Len(fetched, 4)
}

func Test_Store_Entry_Fills_ID_And_Time(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openTestDB(t), slog.Default(), nil)

	req.NoError(repository.StoreEntry(domain.JournalEntry{Kind: domain.JournalSend, Target: "1@c.us", Status: domain.StatusOK}))

	fetched, err := repository.GetEntries(nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.NotEqual(uuid.Nil, fetched[0].ID)
	req.False(fetched[0].At.IsZero())
}

func Test_Get_Entries_Empty(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openTestDB(t), slog.Default(), nil)

	fetched, err := repository.GetEntries(nil)

	req.NoError(err)
	req.Empty(fetched)
}
