package internal

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"wa-bridge/repositories"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Timestamp string
	EntryID   string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// DebugHandler renders every key under ?prefix= (default prefix otherwise) as an HTML table.
func DebugHandler(db *badger.DB, defaultPrefix string, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	if mapper == nil {
		mapper = DefaultMapper
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Reverse = true
			it := txn.NewIterator(opts)
			defer it.Close()
			seek := append([]byte(prefix), 0xFF)
			for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				key := item.KeyCopy(nil)
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(key), val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

// StartDebugServer serves the inspector on every interface until the process exits.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, endpoint, defaultPrefix string,
	mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	mux.Handle(endpoint, DebugHandler(db, defaultPrefix, mapper, statsProvider))

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug inspector stopped", "addr", addr, "error", err)
		}
	}()
}

// DefaultMapper understands keys shaped "namespace:unixnano:id".
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Timestamp: "--:--:--",
		EntryID:   "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) == 3 {
		if tsNano, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("2006-01-02 15:04:05")
		}
		row.EntryID = parts[2]
		if len(row.EntryID) > 8 {
			row.EntryID = row.EntryID[:8]
		}
	}
	return row
}

// JournalMapper decodes journal values into a one line summary.
func JournalMapper(key string, val []byte) InspectRow {
	row := DefaultMapper(key, val)
	entry, err := repositories.DecodeEntry(val)
	if err != nil {
		row.Detail = "Error: decoding failed"
		return row
	}
	fields := []string{string(entry.Kind), entry.Status}
	for _, f := range []string{entry.URL, entry.Target} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	row.Detail = strings.Join(fields, " ")
	if entry.Error != "" {
		row.Detail += " (" + entry.Error + ")"
	}
	return row
}
