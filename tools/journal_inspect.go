package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"wa-bridge/domain"
	"wa-bridge/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "data/journal", "Path to the badger journal")
	limit := flag.Int("limit", 50, "Number of entries, newest first")
	kind := flag.String("kind", "", "Only show one kind (register, unregister, delivery, send)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	journal := repositories.NewJournalRepository(db, logs.GetLoggerFromString("WARN"), nil)
	// Filtering happens after the read, fetch everything when a kind is asked
	var readLimit *int
	if *kind == "" {
		readLimit = limit
	}
	entries, err := journal.GetEntries(readLimit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Kind", "Status", "URL", "Target", "Error"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	shown, failed := 0, 0
	for _, entry := range entries {
		if *kind != "" && string(entry.Kind) != *kind {
			continue
		}
		if shown == *limit {
			break
		}
		shown++
		status := color.Green.Render(entry.Status)
		if entry.Status == domain.StatusFailed {
			failed++
			status = color.Red.Render(entry.Status)
		}
		table.Append([]string{
			entry.At.Local().Format("2006-01-02 15:04:05.000"),
			string(entry.Kind),
			status,
			entry.URL,
			entry.Target,
			truncate(entry.Error, 60),
		})
	}
	table.Render()

	summary := fmt.Sprintf(" %s entries, %s failed ", strconv.Itoa(shown), strconv.Itoa(failed))
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(summary))
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
