//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"wa-bridge/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type IRegistry interface {
	Register(url string, filter domain.Filter) error
	Unregister(url string) error
	Snapshot() []domain.Subscriber
	Len() int
}

// WebhookSink performs a single delivery attempt of an event to a URL.
type WebhookSink interface {
	Deliver(ctx context.Context, url string, evt domain.MessageEvent) (int, error)
}

type IDispatcher interface {
	Dispatch(evt domain.MessageEvent)
}

// Fanout delivers one event to every matching subscriber and waits for all of them.
type Fanout interface {
	Fanout(ctx context.Context, evt domain.MessageEvent) []domain.Delivery
	Events() <-chan domain.MessageEvent
}

// Session is the messaging account seen as a black box.
type Session interface {
	OnMessage(handler func(msg domain.RawMessage))
	Initialize(ctx context.Context) error
	Destroy()
	DownloadMedia(ctx context.Context, msg domain.RawMessage) ([]byte, error)
	GetChatByID(ctx context.Context, chatID string) (domain.Chat, error)
	SendMessage(ctx context.Context, to, text string) error
}

type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// BlobStore persists media and returns an opaque handle.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type IJournal interface {
	StoreEntry(entry domain.JournalEntry) error
	GetEntries(limit *int) ([]domain.JournalEntry, error)
}
