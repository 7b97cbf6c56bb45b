package workers

import (
	"context"
	"fmt"
	"log/slog"
	"wa-bridge/contract"
)

var _ contract.Worker = (*SessionWorker)(nil)

// SessionWorker owns the messaging session lifecycle.
// A failed initialization releases what was opened and is returned so that
// the supervisor retries it.
type SessionWorker struct {
	session contract.Session
	log     *slog.Logger
}

func NewSessionWorker(session contract.Session, log *slog.Logger) *SessionWorker {
	return &SessionWorker{session: session, log: log}
}

func (w *SessionWorker) Run(ctx context.Context) error {
	if err := w.session.Initialize(ctx); err != nil {
		w.session.Destroy()
		return fmt.Errorf("session initialization: %w", err)
	}
	w.log.Info("Session ready, listening for messages")

	<-ctx.Done()
	w.log.Info("Destroying session")
	w.session.Destroy()
	return ctx.Err()
}
