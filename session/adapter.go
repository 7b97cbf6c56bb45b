// Package session connects the messaging account to the dispatcher.
//
// Adapter normalizes raw session messages into domain.MessageEvent, fetching
// voice notes and group names on the way, and forwards outbound sends.
// WhatsAppSession is the contract.Session implementation backed by whatsmeow.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"
	"wa-bridge/observability"

	"github.com/patrickmn/go-cache"
)

var _ contract.Sender = (*Adapter)(nil)

const voiceExtension = ".ogg"

type Adapter struct {
	log        *slog.Logger
	session    contract.Session
	blobs      contract.BlobStore
	dispatcher contract.IDispatcher
	stats      *observability.Stats
	timeout    time.Duration
	now        func() time.Time
	// Group names by chat id, failed lookups are not kept
	groupNames *cache.Cache
	inflight   sync.WaitGroup
}

func NewAdapter(log *slog.Logger, session contract.Session, blobs contract.BlobStore,
	dispatcher contract.IDispatcher, stats *observability.Stats,
	timeout, groupNameTTL time.Duration) *Adapter {
	return &Adapter{
		log:        log,
		session:    session,
		blobs:      blobs,
		dispatcher: dispatcher,
		stats:      stats,
		timeout:    timeout,
		now:        time.Now,
		groupNames: cache.New(groupNameTTL, 2*groupNameTTL),
	}
}

// Listen subscribes the adapter to the session messages. Each message is
// handled in its own goroutine so downloads and lookups never hold the
// session event loop.
func (a *Adapter) Listen() {
	a.session.OnMessage(func(msg domain.RawMessage) {
		a.inflight.Add(1)
		go func() {
			defer a.inflight.Done()
			a.HandleMessage(msg)
		}()
	})
}

// Wait blocks until every message received through Listen is dispatched.
func (a *Adapter) Wait() {
	a.inflight.Wait()
}

// HandleMessage builds the event for msg and dispatches it.
// Media and chat lookup failures only drop the matching optional field.
// Nothing escapes from here: the session keeps delivering messages.
func (a *Adapter) HandleMessage(msg domain.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Panic while handling message", "message_id", msg.ID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	a.dispatcher.Dispatch(a.Normalize(ctx, msg))
}

// Normalize turns msg into a MessageEvent.
func (a *Adapter) Normalize(ctx context.Context, msg domain.RawMessage) domain.MessageEvent {
	evt := domain.MessageEvent{
		ID:        msg.ID,
		SenderID:  msg.From,
		Author:    msg.Author,
		Body:      msg.Body,
		Type:      domain.ClassifyNativeType(msg.Type),
		ChatID:    msg.From,
		IsGroup:   IsGroupID(msg.From),
		Timestamp: msg.Timestamp,
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = a.now()
	}

	if evt.Type == domain.MessageTypeVoice {
		if ref, err := a.storeVoice(ctx, msg); err != nil {
			a.stats.IncrMediaFailures()
			a.log.Warn("Voice note not attached", "message_id", msg.ID, "error", err)
		} else {
			evt.VoiceMediaRef = &ref
		}
	}

	if evt.IsGroup {
		if name, err := a.groupName(ctx, msg.From); err != nil {
			a.stats.IncrChatLookupFailures()
			a.log.Warn("Group name not resolved", "chat_id", msg.From, "error", err)
		} else if name != "" {
			evt.GroupName = &name
		}
	}

	a.log.Debug("Message normalized", "message_id", evt.ID, "chat_id", evt.ChatID,
		"type", evt.Type, "group", evt.IsGroup)
	return evt
}

func (a *Adapter) storeVoice(ctx context.Context, msg domain.RawMessage) (string, error) {
	data, err := a.session.DownloadMedia(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrMediaDownloadFailed, err)
	}
	name := fmt.Sprintf("voice_%d%s", a.now().UnixNano(), voiceExtension)
	ref, err := a.blobs.Save(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("%w: storing %s: %w", errors.ErrMediaDownloadFailed, name, err)
	}
	return ref, nil
}

func (a *Adapter) groupName(ctx context.Context, chatID string) (string, error) {
	if name, ok := a.groupNames.Get(chatID); ok {
		return name.(string), nil
	}
	chat, err := a.session.GetChatByID(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrChatLookupFailed, err)
	}
	if !chat.IsGroup {
		return "", nil
	}
	a.groupNames.SetDefault(chatID, chat.Name)
	return chat.Name, nil
}

// Send pushes text to recipient through the session.
func (a *Adapter) Send(ctx context.Context, to, text string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.session.SendMessage(ctx, to, text); err != nil {
		return fmt.Errorf("%w: to %s: %w", errors.ErrSendFailed, to, err)
	}
	a.log.Info("Message sent", "to", to)
	return nil
}

// IsGroupID reports whether a chat id designates a group.
func IsGroupID(chatID string) bool {
	return strings.HasSuffix(chatID, domain.GroupSuffix)
}
