package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

var _ contract.Session = (*WhatsAppSession)(nil)

// WhatsAppSession is a single linked device. Credentials live in a sqlite
// store so a restart reconnects without scanning the QR code again.
type WhatsAppSession struct {
	log    *slog.Logger
	dbURI  string
	qrOut  io.Writer
	mu     sync.RWMutex
	client *whatsmeow.Client
	store  *sqlstore.Container
	// Handlers run in registration order on the whatsmeow event goroutine.
	handlers []func(domain.RawMessage)
}

// NewWhatsAppSession prints pairing QR codes to qrOut, or only logs them when qrOut is nil.
func NewWhatsAppSession(log *slog.Logger, dbURI string, qrOut io.Writer) *WhatsAppSession {
	return &WhatsAppSession{log: log, dbURI: dbURI, qrOut: qrOut}
}

func (s *WhatsAppSession) OnMessage(handler func(domain.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Initialize opens the device store, pairs if needed and connects.
// It returns once the session is connected or pairing failed.
func (s *WhatsAppSession) Initialize(ctx context.Context) error {
	container, err := sqlstore.New(ctx, "sqlite3", s.dbURI, newWALogger(s.log, "Database"))
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return fmt.Errorf("loading device: %w", err)
	}

	client := whatsmeow.NewClient(device, newWALogger(s.log, "Client"))
	client.EnableAutoReconnect = true
	client.AddEventHandler(s.handleEvent)

	s.mu.Lock()
	s.client = client
	s.store = container
	s.mu.Unlock()

	if client.Store.ID != nil {
		if err := client.Connect(); err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		s.log.Info("Session restored", "device", client.Store.ID.String())
		return nil
	}

	qrChan, err := client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("requesting QR channel: %w", err)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	if err := s.pair(ctx, qrChan); err != nil {
		client.Disconnect()
		return err
	}
	return nil
}

func (s *WhatsAppSession) pair(ctx context.Context, qrChan <-chan whatsmeow.QRChannelItem) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-qrChan:
			if !ok {
				return fmt.Errorf("QR channel closed before pairing")
			}
			switch item.Event {
			case whatsmeow.QRChannelEventCode:
				s.log.Info("Scan the QR code to link the device", "expires_in", item.Timeout.String())
				if s.qrOut != nil {
					qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, s.qrOut)
				}
			case whatsmeow.QRChannelSuccess.Event:
				s.log.Info("Device linked")
				return nil
			case whatsmeow.QRChannelEventError:
				return fmt.Errorf("pairing failed: %w", item.Error)
			default:
				return fmt.Errorf("pairing failed: %s", item.Event)
			}
		}
	}
}

func (s *WhatsAppSession) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Disconnect()
		s.client = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("Closing session store", "error", err)
		}
		s.store = nil
	}
	s.log.Info("Session destroyed")
}

func (s *WhatsAppSession) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		msg, ok := toRawMessage(evt)
		if !ok {
			return
		}
		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()
		for _, handler := range handlers {
			handler(msg)
		}
	case *events.Connected:
		s.log.Info("Session connected")
	case *events.Disconnected:
		s.log.Warn("Session disconnected")
	case *events.LoggedOut:
		s.log.Error("Session logged out, remove the session store and pair again", "reason", evt.Reason.String())
	}
}

func (s *WhatsAppSession) connectedClient() (*whatsmeow.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil || !s.client.IsLoggedIn() {
		return nil, errors.ErrSessionNotReady
	}
	return s.client, nil
}

func (s *WhatsAppSession) DownloadMedia(ctx context.Context, msg domain.RawMessage) ([]byte, error) {
	media, ok := msg.Media.(whatsmeow.DownloadableMessage)
	if !ok || media == nil {
		return nil, fmt.Errorf("message %s has no downloadable media", msg.ID)
	}
	client, err := s.connectedClient()
	if err != nil {
		return nil, err
	}
	return client.Download(ctx, media)
}

// GetChatByID resolves the group subject, or the contact name for private chats.
func (s *WhatsAppSession) GetChatByID(ctx context.Context, chatID string) (domain.Chat, error) {
	client, err := s.connectedClient()
	if err != nil {
		return domain.Chat{}, err
	}
	jid, err := ParseRecipient(chatID)
	if err != nil {
		return domain.Chat{}, err
	}

	if jid.Server == types.GroupServer {
		info, err := client.GetGroupInfo(ctx, jid)
		if err != nil {
			return domain.Chat{}, err
		}
		return domain.Chat{ID: chatID, Name: info.Name, IsGroup: true}, nil
	}

	contact, err := client.Store.Contacts.GetContact(ctx, jid)
	if err != nil {
		return domain.Chat{}, err
	}
	name := contact.FullName
	if name == "" {
		name = contact.PushName
	}
	return domain.Chat{ID: chatID, Name: name}, nil
}

func (s *WhatsAppSession) SendMessage(ctx context.Context, to, text string) error {
	jid, err := ParseRecipient(to)
	if err != nil {
		return err
	}
	client, err := s.connectedClient()
	if err != nil {
		return err
	}
	_, err = client.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	return err
}

// toRawMessage drops our own messages and status broadcasts.
func toRawMessage(evt *events.Message) (domain.RawMessage, bool) {
	if evt.Info.IsFromMe || evt.Info.Chat.Server == types.BroadcastServer || evt.Message == nil {
		return domain.RawMessage{}, false
	}

	msg := domain.RawMessage{
		ID:        evt.Info.ID,
		From:      ChatIDFromJID(evt.Info.Chat),
		Timestamp: evt.Info.Timestamp,
	}
	if evt.Info.IsGroup {
		msg.Author = ChatIDFromJID(evt.Info.Sender)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.Type, msg.Body, msg.Media = nativeContent(evt.Message)
	return msg, true
}

// nativeContent returns the type tag, the text and the downloadable part of m.
func nativeContent(m *waE2E.Message) (string, string, any) {
	switch {
	case m.GetConversation() != "":
		return domain.NativeTypeChat, m.GetConversation(), nil
	case m.GetExtendedTextMessage() != nil:
		return domain.NativeTypeChat, m.GetExtendedTextMessage().GetText(), nil
	case m.GetAudioMessage() != nil:
		audio := m.GetAudioMessage()
		if audio.GetPTT() {
			return domain.NativeTypeVoice, "", audio
		}
		return domain.NativeTypeAudio, "", audio
	case m.GetImageMessage() != nil:
		return domain.NativeTypeImage, m.GetImageMessage().GetCaption(), m.GetImageMessage()
	case m.GetPtvMessage() != nil:
		return domain.NativeTypeVideoPtv, "", m.GetPtvMessage()
	case m.GetVideoMessage() != nil:
		return domain.NativeTypeVideo, m.GetVideoMessage().GetCaption(), m.GetVideoMessage()
	case m.GetDocumentMessage() != nil:
		return domain.NativeTypeDocument, m.GetDocumentMessage().GetCaption(), m.GetDocumentMessage()
	case m.GetStickerMessage() != nil:
		return domain.NativeTypeSticker, "", m.GetStickerMessage()
	case m.GetLocationMessage() != nil:
		return domain.NativeTypeLocation, m.GetLocationMessage().GetName(), nil
	case m.GetContactMessage() != nil:
		return domain.NativeTypeContact, m.GetContactMessage().GetVcard(), nil
	default:
		return "unknown", "", nil
	}
}
