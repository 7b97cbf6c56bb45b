package session

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"wa-bridge/domain"
	"wa-bridge/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func privateEvent(msg *waE2E.Message) *events.Message {
	user := types.NewJID("33600000000", types.DefaultUserServer)
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{Chat: user, Sender: user},
			ID:            "3EB0ABC",
			Timestamp:     time.Unix(1700000000, 0),
		},
		Message: msg,
	}
}

func TestToRawMessage_Text(t *testing.T) {
	req := require.New(t)

	raw, ok := toRawMessage(privateEvent(&waE2E.Message{Conversation: proto.String("hello")}))

	req.True(ok)
	req.Equal("3EB0ABC", raw.ID)
	req.Equal("33600000000@c.us", raw.From)
	req.Empty(raw.Author)
	req.Equal("hello", raw.Body)
	req.Equal(domain.NativeTypeChat, raw.Type)
	req.Nil(raw.Media)
	req.Equal(time.Unix(1700000000, 0), raw.Timestamp)
}

func TestToRawMessage_Group_Sets_Author(t *testing.T) {
	req := require.New(t)

	// Given a group message sent from a linked device
	evt := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:    types.NewJID("120363000000", types.GroupServer),
				Sender:  types.NewADJID("33600000000", 0, 3),
				IsGroup: true,
			},
			ID: "3EB0DEF",
		},
		Message: &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("hey all")}},
	}

	// When translated
	raw, ok := toRawMessage(evt)

	// Then the chat is the group and the author the participant
	req.True(ok)
	req.Equal("120363000000@g.us", raw.From)
	req.Equal("33600000000@c.us", raw.Author)
	req.Equal("hey all", raw.Body)
	req.False(raw.Timestamp.IsZero())
}

func TestToRawMessage_Native_Types(t *testing.T) {
	tests := []struct {
		name      string
		msg       *waE2E.Message
		tag       string
		body      string
		withMedia bool
	}{
		{"voice note", &waE2E.Message{AudioMessage: &waE2E.AudioMessage{PTT: proto.Bool(true)}}, "ptt", "", true},
		{"audio file", &waE2E.Message{AudioMessage: &waE2E.AudioMessage{}}, "audio", "", true},
		{"image", &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("look")}}, "image", "look", true},
		{"video", &waE2E.Message{VideoMessage: &waE2E.VideoMessage{}}, "video", "", true},
		{"document", &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{}}, "document", "", true},
		{"sticker", &waE2E.Message{StickerMessage: &waE2E.StickerMessage{}}, "sticker", "", true},
		{"location", &waE2E.Message{LocationMessage: &waE2E.LocationMessage{Name: proto.String("Paris")}}, "location", "Paris", false},
		{"contact", &waE2E.Message{ContactMessage: &waE2E.ContactMessage{Vcard: proto.String("BEGIN:VCARD")}}, "vcard", "BEGIN:VCARD", false},
		{"unknown", &waE2E.Message{}, "unknown", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := toRawMessage(privateEvent(tt.msg))
			require.True(t, ok)
			require.Equal(t, tt.tag, raw.Type)
			require.Equal(t, tt.body, raw.Body)
			require.Equal(t, tt.withMedia, raw.Media != nil)
		})
	}
}

func TestToRawMessage_Skipped(t *testing.T) {
	req := require.New(t)

	// Own messages
	own := privateEvent(&waE2E.Message{Conversation: proto.String("me")})
	own.Info.IsFromMe = true
	_, ok := toRawMessage(own)
	req.False(ok)

	// Status updates
	status := privateEvent(&waE2E.Message{Conversation: proto.String("story")})
	status.Info.Chat = types.StatusBroadcastJID
	_, ok = toRawMessage(status)
	req.False(ok)

	// Empty payload
	_, ok = toRawMessage(privateEvent(nil))
	req.False(ok)
}

func TestWhatsAppSession_Handlers_Receive_Messages(t *testing.T) {
	req := require.New(t)
	session := NewWhatsAppSession(logs.GetLoggerFromLevel(slog.LevelDebug), "file::memory:", nil)

	// Given two handlers
	var got []string
	session.OnMessage(func(m domain.RawMessage) { got = append(got, "first:"+m.ID) })
	session.OnMessage(func(m domain.RawMessage) { got = append(got, "second:"+m.ID) })

	// When whatsmeow emits a message and an unrelated event
	session.handleEvent(privateEvent(&waE2E.Message{Conversation: proto.String("hi")}))
	session.handleEvent(&events.Connected{})

	// Then both handlers are called in order, once
	req.Equal([]string{"first:3EB0ABC", "second:3EB0ABC"}, got)
}

func TestWhatsAppSession_Not_Ready(t *testing.T) {
	req := require.New(t)
	session := NewWhatsAppSession(logs.GetLoggerFromLevel(slog.LevelDebug), "file::memory:", nil)

	// Before Initialize nothing can reach the network
	err := session.SendMessage(context.Background(), "33600000000", "hi")
	req.ErrorIs(err, errors.ErrSessionNotReady)

	_, err = session.GetChatByID(context.Background(), "120363000000@g.us")
	req.ErrorIs(err, errors.ErrSessionNotReady)

	_, err = session.DownloadMedia(context.Background(), domain.RawMessage{ID: "m", Media: &waE2E.AudioMessage{}})
	req.ErrorIs(err, errors.ErrSessionNotReady)

	// An invalid recipient is rejected first
	err = session.SendMessage(context.Background(), "not a number", "hi")
	req.ErrorIs(err, errors.ErrInvalidInput)

	// Destroy is safe without a client
	session.Destroy()
}

func TestWhatsAppSession_Download_Without_Media(t *testing.T) {
	session := NewWhatsAppSession(logs.GetLoggerFromLevel(slog.LevelDebug), "file::memory:", nil)
	_, err := session.DownloadMedia(context.Background(), domain.RawMessage{ID: "m"})
	require.Error(t, err)
}
