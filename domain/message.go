// Package domain contains core concepts of the bridge.
// This file defines inbound messages, before and after normalization.
// A MessageEvent is immutable once built by the session adapter.
package domain

import (
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeVoice MessageType = "voice"
	MessageTypeOther MessageType = "other"
)

// Native type tags emitted by the session.
const (
	NativeTypeChat     = "chat"
	NativeTypeVoice    = "ptt"
	NativeTypeImage    = "image"
	NativeTypeVideo    = "video"
	NativeTypeAudio    = "audio"
	NativeTypeDocument = "document"
	NativeTypeSticker  = "sticker"
	NativeTypeLocation = "location"
	NativeTypeContact  = "vcard"
	NativeTypeVideoPtv = "ptv"
)

const GroupSuffix = "@g.us"

// RawMessage is a message as the session hands it over.
// For group chats From is the group id and Author the participant.
type RawMessage struct {
	ID        string
	From      string
	Author    string
	Body      string
	Type      string
	Timestamp time.Time
	// Media is whatever the session needs to download the attachment.
	Media any
}

// MessageEvent is the normalized shape consumed by the dispatcher.
type MessageEvent struct {
	ID            string
	SenderID      string
	Author        string
	Body          string
	Type          MessageType
	ChatID        string
	IsGroup       bool
	GroupName     *string
	VoiceMediaRef *string
	Timestamp     time.Time
}

// ClassifyNativeType maps a session type tag to a MessageType.
// Unknown tags fall back to text.
func ClassifyNativeType(tag string) MessageType {
	switch tag {
	case NativeTypeVoice:
		return MessageTypeVoice
	case NativeTypeChat:
		return MessageTypeText
	case NativeTypeImage, NativeTypeVideo, NativeTypeAudio, NativeTypeDocument,
		NativeTypeSticker, NativeTypeLocation, NativeTypeContact, NativeTypeVideoPtv:
		return MessageTypeOther
	default:
		return MessageTypeText
	}
}

// Chat is the result of a chat lookup.
type Chat struct {
	ID      string
	Name    string
	IsGroup bool
}
