package session

import (
	"fmt"
	"strings"
	"unicode"
	"wa-bridge/errors"

	"go.mau.fi/whatsmeow/types"
)

// ChatIDFromJID renders a JID the way chat ids are exposed to webhooks:
// users as <number>@c.us, groups as <id>@g.us, devices stripped.
func ChatIDFromJID(jid types.JID) string {
	jid = jid.ToNonAD()
	if jid.Server == types.DefaultUserServer {
		return jid.User + "@" + types.LegacyUserServer
	}
	return jid.String()
}

// ParseRecipient accepts a bare phone number, a +number, or any chat id
// (c.us, s.whatsapp.net, g.us, lid) and returns the JID to send to.
func ParseRecipient(to string) (types.JID, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return types.JID{}, fmt.Errorf("%w: empty recipient", errors.ErrInvalidInput)
	}

	if !strings.Contains(to, "@") {
		number := strings.TrimPrefix(to, "+")
		if number == "" || strings.IndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return types.JID{}, fmt.Errorf("%w: %q is not a phone number", errors.ErrInvalidInput, to)
		}
		return types.NewJID(number, types.DefaultUserServer), nil
	}

	jid, err := types.ParseJID(to)
	if err != nil {
		return types.JID{}, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("%w: %q has no user part", errors.ErrInvalidInput, to)
	}
	if jid.Server == types.LegacyUserServer {
		jid.Server = types.DefaultUserServer
	}
	return jid, nil
}
