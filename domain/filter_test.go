package domain

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestFilter_Matches(t *testing.T) {
	private := MessageEvent{ChatID: "A", IsGroup: false}
	groupTeam := MessageEvent{ChatID: "G1@g.us", IsGroup: true, GroupName: lo.ToPtr("Team")}
	groupUnresolved := MessageEvent{ChatID: "G2@g.us", IsGroup: true}
	otherChat := MessageEvent{ChatID: "B", IsGroup: true, GroupName: lo.ToPtr("Team")}

	tests := []struct {
		name   string
		filter Filter
		event  MessageEvent
		want   bool
	}{
		// Chat id
		{"Chat id equal on private message", Filter{ChatID: lo.ToPtr("A")}, private, true},
		{"Chat id equal on group message", Filter{ChatID: lo.ToPtr("G1@g.us")}, groupTeam, true},
		{"Chat id different", Filter{ChatID: lo.ToPtr("A")}, otherChat, false},

		// Group name
		{"Group name equal", Filter{GroupName: lo.ToPtr("Team")}, groupTeam, true},
		{"Group name different", Filter{GroupName: lo.ToPtr("Family")}, groupTeam, false},
		{"Group name on private message", Filter{GroupName: lo.ToPtr("Team")}, private, false},
		{"Group name on unresolved group", Filter{GroupName: lo.ToPtr("Team")}, groupUnresolved, false},

		// Both fields are OR'ed
		{"Both set, chat id wins", Filter{ChatID: lo.ToPtr("A"), GroupName: lo.ToPtr("Nope")}, private, true},
		{"Both set, group name wins", Filter{ChatID: lo.ToPtr("Z"), GroupName: lo.ToPtr("Team")}, groupTeam, true},
		{"Both set, none equal", Filter{ChatID: lo.ToPtr("Z"), GroupName: lo.ToPtr("Nope")}, groupTeam, false},

		// Default filter
		{"Default on private message", Filter{}, private, true},
		{"Default on group message", Filter{}, groupTeam, false},
		{"Default on unresolved group", Filter{}, groupUnresolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(tt.event))
		})
	}
}

func TestFilter_Normalize(t *testing.T) {
	req := require.New(t)

	req.True(Filter{ChatID: lo.ToPtr(""), GroupName: lo.ToPtr("")}.Normalize().IsDefault())

	chatID := "123"
	normalized := Filter{ChatID: &chatID}.Normalize()
	chatID = "456"

	// Then the normalized filter does not share the caller's pointer
	req.Equal("123", *normalized.ChatID)
	req.Nil(normalized.GroupName)
}

func TestClassifyNativeType(t *testing.T) {
	req := require.New(t)

	req.Equal(MessageTypeVoice, ClassifyNativeType("ptt"))
	req.Equal(MessageTypeText, ClassifyNativeType("chat"))
	req.Equal(MessageTypeOther, ClassifyNativeType("image"))
	req.Equal(MessageTypeOther, ClassifyNativeType("document"))
	req.Equal(MessageTypeText, ClassifyNativeType("e2e_notification"))
	req.Equal(MessageTypeText, ClassifyNativeType(""))
}
