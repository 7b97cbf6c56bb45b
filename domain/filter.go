package domain

import "time"

// Filter narrows which events a subscriber receives.
// Both fields nil is the default filter.
type Filter struct {
	ChatID    *string
	GroupName *string
}

func (f Filter) IsDefault() bool {
	return f.ChatID == nil && f.GroupName == nil
}

// Matches decides whether evt is of interest for this filter.
// Rules are evaluated in order and the first true wins:
//  1. ChatID set and equal to the event chat
//  2. GroupName set and equal to the event group name
//  3. default filter, only for private messages
//
// A filter with both fields set matches on either of them.
func (f Filter) Matches(evt MessageEvent) bool {
	if f.ChatID != nil && *f.ChatID == evt.ChatID {
		return true
	}
	if f.GroupName != nil && evt.GroupName != nil && *f.GroupName == *evt.GroupName {
		return true
	}
	if f.IsDefault() {
		return !evt.IsGroup
	}
	return false
}

// Normalize turns empty strings into absent fields.
func (f Filter) Normalize() Filter {
	var res Filter
	if f.ChatID != nil && *f.ChatID != "" {
		id := *f.ChatID
		res.ChatID = &id
	}
	if f.GroupName != nil && *f.GroupName != "" {
		name := *f.GroupName
		res.GroupName = &name
	}
	return res
}

// Subscriber is a registered webhook. URL is the registry key.
type Subscriber struct {
	URL       string
	Filter    Filter
	CreatedAt time.Time
}
