// Package event defines the platform's core data model (spec.md §3):
// the immutable inbound Event and the mutable execution Context the
// scenario engine threads through one run — event data plus a `_cache`
// overlay plus step-local bindings accumulated as steps execute.
package event

import "strconv"

// Source identifies where an event originated.
type Source string

const (
	SourceWebhook   Source = "webhook"
	SourceScheduled Source = "scheduled"
	SourceInternal  Source = "internal"
)

// Type enumerates the event-type-specific field sets an event carries.
type Type string

const (
	TypeText      Type = "text"
	TypeCallback  Type = "callback"
	TypeNewMember Type = "new_member"
	TypeScheduled Type = "scheduled"
)

// System is the event's required sub-map: tenant/bot identity plus
// routing metadata every event carries regardless of type.
type System struct {
	TenantID string `json:"tenant_id"`
	BotID    string `json:"bot_id"`
	Source   Source `json:"source"`
	Type     Type   `json:"event_type"`
}

// Event is a hierarchical mapping, immutable from the engine's
// perspective once it enters process_event. The System sub-map and
// flattened event-type fields are kept alongside the generic Data map
// so the placeholder expander's dotted-path resolution can walk either
// the typed fields or arbitrary scenario-author-supplied keys.
type Event struct {
	System System `json:"system"`

	EventText         string   `json:"event_text,omitempty"`
	CallbackData      string   `json:"callback_data,omitempty"`
	ChatID            string   `json:"chat_id,omitempty"`
	UserID            string   `json:"user_id,omitempty"`
	ChatType          string   `json:"chat_type,omitempty"`
	EventAttachment   []string `json:"event_attachment,omitempty"`
	NewMemberJoinKind string   `json:"new_member_join_kind,omitempty"` // group|link|creator|initiator|default

	// Data holds any additional fields a webhook adapter attaches that
	// aren't promoted to named fields above (§4.2's path resolver reads
	// through this the same way it reads the named fields).
	Data map[string]any `json:"data,omitempty"`
}

// ToMap flattens the event into a plain map for path-based lookup,
// mirroring the hierarchical-mapping shape spec.md §3 describes. System
// fields nest under "system"; everything else sits at the top level.
func (e Event) ToMap() map[string]any {
	m := map[string]any{
		"system": map[string]any{
			"tenant_id":  e.System.TenantID,
			"bot_id":     e.System.BotID,
			"source":     string(e.System.Source),
			"event_type": string(e.System.Type),
		},
	}
	if e.EventText != "" {
		m["event_text"] = e.EventText
	}
	if e.CallbackData != "" {
		m["callback_data"] = e.CallbackData
	}
	if e.ChatID != "" {
		m["chat_id"] = e.ChatID
	}
	if e.UserID != "" {
		m["user_id"] = e.UserID
	}
	if e.ChatType != "" {
		m["chat_type"] = e.ChatType
	}
	if len(e.EventAttachment) > 0 {
		m["event_attachment"] = e.EventAttachment
	}
	if e.NewMemberJoinKind != "" {
		m["new_member_join_kind"] = e.NewMemberJoinKind
	}
	for k, v := range e.Data {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return m
}

// Context is the mutable, per-execution view the engine passes down
// through trigger matching, placeholder expansion, condition
// evaluation, and step dispatch. It is never shared across events.
type Context struct {
	Event Event

	// Cache is the "_cache" overlay spec.md §3 calls out: per-execution
	// scratch values (e.g. a resolved bot record, a loaded user state)
	// that placeholders can address via a leading "_cache." path
	// segment without round-tripping through the process cache.
	Cache map[string]any

	// Config is copied in from the tenant's config overlay so
	// from_config-flagged action fields can be filled transparently.
	Config map[string]any

	// Steps accumulates step-local bindings: each completed step's
	// action result, keyed by its step_order, for later steps or
	// transitions to reference via "_steps.<order>.<field>" paths.
	Steps map[int]any
}

// NewContext builds a fresh execution context for one event.
func NewContext(e Event) *Context {
	return &Context{
		Event: e,
		Cache: make(map[string]any),
		Config: make(map[string]any),
		Steps: make(map[int]any),
	}
}

// ToMap renders the full path-resolution root: event fields at top
// level, plus "_cache", "_config", and "_steps" overlays.
func (c *Context) ToMap() map[string]any {
	m := c.Event.ToMap()
	m["_cache"] = c.Cache
	m["_config"] = c.Config
	steps := make(map[string]any, len(c.Steps))
	for order, v := range c.Steps {
		steps[strconv.Itoa(order)] = v
	}
	m["_steps"] = steps
	return m
}
