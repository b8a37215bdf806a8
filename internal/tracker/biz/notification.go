package biz

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	EventObjectCreated = "Object Created"
	EventObjectDeleted = "Object Deleted"

	// flat notification event types
	EventCreatedShort = "created"
	EventDeletedShort = "deleted"
)

// EventKind which processor a notification belongs to
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCreated
	EventDeleted
)

// Notification an abstract "object changed" event
type Notification struct {
	ID        string `json:"id,omitempty"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	EventType string `json:"event_type"`
}

// Kind classifies the event type: EventBridge detail types by prefix, flat
// notifications by their created/deleted value.
func (n Notification) Kind() EventKind {
	switch {
	case strings.HasPrefix(n.EventType, EventObjectCreated),
		strings.EqualFold(n.EventType, EventCreatedShort):
		return EventCreated
	case strings.HasPrefix(n.EventType, EventObjectDeleted),
		strings.EqualFold(n.EventType, EventDeletedShort):
		return EventDeleted
	default:
		return EventUnknown
	}
}

// Filepath bucket/key of the notification
func (n Notification) Filepath() string {
	return Filepath(n.Bucket, n.Key)
}

// Validate checks that a recognized notification names an object
func (n Notification) Validate() error {
	if n.Kind() == EventUnknown {
		return nil
	}
	if n.Bucket == "" || n.Key == "" {
		return fmt.Errorf("%w: bucket and key are required", ErrInvalidNotification)
	}
	return nil
}

// ParseNotifications accepts a single EventBridge event, a JSON array of
// them, an SQS batch whose record bodies hold the event as a JSON string,
// or the flat {bucket, key, event_type} form. Only a malformed outer
// document is an error; bad records surface per notification when routed.
func ParseNotifications(body []byte) ([]Notification, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidNotification)
	}
	root := gjson.ParseBytes(body)

	var events []gjson.Result
	switch {
	case root.Get("Records").IsArray():
		for _, rec := range root.Get("Records").Array() {
			// a body that is not JSON yields an empty event, routed as unrecognized
			events = append(events, gjson.Parse(rec.Get("body").String()))
		}
	case root.IsArray():
		events = root.Array()
	case root.IsObject():
		events = []gjson.Result{root}
	default:
		return nil, fmt.Errorf("%w: expected an object or array", ErrInvalidNotification)
	}

	notifications := make([]Notification, 0, len(events))
	for _, ev := range events {
		notifications = append(notifications, parseEvent(ev))
	}
	return notifications, nil
}

func parseEvent(ev gjson.Result) Notification {
	if ev.Get("event_type").Exists() {
		return Notification{
			ID:        ev.Get("id").String(),
			Bucket:    ev.Get("bucket").String(),
			Key:       ev.Get("key").String(),
			EventType: ev.Get("event_type").String(),
		}
	}
	return Notification{
		ID:        ev.Get("id").String(),
		Bucket:    ev.Get("detail.bucket.name").String(),
		Key:       ev.Get("detail.object.key").String(),
		EventType: ev.Get("detail-type").String(),
	}
}
