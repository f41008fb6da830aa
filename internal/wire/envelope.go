// Package wire defines the frames pushed over the realtime connection. Both
// the server and the client speak it.
package wire

import (
	"encoding/json"
	"fmt"
)

// Frame types.
const (
	TypePresence     = "presence"
	TypeNotification = "notification"
)

// Envelope is one websocket text frame:
//
//	{"type":"presence","data":["u1","u2"]}
//	{"type":"notification","data":{"kind":"follow",...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewPresence wraps a sorted list of online user ids.
func NewPresence(userIDs []string) Envelope {
	if userIDs == nil {
		userIDs = []string{}
	}
	return mustEnvelope(TypePresence, userIDs)
}

// NewNotification wraps a notification value.
func NewNotification(n any) Envelope {
	return mustEnvelope(TypeNotification, n)
}

// Presence decodes the online ids of a presence frame.
func (e Envelope) Presence() ([]string, error) {
	if e.Type != TypePresence {
		return nil, fmt.Errorf("not a presence frame: %q", e.Type)
	}
	var ids []string
	if err := json.Unmarshal(e.Data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

func mustEnvelope(typ string, v any) Envelope {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("wire: encode %s: %v", typ, err))
	}
	return Envelope{Type: typ, Data: b}
}
