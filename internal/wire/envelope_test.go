package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceFrame(t *testing.T) {
	b, err := json.Marshal(NewPresence([]string{"u1", "u2"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"presence","data":["u1","u2"]}`, string(b))

	var e Envelope
	require.NoError(t, json.Unmarshal(b, &e))
	ids, err := e.Presence()
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)
}

func TestPresenceFrame_EmptyIsArray(t *testing.T) {
	b, err := json.Marshal(NewPresence(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"presence","data":[]}`, string(b))
}

func TestNotificationFrame(t *testing.T) {
	type note struct {
		Kind string `json:"kind"`
	}
	e := NewNotification(note{Kind: "follow"})
	assert.Equal(t, TypeNotification, e.Type)

	var got note
	require.NoError(t, e.Decode(&got))
	assert.Equal(t, "follow", got.Kind)

	_, err := e.Presence()
	assert.Error(t, err)
}
