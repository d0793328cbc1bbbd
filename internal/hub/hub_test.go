package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast_DeliversToTopicOnly(t *testing.T) {
	h := NewHub()
	admin := h.Subscribe(AdminTopic)
	other := h.Subscribe("other")

	h.Broadcast(AdminTopic, Event{Type: "game_submitted", Payload: map[string]int{"id": 5}})

	select {
	case msg := <-admin:
		var ev map[string]any
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "game_submitted", ev["type"])
	default:
		t.Fatal("admin client received nothing")
	}

	select {
	case <-other:
		t.Fatal("other topic must not receive admin events")
	default:
	}
}

func TestBroadcast_DoesNotBlockOnFullClient(t *testing.T) {
	h := NewHub()
	client := h.Subscribe(AdminTopic)

	for i := 0; i < cap(client)+5; i++ {
		h.Broadcast(AdminTopic, Event{Type: "tick"})
	}
	assert.Len(t, client, cap(client))
}

func TestUnsubscribe_ClosesAndForgets(t *testing.T) {
	h := NewHub()
	client := h.Subscribe(AdminTopic)
	assert.Equal(t, 1, h.Subscribers(AdminTopic))

	h.Unsubscribe(AdminTopic, client)
	_, open := <-client
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers(AdminTopic))

	// A second unsubscribe must not close the channel twice.
	h.Unsubscribe(AdminTopic, client)
}
