package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReachesAllClientsOfUser(t *testing.T) {
	h := New()

	first := make(Client, 1)
	second := make(Client, 1)
	h.Subscribe(7, first)
	h.Subscribe(7, second)

	h.Notify(7, Event{Type: "message", Payload: map[string]string{"content": "hi"}})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	payload := <-first
	assert.Contains(t, string(payload), `"type":"message"`)
	assert.Contains(t, string(payload), `"content":"hi"`)
}

func TestNotifyIgnoresAbsentUsers(t *testing.T) {
	h := New()
	// No subscribers: must not panic or block.
	h.Notify(99, Event{Type: "message"})
}

func TestNotifySkipsFullClients(t *testing.T) {
	h := New()

	full := make(Client) // unbuffered and never read
	h.Subscribe(1, full)

	// Must not block on the stuck client.
	h.Notify(1, Event{Type: "message"})
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New()

	client := make(Client, 1)
	h.Subscribe(3, client)
	h.Unsubscribe(3, client)

	_, open := <-client
	assert.False(t, open)

	// Double unsubscribe is a no-op, not a double close.
	h.Unsubscribe(3, client)

	h.Notify(3, Event{Type: "message"})
}
