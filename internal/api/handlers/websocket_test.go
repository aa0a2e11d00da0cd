package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/superhero-teams/internal/testutil"
	"github.com/dom/superhero-teams/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextStateSync(t *testing.T, conn *gorillaWS.Conn) websocket.StateSyncPayload {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, websocket.MessageTypeStateSync, msg.Type)

	var payload websocket.StateSyncPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestWebSocketHandler_StreamsState(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.RawHeroes(4)...)

	conn, _, err := gorillaWS.DefaultDialer.Dial(ts.WebSocketURL(), nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := nextStateSync(t, conn)
	assert.Equal(t, 4, initial.HeroCount)
	assert.Empty(t, initial.Favorites)

	resp := testutil.Do(t, testutil.NewRequest(t, http.MethodPut, ts.APIURL("/favorites/3"), nil, ""))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// publishes coalesce, so skip any snapshot taken before the change
	update := nextStateSync(t, conn)
	for len(update.Favorites) == 0 {
		update = nextStateSync(t, conn)
	}
	testutil.AssertHeroIDs(t, update.Favorites, 3)
}
