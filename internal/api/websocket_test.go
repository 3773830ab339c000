package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/ScriptBreakdown/internal/mocks"
)

func TestStateWebSocketStreamsChanges(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "INT. CAFE").Return(sampleBreakdown(), nil).Once()
	r := newTestRouter(t, gen, 0)

	srv := httptest.NewServer(r)
	defer srv.Close()

	// obtain a session first so the socket and the submission share it
	resp, err := http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	resp.Body.Close()
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	header := http.Header{"Cookie": {cookie.Name + "=" + cookie.Value}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	var first StateMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "state", first.Type)
	assert.Equal(t, RegionPlaceholder, first.Data.View.Region)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/breakdown", strings.NewReader(`{"script":"INT. CAFE"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var regions []Region
	for {
		var msg StateMessage
		require.NoError(t, conn.ReadJSON(&msg))
		regions = append(regions, msg.Data.View.Region)
		if msg.Data.View.Region == RegionOutput {
			assert.NotEmpty(t, msg.Data.View.OutputJSON)
			assert.Equal(t, "INT. CAFE", msg.Data.State.ScriptText)
			break
		}
	}
	assert.Contains(t, regions, RegionLoading)
}

func TestStateWebSocketIssuesSessionCookie(t *testing.T) {
	r := newTestRouter(t, mocks.NewMockGenerator(t), 0)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Contains(t, resp.Header.Get("Set-Cookie"), sessionCookie+"=")

	var first StateMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, RegionPlaceholder, first.Data.View.Region)
}
