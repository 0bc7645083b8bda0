package devtools

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/storebind/pkg/middleware"
	"github.com/vango-dev/storebind/pkg/store"
)

func newTestServer(t *testing.T, in *Inspector, opts ...ServerOption) *httptest.Server {
	t.Helper()
	opts = append([]ServerOption{WithLogger(quietLogger()), WithGatherer(prometheus.NewRegistry())}, opts...)
	ts := httptest.NewServer(NewServer(in, opts...))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestServerHealthz(t *testing.T) {
	ts := newTestServer(t, NewInspector())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServerNodesAndEvents(t *testing.T) {
	in := NewInspector()
	st, c := newTree(t, in)
	_, err := st.Dispatch(store.Action{Type: "APPEND", Payload: "a"})
	require.NoError(t, err)
	ts := newTestServer(t, in)

	var nodes []NodeInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes", &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "Echo", nodes[0].Name)

	var node NodeInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes/"+strconv.FormatUint(c.ID(), 10), &node))
	assert.Equal(t, "a", node.Props["string"])

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nodes/999999", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/nodes/abc", nil))

	var events []Event
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/events", &events))
	assert.Len(t, events, 4)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/events?since=3", &events))
	require.Len(t, events, 1)
	assert.Equal(t, KindPass, events[0].Kind)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/events?since=x", nil))
}

func TestServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	in := NewInspector()
	metrics := middleware.Prometheus(middleware.WithRegistry(reg))
	metrics.ObserveMount(1, "Echo", true)
	ts := newTestServer(t, in, WithGatherer(reg))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `storebind_mounted_nodes{node="Echo"} 1`)
}

func TestServerStream(t *testing.T) {
	in := NewInspector()
	in.ObserveMount(7, "Existing", true)
	ts := newTestServer(t, in)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var h hello
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&h))
	assert.NotEmpty(t, h.Client)
	require.Len(t, h.Nodes, 1)
	assert.Equal(t, "Existing", h.Nodes[0].Name)

	in.ObserveMount(8, "Live", true)

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, KindMount, ev.Kind)
	assert.Equal(t, "Live", ev.Node)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return in.Subscribers() == 0 }, 5*time.Second, 10*time.Millisecond)
}
