package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-lab/internal/analytics"
)

func dialSimulateWS(t *testing.T, ts *httptest.Server, curveID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/curves/" + curveID + "/simulate/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestSimulateWS_StreamsFillsThenSummary(t *testing.T) {
	handler := newTestServer(t).Handler()
	ts := httptest.NewServer(handler)
	defer ts.Close()

	curveID := createTestCurve(t, handler)
	conn := dialSimulateWS(t, ts, curveID)

	require.NoError(t, conn.WriteJSON(scheduleRequest{
		ScheduleID:  "uniform",
		NumMints:    3,
		BaseQuoteIn: "1000000",
		GrowthNum:   1,
		GrowthDen:   1,
	}))

	var fills []wsFillMessage
	for {
		var raw json.RawMessage
		require.NoError(t, conn.ReadJSON(&raw))

		var envelope struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))

		if envelope.Type == "fill" {
			var fill wsFillMessage
			require.NoError(t, json.Unmarshal(raw, &fill))
			fills = append(fills, fill)
			continue
		}

		require.Equal(t, "summary", envelope.Type)
		var msg struct {
			Summary analytics.RunSummary `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, curveID, msg.Summary.CurveID)
		assert.Equal(t, 3, msg.Summary.NumMints)
		break
	}

	require.Len(t, fills, 3)
	assert.Equal(t, 0, fills[0].Seq)
	assert.Equal(t, "0", fills[0].Step)
	assert.Equal(t, "24390244", fills[0].AssetOut)
	assert.Equal(t, "24390244", fills[0].NewStep)

	// Fill stream is ordered and chained.
	for i := 1; i < len(fills); i++ {
		assert.Equal(t, i, fills[i].Seq)
		assert.Equal(t, fills[i-1].NewStep, fills[i].Step)
	}
}

func TestSimulateWS_CurveNotFound(t *testing.T) {
	handler := newTestServer(t).Handler()
	ts := httptest.NewServer(handler)
	defer ts.Close()

	conn := dialSimulateWS(t, ts, "missing")

	require.NoError(t, conn.WriteJSON(scheduleRequest{ScheduleID: "uniform"}))

	var msg wsErrorMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "not_found", msg.Kind)
}

func TestSimulateWS_MalformedRequest(t *testing.T) {
	handler := newTestServer(t).Handler()
	ts := httptest.NewServer(handler)
	defer ts.Close()

	curveID := createTestCurve(t, handler)
	conn := dialSimulateWS(t, ts, curveID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	var msg wsErrorMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "invalid_input", msg.Kind)
}
