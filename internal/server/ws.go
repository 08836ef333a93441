package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"curve-lab/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsFillMessage streams one executed fill.
type wsFillMessage struct {
	Type     string `json:"type"`
	Seq      int    `json:"seq"`
	Step     string `json:"step"`
	QuoteIn  string `json:"quote_in"`
	AssetOut string `json:"asset_out"`
	NewStep  string `json:"new_step"`
}

// wsSummaryMessage closes a successful stream.
type wsSummaryMessage struct {
	Type    string `json:"type"`
	Summary any    `json:"summary"`
}

// wsErrorMessage closes a failed stream.
type wsErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// handleSimulateWS runs a schedule and streams each fill as it executes,
// followed by a single summary message. The client sends one schedule
// request and then only reads.
func (s *Server) handleSimulateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var req scheduleRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(wsErrorMessage{Type: "error", Error: "malformed schedule request", Kind: "invalid_input"})
		return
	}

	// Fills are buffered by the runner and replayed in order after the run
	// completes, so a slow reader never blocks persistence.
	onFill := func(f *domain.MintFill) {
		conn.WriteJSON(wsFillMessage{
			Type:     "fill",
			Seq:      f.Seq,
			Step:     f.Step,
			QuoteIn:  f.QuoteIn,
			AssetOut: f.AssetOut,
			NewStep:  f.NewStep,
		})
	}

	summary, err := s.runSchedule(r, r.PathValue("id"), req.toConfig(), onFill)
	if err != nil {
		conn.WriteJSON(wsErrorMessage{Type: "error", Error: err.Error(), Kind: errorKind(err)})
		return
	}

	conn.WriteJSON(wsSummaryMessage{Type: "summary", Summary: summary})

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
