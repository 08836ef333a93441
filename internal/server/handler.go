// Package server exposes the curve engine and simulation lab over HTTP.
// Amounts cross the wire as decimal strings; nothing is ever truncated to
// a float.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"curve-lab/internal/analytics"
	"curve-lab/internal/domain"
	"curve-lab/internal/idhash"
	"curve-lab/internal/observability"
	"curve-lab/internal/simulation"
	"curve-lab/internal/storage"
	"curve-lab/pkg/curve"
)

// Server handles the curve lab HTTP API.
type Server struct {
	curveStore storage.CurveStore
	runStore   storage.SimulationRunStore
	fillStore  storage.MintFillStore
	pointStore storage.CurvePointStore
	logger     *log.Logger
	now        func() time.Time

	// State
	mu             sync.Mutex
	started        time.Time
	curvesCreated  int
	simulationRuns int
}

// Options contains configuration for creating a Server.
type Options struct {
	CurveStore storage.CurveStore
	RunStore   storage.SimulationRunStore
	FillStore  storage.MintFillStore
	PointStore storage.CurvePointStore

	// Logger defaults to a stdout logger; Now defaults to time.Now.
	Logger *log.Logger
	Now    func() time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		curveStore: opts.CurveStore,
		runStore:   opts.RunStore,
		fillStore:  opts.FillStore,
		pointStore: opts.PointStore,
		logger:     logger,
		now:        now,
		started:    now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/curves", s.instrument("create_curve", s.handleCreateCurve))
	mux.HandleFunc("GET /v1/curves", s.instrument("list_curves", s.handleListCurves))
	mux.HandleFunc("GET /v1/curves/{id}", s.instrument("get_curve", s.handleGetCurve))
	mux.HandleFunc("GET /v1/curves/{id}/snapshot", s.instrument("snapshot", s.handleSnapshot))
	mux.HandleFunc("GET /v1/curves/{id}/quote", s.instrument("quote", s.handleQuote))
	mux.HandleFunc("GET /v1/curves/{id}/inverse", s.instrument("inverse", s.handleInverse))
	mux.HandleFunc("GET /v1/curves/{id}/analytics", s.instrument("analytics", s.handleAnalytics))
	mux.HandleFunc("GET /v1/curves/{id}/runs", s.instrument("list_runs", s.handleListRuns))
	mux.HandleFunc("POST /v1/curves/{id}/simulate", s.instrument("simulate", s.handleSimulate))
	mux.HandleFunc("GET /v1/curves/{id}/simulate/ws", s.handleSimulateWS)
	mux.HandleFunc("GET /v1/runs/{id}/points", s.instrument("list_points", s.handleListPoints))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	CurvesCreated  int    `json:"curves_created"`
	SimulationRuns int    `json:"simulation_runs"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:         "running",
		Uptime:         s.now().Sub(s.started).String(),
		CurvesCreated:  s.curvesCreated,
		SimulationRuns: s.simulationRuns,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// instrument records request latency per route.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		observability.RecordHTTPRequest(route, r.Method, time.Since(start).Seconds())
	}
}

// createCurveRequest carries the four curve parameters as decimal strings.
type createCurveRequest struct {
	TotalSupply   string `json:"total_supply"`
	SellAmount    string `json:"sell_amount"`
	VirtualTokens string `json:"virtual_tokens"`
	MCTargetSats  string `json:"mc_target_sats"`
}

// curveResponse mirrors a stored curve record.
type curveResponse struct {
	CurveID       string `json:"curve_id"`
	TotalSupply   string `json:"total_supply"`
	SellAmount    string `json:"sell_amount"`
	VirtualTokens string `json:"virtual_tokens"`
	MCTargetSats  string `json:"mc_target_sats"`
	Y0            string `json:"y0"`
	X0            string `json:"x0"`
	K             string `json:"k"`
	CreatedAt     int64  `json:"created_at"`
}

func toCurveResponse(c *domain.CurveRecord) curveResponse {
	return curveResponse{
		CurveID:       c.CurveID,
		TotalSupply:   c.TotalSupply,
		SellAmount:    c.SellAmount,
		VirtualTokens: c.VirtualTokens,
		MCTargetSats:  c.MCTargetSats,
		Y0:            c.Y0,
		X0:            c.X0,
		K:             c.K,
		CreatedAt:     c.CreatedAt,
	}
}

// handleCreateCurve validates the config through the engine, derives the
// deterministic curve ID, and stores the record.
func (s *Server) handleCreateCurve(w http.ResponseWriter, r *http.Request) {
	var req createCurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, storage.ErrInvalidInput)
		return
	}

	cfg, err := parseConfig(req)
	if err != nil {
		writeError(w, err)
		return
	}

	eng, err := curve.New(cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	record := &domain.CurveRecord{
		CurveID:       idhash.ComputeCurveID(req.TotalSupply, req.SellAmount, req.VirtualTokens, req.MCTargetSats),
		TotalSupply:   req.TotalSupply,
		SellAmount:    req.SellAmount,
		VirtualTokens: req.VirtualTokens,
		MCTargetSats:  req.MCTargetSats,
		Y0:            curve.FormatAmount(eng.Y0()),
		X0:            curve.FormatAmount(eng.X0()),
		K:             curve.FormatAmount(eng.K()),
		CreatedAt:     s.now().UnixMilli(),
	}

	if err := s.curveStore.Insert(r.Context(), record); err != nil {
		writeError(w, err)
		return
	}

	observability.RecordCurveCreated()
	s.mu.Lock()
	s.curvesCreated++
	s.mu.Unlock()
	s.logger.Printf("curve created: %s", record.CurveID)
	writeJSON(w, http.StatusCreated, toCurveResponse(record))
}

func (s *Server) handleListCurves(w http.ResponseWriter, r *http.Request) {
	curves, err := s.curveStore.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]curveResponse, 0, len(curves))
	for _, c := range curves {
		resp = append(resp, toCurveResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	record, err := s.curveStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCurveResponse(record))
}

// snapshotResponse is the reserve state at a step.
type snapshotResponse struct {
	Step     string `json:"step"`
	X        string `json:"x"`
	Y        string `json:"y"`
	PriceNum string `json:"price_num"`
	PriceDen string `json:"price_den"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.loadEngine(w, r)
	if !ok {
		return
	}
	step, ok := s.queryAmount(w, r, "step")
	if !ok {
		return
	}

	snap, err := eng.Snapshot(step)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Step:     curve.FormatAmount(&snap.Step),
		X:        curve.FormatAmount(&snap.X),
		Y:        curve.FormatAmount(&snap.Y),
		PriceNum: curve.FormatAmount(snap.PriceNum()),
		PriceDen: curve.FormatAmount(snap.PriceDen()),
	})
}

// quoteResponse is a forward fill evaluation.
type quoteResponse struct {
	Step     string `json:"step"`
	QuoteIn  string `json:"quote_in"`
	AssetOut string `json:"asset_out"`
	NewStep  string `json:"new_step"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.loadEngine(w, r)
	if !ok {
		return
	}
	step, ok := s.queryAmount(w, r, "step")
	if !ok {
		return
	}
	quoteIn, ok := s.queryAmount(w, r, "quote_in")
	if !ok {
		return
	}

	newStep, assetOut, err := eng.Mint(step, quoteIn)
	if err != nil {
		observability.RecordQuoteOperation("quote", errorKind(err))
		writeError(w, err)
		return
	}
	observability.RecordQuoteOperation("quote", "")

	writeJSON(w, http.StatusOK, quoteResponse{
		Step:     curve.FormatAmount(step),
		QuoteIn:  curve.FormatAmount(quoteIn),
		AssetOut: curve.FormatAmount(assetOut),
		NewStep:  curve.FormatAmount(newStep),
	})
}

// inverseResponse is the minimal feasible quote for a desired output.
type inverseResponse struct {
	Step     string `json:"step"`
	AssetOut string `json:"asset_out"`
	QuoteIn  string `json:"quote_in"`
}

func (s *Server) handleInverse(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.loadEngine(w, r)
	if !ok {
		return
	}
	step, ok := s.queryAmount(w, r, "step")
	if !ok {
		return
	}
	assetOut, ok := s.queryAmount(w, r, "asset_out")
	if !ok {
		return
	}

	quoteIn, err := eng.QuoteInGivenAssetOut(step, assetOut)
	if err != nil {
		observability.RecordQuoteOperation("inverse", errorKind(err))
		writeError(w, err)
		return
	}
	observability.RecordQuoteOperation("inverse", "")

	writeJSON(w, http.StatusOK, inverseResponse{
		Step:     curve.FormatAmount(step),
		AssetOut: curve.FormatAmount(assetOut),
		QuoteIn:  curve.FormatAmount(quoteIn),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.loadEngine(w, r)
	if !ok {
		return
	}
	step, ok := s.queryAmount(w, r, "step")
	if !ok {
		return
	}

	a, err := analytics.ComputeStepAnalytics(eng, step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// scheduleRequest selects a predefined schedule by ID or spells out a
// custom one.
type scheduleRequest struct {
	ScheduleID  string `json:"schedule_id"`
	NumMints    int    `json:"num_mints,omitempty"`
	BaseQuoteIn string `json:"base_quote_in,omitempty"`
	GrowthNum   int64  `json:"growth_num,omitempty"`
	GrowthDen   int64  `json:"growth_den,omitempty"`
}

func (r scheduleRequest) toConfig() domain.ScheduleConfig {
	if r.NumMints == 0 && r.BaseQuoteIn == "" {
		if cfg, ok := domain.PredefinedSchedule(r.ScheduleID); ok {
			return cfg
		}
	}
	return domain.ScheduleConfig{
		ScheduleID:  r.ScheduleID,
		NumMints:    r.NumMints,
		BaseQuoteIn: r.BaseQuoteIn,
		GrowthNum:   r.GrowthNum,
		GrowthDen:   r.GrowthDen,
	}
}

// runResponse mirrors a stored simulation run header.
type runResponse struct {
	RunID         string `json:"run_id"`
	CurveID       string `json:"curve_id"`
	ScheduleID    string `json:"schedule_id"`
	NumMints      int    `json:"num_mints"`
	FinalStep     string `json:"final_step"`
	TotalQuoteIn  string `json:"total_quote_in"`
	TotalAssetOut string `json:"total_asset_out"`
	CreatedAt     int64  `json:"created_at"`
}

// handleListRuns lists all runs executed against a curve.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	curveID := r.PathValue("id")
	if _, err := s.curveStore.GetByID(r.Context(), curveID); err != nil {
		writeError(w, err)
		return
	}

	runs, err := s.runStore.GetByCurveID(r.Context(), curveID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, runResponse{
			RunID:         run.RunID,
			CurveID:       run.CurveID,
			ScheduleID:    run.ScheduleID,
			NumMints:      run.NumMints,
			FinalStep:     run.FinalStep,
			TotalQuoteIn:  run.TotalQuoteIn,
			TotalAssetOut: run.TotalAssetOut,
			CreatedAt:     run.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSimulate runs a schedule and replies with the run summary.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, storage.ErrInvalidInput)
		return
	}

	summary, err := s.runSchedule(r, r.PathValue("id"), req.toConfig(), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// runSchedule executes a schedule against a curve and builds its summary.
func (s *Server) runSchedule(r *http.Request, curveID string, sched domain.ScheduleConfig, onFill func(*domain.MintFill)) (*analytics.RunSummary, error) {
	runner := simulation.NewRunner(simulation.RunnerOptions{
		CurveStore: s.curveStore,
		RunStore:   s.runStore,
		FillStore:  s.fillStore,
		PointStore: s.pointStore,
		OnFill:     onFill,
		Now:        s.now,
	})

	start := time.Now()
	run, err := runner.Run(r.Context(), curveID, sched)
	if err != nil {
		observability.RecordSimulationRun(sched.ScheduleID, "error", time.Since(start).Seconds(), 0)
		return nil, err
	}
	observability.RecordSimulationRun(sched.ScheduleID, "success", time.Since(start).Seconds(), run.NumMints)
	s.mu.Lock()
	s.simulationRuns++
	s.mu.Unlock()

	record, err := s.curveStore.GetByID(r.Context(), curveID)
	if err != nil {
		return nil, err
	}
	eng, err := simulation.EngineFromRecord(record)
	if err != nil {
		return nil, err
	}
	fills, err := s.fillStore.GetByRunID(r.Context(), run.RunID)
	if err != nil {
		return nil, err
	}

	summary, err := analytics.ComputeRunSummary(eng, run, fills)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("simulation run %s: schedule=%s fills=%d final_step=%s",
		run.RunID, sched.ScheduleID, run.NumMints, run.FinalStep)
	return summary, nil
}

// pointResponse mirrors a stored curve point.
type pointResponse struct {
	Seq             int    `json:"seq"`
	Step            string `json:"step"`
	X               string `json:"x"`
	Y               string `json:"y"`
	MCSats          string `json:"mc_sats"`
	CumulativeQuote string `json:"cumulative_quote"`
	ProgressPct     string `json:"progress_pct"`
}

// handleListPoints lists the analytics points of a run, optionally limited
// to an inclusive seq range.
func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if _, err := s.runStore.GetByID(r.Context(), runID); err != nil {
		writeError(w, err)
		return
	}

	var (
		points []*domain.CurvePoint
		err    error
	)
	q := r.URL.Query()
	if q.Has("start") || q.Has("end") {
		start, sErr := strconv.Atoi(q.Get("start"))
		end, eErr := strconv.Atoi(q.Get("end"))
		if sErr != nil || eErr != nil {
			writeError(w, storage.ErrInvalidInput)
			return
		}
		points, err = s.pointStore.GetBySeqRange(r.Context(), runID, start, end)
	} else {
		points, err = s.pointStore.GetByRunID(r.Context(), runID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]pointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, pointResponse{
			Seq:             p.Seq,
			Step:            p.Step.String(),
			X:               p.X.String(),
			Y:               p.Y.String(),
			MCSats:          p.MCSats.String(),
			CumulativeQuote: p.CumulativeQuote.String(),
			ProgressPct:     p.ProgressPct.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadEngine loads the curve record from the path ID and rebuilds the
// engine. Writes the error reply itself on failure.
func (s *Server) loadEngine(w http.ResponseWriter, r *http.Request) (*curve.Curve, bool) {
	record, err := s.curveStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	eng, err := simulation.EngineFromRecord(record)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return eng, true
}

// queryAmount parses a decimal-string query parameter. Writes the error
// reply itself on failure.
func (s *Server) queryAmount(w http.ResponseWriter, r *http.Request, name string) (*uint256.Int, bool) {
	v, err := curve.ParseAmount(r.URL.Query().Get(name))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return v, true
}

func parseConfig(req createCurveRequest) (curve.Config, error) {
	totalSupply, err := curve.ParseAmount(req.TotalSupply)
	if err != nil {
		return curve.Config{}, err
	}
	sellAmount, err := curve.ParseAmount(req.SellAmount)
	if err != nil {
		return curve.Config{}, err
	}
	virtualTokens, err := curve.ParseAmount(req.VirtualTokens)
	if err != nil {
		return curve.Config{}, err
	}
	mcTargetSats, err := curve.ParseAmount(req.MCTargetSats)
	if err != nil {
		return curve.Config{}, err
	}
	return curve.Config{
		TotalSupply:   totalSupply,
		SellAmount:    sellAmount,
		VirtualTokens: virtualTokens,
		MCTargetSats:  mcTargetSats,
	}, nil
}
