package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fold-data/running.report/internal/db"
	"github.com/fold-data/running.report/internal/fold"
	"github.com/fold-data/running.report/internal/httputil"
	"github.com/fold-data/running.report/internal/reduce"
	"github.com/fold-data/running.report/internal/report"
	"github.com/fold-data/running.report/internal/version"
)

// Selector values accepted by the select clause.
const (
	SelectAcc   = "acc"
	SelectValue = "value"
	SelectIndex = "index"
)

// runRequest is the POST /api/runs payload.
type runRequest struct {
	Values  []float64 `json:"values"`
	Reducer string    `json:"reducer,omitempty"`
	Seed    *float64  `json:"seed,omitempty"`
	Select  string    `json:"select,omitempty"`
	Source  string    `json:"source,omitempty"`
}

// runResponse augments a stored run with the selected output series.
type runResponse struct {
	db.Run
	Select string    `json:"select,omitempty"`
	Series []float64 `json:"series"`
}

// selectSeries applies the result-selection clause: only the selected
// component of each step is retained in the output.
func selectSeries(points []reduce.Point, selector string) ([]float64, error) {
	var project func(reduce.Point) float64
	switch selector {
	case "", SelectAcc:
		project = func(p reduce.Point) float64 { return p.Acc }
	case SelectValue:
		project = func(p reduce.Point) float64 { return p.Input }
	case SelectIndex:
		project = func(p reduce.Point) float64 { return float64(p.Index) }
	default:
		return nil, fmt.Errorf("unknown select %q (want acc, value or index)", selector)
	}
	return fold.Collect(fold.Select(fold.Values(points), project)), nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.String()})
}

func (s *Server) listReducers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string][]string{"reducers": reduce.Names()})
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if max := s.cfg.GetMaxValues(); len(req.Values) > max {
		httputil.BadRequest(w, fmt.Sprintf("too many values: %d (max %d)", len(req.Values), max))
		return
	}
	if req.Reducer == "" {
		req.Reducer = s.cfg.GetDefaultReducer()
	}

	if _, err := selectSeries(nil, req.Select); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	out, err := reduce.Apply(req.Reducer, fold.Values(req.Values), req.Seed)
	if err != nil {
		switch {
		case errors.Is(err, reduce.ErrNameNotFound):
			httputil.NotFound(w, err.Error())
		case errors.Is(err, reduce.ErrSeedNotSupported):
			httputil.BadRequest(w, err.Error())
		default:
			httputil.InternalServerError(w, err.Error())
		}
		return
	}

	run, err := s.db.CreateRun(req.Reducer, out, req.Source)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to store run: %v", err))
		return
	}

	selected, err := selectSeries(run.Points, req.Select)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, runResponse{Run: run, Select: req.Select, Series: selected})
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (db.Run, bool) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrRunNotFound) {
			httputil.NotFound(w, err.Error())
		} else {
			httputil.InternalServerError(w, err.Error())
		}
		return db.Run{}, false
	}
	return run, true
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			httputil.BadRequest(w, fmt.Sprintf("invalid limit %q", q))
			return
		}
		limit = v
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, map[string][]db.Run{"runs": runs})
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	selected, err := selectSeries(run.Points, r.URL.Query().Get("select"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, runResponse{Run: run, Select: r.URL.Query().Get("select"), Series: selected})
}

// showLast returns the final accumulator value. An empty unseeded run
// has no final value: the iteration-exhausted condition maps to 409.
func (s *Server) showLast(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	if run.Final == nil {
		httputil.Conflict(w, fold.ErrExhausted.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"run_id": run.ID,
		"last":   *run.Final,
		"seeded": run.Seeded,
	})
}

func (s *Server) showSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	inputs := make([]float64, len(run.Points))
	accs := make([]float64, len(run.Points))
	for i, p := range run.Points {
		inputs[i] = p.Input
		accs[i] = p.Acc
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"run_id":  run.ID,
		"reducer": run.Reducer,
		"inputs":  reduce.Summarize(inputs),
		"acc":     reduce.Summarize(accs),
	})
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, run); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
	}
}
