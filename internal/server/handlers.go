package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/huangsam/trendgate/core"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/input"
	"github.com/huangsam/trendgate/schema"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.build)
}

// handleAnalyze runs the pipeline on a JSON array of product rows. The query
// parameters now, lead_months and limit override the server configuration.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		_ = render.Render(w, r, invalidRequest(err))
		return
	}

	rows, err := input.Decode(r.Body, schema.JSONInput)
	if err != nil {
		_ = render.Render(w, r, invalidRequest(fmt.Errorf("decode rows: %w", err)))
		return
	}
	if len(rows) == 0 {
		_ = render.Render(w, r, invalidRequest(errors.New("no product rows found")))
		return
	}

	output := core.AnalyzeRows(core.WithSuppressHeader(r.Context()), cfg, s.mgr, rows)
	if cfg.ResultLimit > 0 && len(output.Results) > cfg.ResultLimit {
		output.Results = output.Results[:cfg.ResultLimit]
	}
	render.JSON(w, r, output)
}

// handleCycle detects the consensus cycle of a keyword set.
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	var set schema.KeywordSet
	if err := render.DecodeJSON(r.Body, &set); err != nil {
		_ = render.Render(w, r, invalidRequest(fmt.Errorf("decode keywords: %w", err)))
		return
	}
	if len(set.Series) == 0 {
		_ = render.Render(w, r, invalidRequest(errors.New("series is required")))
		return
	}
	if err := input.ValidateKeywords(set); err != nil {
		_ = render.Render(w, r, invalidRequest(err))
		return
	}

	report, err := core.DetectCycle(set, s.baseCfg.Tuning)
	if err != nil {
		_ = render.Render(w, r, unprocessable(err))
		return
	}
	render.JSON(w, r, report)
}

// requestConfig copies the base configuration and applies query overrides.
func (s *Server) requestConfig(r *http.Request) (*contract.Config, error) {
	cfg := s.baseCfg.Clone()
	q := r.URL.Query()

	if v := q.Get("now"); v != "" {
		now, err := contract.ParseNowMonth(v, time.Now())
		if err != nil {
			return nil, err
		}
		cfg.Now = now
	}
	if v := q.Get("lead_months"); v != "" {
		lead, err := strconv.Atoi(v)
		if err != nil || lead < 0 || lead > contract.MaxLeadMonths {
			return nil, fmt.Errorf("lead_months must be between 0 and %d (received %q)", contract.MaxLeadMonths, v)
		}
		cfg.LeadMonths = lead
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d (received %q)", contract.MaxResultLimit, v)
		}
		cfg.ResultLimit = limit
	}
	return cfg, nil
}
