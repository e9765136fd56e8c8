// internal/api/handler/api/search.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/api/job"
	"github.com/mfaber/hindsight/internal/api/response"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/metrics"
	"github.com/mfaber/hindsight/internal/montecarlo"
	"github.com/mfaber/hindsight/internal/report"
	"github.com/mfaber/hindsight/internal/storage/archive"
	"github.com/mfaber/hindsight/internal/strategy"
)

const searchTimeout = 30 * time.Minute

// SearchRequest is the request body for starting a Monte Carlo parameter
// search. Omitted ranges fall back to the package defaults.
type SearchRequest struct {
	DataKey     string            `json:"data_key"`
	Strategy    strategy.Config   `json:"strategy"`
	Simulations int               `json:"simulations"`
	Priority    string            `json:"priority"`
	MARange     *montecarlo.Range `json:"ma_range,omitempty"`
	StochRange  *montecarlo.Range `json:"stoch_range,omitempty"`
	Seed        int64             `json:"seed,omitempty"`
	Workers     int               `json:"workers,omitempty"`
}

func (r SearchRequest) config() montecarlo.Config {
	cfg := montecarlo.Config{
		Strategy:    r.Strategy,
		Simulations: r.Simulations,
		Priority:    montecarlo.Priority(r.Priority),
		Seed:        r.Seed,
		Workers:     r.Workers,
	}
	if r.MARange != nil {
		cfg.MARange = *r.MARange
	}
	if r.StochRange != nil {
		cfg.StochRange = *r.StochRange
	}
	return cfg
}

// SearchHandler runs Monte Carlo parameter searches as async jobs.
type SearchHandler struct {
	jobs    *job.Store
	store   archive.Storage
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(jobs *job.Store, store archive.Storage, reg *metrics.Registry, log *zap.Logger) *SearchHandler {
	return &SearchHandler{jobs: jobs, store: store, metrics: reg, log: log}
}

// Create starts a new search job and responds 202 with its ID.
func (h *SearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidConfig, err))
		return
	}
	if req.DataKey == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidConfig, errors.New("data_key is required")))
		return
	}
	// The sampled periods overwrite whatever the base config carries, so
	// only the variant tag is checked up front; montecarlo.Search validates
	// the rest.
	switch req.Strategy.Variant {
	case strategy.VariantTwoMA, strategy.VariantThreeMA, strategy.VariantStochastic:
	default:
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown strategy variant %q", req.Strategy.Variant)))
		return
	}

	j := h.jobs.Create("search")
	h.metrics.SetJobsActive("search", h.jobs.Active("search"))

	go h.run(j.ID, req)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

func (h *SearchHandler) run(jobID string, req SearchRequest) {
	h.jobs.Update(jobID, func(j *job.Job) { j.Status = job.StatusRunning })

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	payload, err := h.execute(ctx, jobID, req)

	if err != nil {
		h.log.Warn("search job failed",
			zap.String("job_id", jobID),
			zap.String("data_key", req.DataKey),
			zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
	} else {
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusComplete
			j.Result = payload
		})
	}
	h.metrics.SetJobsActive("search", h.jobs.Active("search"))
}

func (h *SearchHandler) execute(ctx context.Context, jobID string, req SearchRequest) (map[string]any, error) {
	bars, err := loadBars(ctx, h.store, req.DataKey)
	if err != nil {
		return nil, err
	}

	cfg := req.config()
	res, err := montecarlo.Search(ctx, bars, cfg, h.log)
	if err != nil {
		return nil, err
	}

	h.metrics.RecordSearch(string(cfg.Strategy.Variant),
		len(res.Runs), res.Failures(), res.Overruns())

	payload := map[string]any{
		"runs":        res.Runs,
		"best_index":  res.BestIndex,
		"best_params": res.Runs[res.BestIndex].Params,
		"best_ratios": ratiosPayload(res.Best),
		"overruns":    res.Overruns(),
		"failures":    res.Failures(),
	}

	if req.Strategy.Plot {
		prefix := "runs/" + jobID
		if err := report.Archive(ctx, h.store, prefix, res.Best); err != nil {
			return nil, err
		}
		payload["artifacts"] = []string{prefix + "/series.csv", prefix + "/ratios.json"}
	}
	return payload, nil
}

// GetStatus returns the status of a search job.
func (h *SearchHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobs.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, jobPayload(j))
}
