// internal/api/handler/api/backtest.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/api/job"
	"github.com/mfaber/hindsight/internal/api/response"
	"github.com/mfaber/hindsight/internal/backtest"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/marketdata"
	"github.com/mfaber/hindsight/internal/metrics"
	"github.com/mfaber/hindsight/internal/report"
	"github.com/mfaber/hindsight/internal/storage/archive"
	"github.com/mfaber/hindsight/internal/strategy"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a backtest. DataKey names
// an archived CSV of bars.
type BacktestRequest struct {
	DataKey  string          `json:"data_key"`
	Strategy strategy.Config `json:"strategy"`
}

// BacktestHandler runs single backtests as async jobs.
type BacktestHandler struct {
	jobs    *job.Store
	store   archive.Storage
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(jobs *job.Store, store archive.Storage, reg *metrics.Registry, log *zap.Logger) *BacktestHandler {
	return &BacktestHandler{jobs: jobs, store: store, metrics: reg, log: log}
}

// Create starts a new backtest job and responds 202 with its ID.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidConfig, err))
		return
	}
	if req.DataKey == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidConfig, errors.New("data_key is required")))
		return
	}
	// Reject bad configs here so the caller gets a 400, not a failed job.
	if err := req.Strategy.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	j := h.jobs.Create("backtest")
	h.metrics.SetJobsActive("backtest", h.jobs.Active("backtest"))

	go h.run(j.ID, req)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// run executes the backtest pipeline and updates job state.
func (h *BacktestHandler) run(jobID string, req BacktestRequest) {
	h.jobs.Update(jobID, func(j *job.Job) { j.Status = job.StatusRunning })

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	start := time.Now()
	payload, err := h.execute(ctx, jobID, req)
	duration := time.Since(start).Seconds()

	if err != nil {
		h.metrics.RecordBacktest(string(req.Strategy.Variant), "error", duration)
		h.log.Warn("backtest job failed",
			zap.String("job_id", jobID),
			zap.String("data_key", req.DataKey),
			zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
	} else {
		h.metrics.RecordBacktest(string(req.Strategy.Variant), "ok", duration)
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusComplete
			j.Result = payload
		})
	}
	h.metrics.SetJobsActive("backtest", h.jobs.Active("backtest"))
}

func (h *BacktestHandler) execute(ctx context.Context, jobID string, req BacktestRequest) (map[string]any, error) {
	bars, err := loadBars(ctx, h.store, req.DataKey)
	if err != nil {
		return nil, err
	}

	res, err := backtest.Run(bars, req.Strategy)
	if err != nil && !errors.Is(err, core.ErrIndeterminate) {
		return nil, err
	}

	payload := map[string]any{
		"params": res.Config.Params(),
		"bars":   len(res.Bars),
		"ratios": ratiosPayload(res),
	}

	if req.Strategy.Plot {
		prefix := "runs/" + jobID
		if err := report.Archive(ctx, h.store, prefix, res); err != nil {
			return nil, err
		}
		payload["artifacts"] = []string{prefix + "/series.csv", prefix + "/ratios.json"}
	}
	return payload, nil
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobs.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, jobPayload(j))
}

func jobPayload(j *job.Job) map[string]any {
	resp := map[string]any{
		"job_id": j.ID,
		"type":   j.Type,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}
	return resp
}

// loadBars reads an archived CSV and parses it into bars.
func loadBars(ctx context.Context, store archive.Storage, key string) ([]core.Bar, error) {
	data, err := store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return marketdata.ParseCSV(bytes.NewReader(data))
}

// ratiosPayload renders the run ratios through the report encoder, which maps
// an undefined risk-adjusted return to null.
func ratiosPayload(res *backtest.Result) json.RawMessage {
	data, err := report.RatiosJSON(res)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(data)
}

func asCoreError(err error) *core.Error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return core.WrapError(core.ErrInternal, fmt.Errorf("%v", err))
}
