// internal/api/handler/api/charts.go
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/api/job"
	"github.com/jtrask/folio/internal/api/response"
	"github.com/jtrask/folio/internal/chart"
	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/ledger"
	"github.com/jtrask/folio/internal/metrics"
	"github.com/jtrask/folio/internal/pricedata"
	"github.com/jtrask/folio/internal/replay"
)

const chartTimeout = 2 * time.Minute

// ChartRequest is the request body for starting a chart render.
type ChartRequest struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ChartHandler renders portfolio charts as async jobs.
type ChartHandler struct {
	jobStore *job.Store
	ledger   *ledger.Store
	prices   pricedata.Repository
	resolver *pricedata.Resolver
	opts     chart.Options
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewChartHandler creates a chart handler.
func NewChartHandler(
	jobStore *job.Store,
	store *ledger.Store,
	prices pricedata.Repository,
	resolver *pricedata.Resolver,
	opts chart.Options,
	reg *metrics.Registry,
	logger *zap.Logger,
) *ChartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartHandler{
		jobStore: jobStore,
		ledger:   store,
		prices:   prices,
		resolver: resolver,
		opts:     opts,
		metrics:  reg,
		logger:   logger,
	}
}

// Create starts a new chart render job.
func (h *ChartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if r.Body != nil {
		// Body is optional; defaults apply when absent or empty
		json.NewDecoder(r.Body).Decode(&req)
	}

	opts := h.opts
	if req.Width > 0 {
		opts.Width = req.Width
	}
	if req.Height > 0 {
		opts.Height = req.Height
	}
	if req.Title != "" {
		opts.Title = req.Title
	}

	j := h.jobStore.Create("chart")
	jobID := j.ID
	status := j.Status

	go h.render(jobID, opts)

	if h.metrics != nil {
		h.metrics.SetJobsActive("chart", h.jobStore.Active())
	}
	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// render samples the ledger, draws the PNG, and updates job status.
func (h *ChartHandler) render(jobID string, opts chart.Options) {
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), chartTimeout)
	defer cancel()

	png, sampleCount, err := h.draw(ctx, opts)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordChartRender("failed")
		}
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.WrapError(core.ErrChartFailed, err)
		})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordChartRender("ok")
		h.metrics.SetJobsActive("chart", h.jobStore.Active())
	}
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = map[string]any{
			"image_base64": base64.StdEncoding.EncodeToString(png),
			"samples":      sampleCount,
		}
	})
}

func (h *ChartHandler) draw(ctx context.Context, opts chart.Options) ([]byte, int, error) {
	txs, err := h.ledger.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	repo := pricedata.NewCache(h.prices)
	samples, _, err := replay.NewSampler(repo, h.resolver, h.logger).Run(ctx, txs)
	if err != nil {
		return nil, 0, err
	}

	png, err := chart.Render(samples, opts)
	if err != nil {
		return nil, 0, err
	}
	return png, len(samples), nil
}

// GetStatus returns the status of a job by ID.
func (h *ChartHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobStore.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":   j.ID,
		"status":   j.Status,
		"progress": j.Progress,
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

	response.JSON(w, http.StatusOK, resp)
}
