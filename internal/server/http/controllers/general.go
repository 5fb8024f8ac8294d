package controllers

import (
	"net/http"

	"github.com/rzbill/msgquery/internal/query"
	"github.com/rzbill/msgquery/internal/runtime"
)

// GeneralController handles health and stats endpoints.
type GeneralController struct {
	rt   *runtime.Runtime
	disp *query.Dispatcher
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, disp *query.Dispatcher) *GeneralController {
	return &GeneralController{rt: rt, disp: disp}
}

// RegisterRoutes registers general routes with the given mux.
//
// - Health checks (/v1/healthz)
// - Query executor and storage stats (/v1/query/stats)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/query/stats", c.handleStats)
}

// handleHealth returns 200 OK with {"status": "ok"} if healthy, 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// statsResp is the body of /v1/query/stats.
type statsResp struct {
	Engine   string                  `json:"engine"`
	Executor query.ExecutorStats     `json:"executor"`
	Query    query.MetricsSnapshot   `json:"query"`
	Storage  runtime.StorageSnapshot `json:"storage"`
}

// handleStats reports pool occupancy, queue depth and traffic counters.
func (c *GeneralController) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, statsResp{
		Engine:   c.rt.Engine(),
		Executor: c.disp.Executor().Stats(),
		Query:    c.disp.Metrics().Snapshot(),
		Storage:  c.rt.StorageMetrics().Snapshot(),
	})
}
