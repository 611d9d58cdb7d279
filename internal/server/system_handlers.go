package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/sectorflow/internal/modules/dashboard"
	"github.com/aristath/sectorflow/internal/render"
)

// SystemHandlers serves process and render-cycle status
type SystemHandlers struct {
	log          zerolog.Logger
	dashboard    *dashboard.Service
	cacheEnabled bool
	startedAt    time.Time

	// swappable for tests
	cpuPercent func() (float64, error)
	memPercent func() (float64, error)
}

// SystemStatusResponse represents the system status payload
type SystemStatusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	CPUPercent    float64                 `json:"cpu_percent"`
	MemoryPercent float64                 `json:"memory_percent"`
	Goroutines    int                     `json:"goroutines"`
	CacheEnabled  bool                    `json:"cache_enabled"`
	LastSnapshot  *dashboard.SnapshotMeta `json:"last_snapshot"`
	SnapshotAge   *float64                `json:"snapshot_age_seconds"`
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, service *dashboard.Service, cacheEnabled bool) *SystemHandlers {
	return &SystemHandlers{
		log:          log.With().Str("handler", "system").Logger(),
		dashboard:    service,
		cacheEnabled: cacheEnabled,
		startedAt:    time.Now(),
		cpuPercent:   sampleCPU,
		memPercent:   sampleMemory,
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	render.Write(w, r, http.StatusOK, h.Snapshot(), h.log)
}

// Snapshot gathers the current status
func (h *SystemHandlers) Snapshot() SystemStatusResponse {
	cpuPct, err := h.cpuPercent()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}
	memPct, err := h.memPercent()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	resp := SystemStatusResponse{
		Status:        "waiting_for_first_cycle",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Goroutines:    runtime.NumGoroutine(),
		CacheEnabled:  h.cacheEnabled,
	}

	if h.dashboard != nil {
		if snap := h.dashboard.Current(); snap.Built() {
			meta := snap.Meta()
			age := time.Since(snap.BuiltAt).Seconds()
			resp.Status = "ok"
			resp.LastSnapshot = &meta
			resp.SnapshotAge = &age
		}
	}

	return resp
}

// sampleCPU averages usage across all CPUs over a short window
func sampleCPU() (float64, error) {
	pct, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, nil
	}
	return pct[0], nil
}

func sampleMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
