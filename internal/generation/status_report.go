package generation

import (
	"time"

	"llmcord/pkg/types"
)

// Status builds a status report for /status.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		State:          "ready",
		QueueLen:       m.queue.Len(),
		CurrentJob:     m.worker.Current(),
		PendingCancels: m.cancels.Len(),
		JobsTotal:      m.worker.snapshotTotals(),
		LlamaBuilt:     llamaBuilt,
		ServerTimeUnix: now.Unix(),
	}
	if resp.CurrentJob != "" {
		resp.Inflight = 1
	}
	if !m.startTime.IsZero() {
		resp.UptimeSeconds = int64(now.Sub(m.startTime).Seconds())
	}
	if !m.Ready() {
		resp.State = "closed"
	}
	return resp
}
