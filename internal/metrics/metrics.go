// Package metrics keeps lightweight process counters for the share gate.
// Counters are monotonic since process start and reset on restart.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	startedAt = time.Now()

	shareViews   atomic.Int64
	shareIssued  atomic.Int64
	rendersPDF   atomic.Int64
	rendersPNG   atomic.Int64
	renderErrors atomic.Int64

	rejectMu sync.Mutex
	rejects  = map[string]int64{}
)

func ShareView() { shareViews.Add(1) }

func ShareIssued() { shareIssued.Add(1) }

func RenderPDF() { rendersPDF.Add(1) }

func RenderPNG() { rendersPNG.Add(1) }

func RenderError() { renderErrors.Add(1) }

// Reject counts a public-gate rejection by reason (malformed, bad_signature,
// expired, not_found, not_shareable).
func Reject(reason string) {
	rejectMu.Lock()
	rejects[reason]++
	rejectMu.Unlock()
}

// Snapshot returns the counters for the metrics endpoint.
func Snapshot() map[string]any {
	rejectMu.Lock()
	rejectCopy := make(map[string]int64, len(rejects))
	for k, v := range rejects {
		rejectCopy[k] = v
	}
	rejectMu.Unlock()

	return map[string]any{
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"share_views":    shareViews.Load(),
		"share_issued":   shareIssued.Load(),
		"renders_pdf":    rendersPDF.Load(),
		"renders_png":    rendersPNG.Load(),
		"render_errors":  renderErrors.Load(),
		"gate_rejects":   rejectCopy,
	}
}
