package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	resumeListingsTotal      atomic.Uint64
	resumeParseFailuresTotal atomic.Uint64
	wipeStartedTotal         atomic.Uint64
	wipeCompletedTotal       atomic.Uint64
	wipeFailedTotal          atomic.Uint64
	filesDeletedTotal        atomic.Uint64
	viewsMounted             atomic.Int64

	wipeDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000})
)

// IncResumeListings counts completed resume listings.
func IncResumeListings() {
	resumeListingsTotal.Add(1)
}

// IncResumeParseFailures counts stored records that could not be parsed.
func IncResumeParseFailures(n int) {
	if n > 0 {
		resumeParseFailuresTotal.Add(uint64(n))
	}
}

// IncWipeStarted increments the started counter.
func IncWipeStarted() {
	wipeStartedTotal.Add(1)
}

// IncWipeCompleted increments the completed counter.
func IncWipeCompleted() {
	wipeCompletedTotal.Add(1)
}

// IncWipeFailed increments the failed counter.
func IncWipeFailed() {
	wipeFailedTotal.Add(1)
}

// IncFilesDeleted counts individual file deletions.
func IncFilesDeleted() {
	filesDeletedTotal.Add(1)
}

// ViewMounted adjusts the mounted views gauge by delta.
func ViewMounted(delta int64) {
	viewsMounted.Add(delta)
}

// ObserveWipeDurationMs records a wipe duration in milliseconds.
func ObserveWipeDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	wipeDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_listings_total", "Total resume listings served", resumeListingsTotal.Load())
	writeCounter(&buf, "resume_parse_failures_total", "Stored resume records skipped as malformed", resumeParseFailuresTotal.Load())
	writeCounter(&buf, "wipe_started_total", "Total wipes started", wipeStartedTotal.Load())
	writeCounter(&buf, "wipe_completed_total", "Total wipes completed", wipeCompletedTotal.Load())
	writeCounter(&buf, "wipe_failed_total", "Total wipes failed", wipeFailedTotal.Load())
	writeCounter(&buf, "files_deleted_total", "Total files deleted by wipes", filesDeletedTotal.Load())
	writeGauge(&buf, "views_mounted", "Currently mounted dashboard views", viewsMounted.Load())
	writeHistogram(&buf, "wipe_duration_ms", "Wipe duration in milliseconds", wipeDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
