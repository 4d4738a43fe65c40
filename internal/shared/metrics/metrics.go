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
	sessionsCreatedTotal     atomic.Uint64
	checklistGeneratedTotal  atomic.Uint64
	checklistFailedTotal     atomic.Uint64
	checklistFallbackTotal   atomic.Uint64
	interviewsStartedTotal   atomic.Uint64
	interviewsCompletedTotal atomic.Uint64

	llmDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncSessionsCreated increments the session counter.
func IncSessionsCreated() {
	sessionsCreatedTotal.Add(1)
}

// IncChecklistGenerated increments the successful-synthesis counter.
func IncChecklistGenerated() {
	checklistGeneratedTotal.Add(1)
}

// IncChecklistFailed increments the failed-synthesis counter.
func IncChecklistFailed() {
	checklistFailedTotal.Add(1)
}

// IncChecklistFallback increments the fallback-document counter.
func IncChecklistFallback() {
	checklistFallbackTotal.Add(1)
}

// IncInterviewsStarted increments the started-assessments counter.
func IncInterviewsStarted() {
	interviewsStartedTotal.Add(1)
}

// IncInterviewsCompleted increments the completed-assessments counter.
func IncInterviewsCompleted() {
	interviewsCompletedTotal.Add(1)
}

// ObserveLLMDurationMs records one completion call duration in milliseconds.
func ObserveLLMDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmDuration.Observe(value)
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
	writeCounter(&buf, "sessions_created_total", "Total sessions created", sessionsCreatedTotal.Load())
	writeCounter(&buf, "checklist_generated_total", "Total checklists synthesized", checklistGeneratedTotal.Load())
	writeCounter(&buf, "checklist_failed_total", "Total checklist synthesis failures", checklistFailedTotal.Load())
	writeCounter(&buf, "checklist_fallback_total", "Total fallback checklists served", checklistFallbackTotal.Load())
	writeCounter(&buf, "interviews_started_total", "Total assessments started", interviewsStartedTotal.Load())
	writeCounter(&buf, "interviews_completed_total", "Total assessments completed", interviewsCompletedTotal.Load())
	writeHistogram(&buf, "llm_request_duration_ms", "Completion request duration in milliseconds", llmDuration.Snapshot())
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
