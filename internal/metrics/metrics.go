package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Workflow counts fulfillment events for the /metrics endpoint.
type Workflow struct {
	OrdersCreated       Counter
	SlotConflicts       Counter
	Transitions         Counter
	TransitionConflicts Counter
	ReportsAttached     Counter
	BlobCleanups        Counter
	NotificationsSent   Counter
	NotificationsFailed Counter
	startedAt           time.Time
}

func NewWorkflow() *Workflow {
	return &Workflow{startedAt: time.Now()}
}

func (w *Workflow) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"orders_created":       w.OrdersCreated.Load(),
		"slot_conflicts":       w.SlotConflicts.Load(),
		"transitions":          w.Transitions.Load(),
		"transition_conflicts": w.TransitionConflicts.Load(),
		"reports_attached":     w.ReportsAttached.Load(),
		"blob_cleanups":        w.BlobCleanups.Load(),
		"notifications_sent":   w.NotificationsSent.Load(),
		"notifications_failed": w.NotificationsFailed.Load(),
		"uptime_seconds":       uint64(time.Since(w.startedAt).Seconds()),
	}
}

// Handler serves the snapshot as JSON.
func (w *Workflow) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(w.Snapshot())
	})
}
