package service

import "fmt"

const BacklogUpToDate = "Up to Date"

// BacklogMonitor turns the queue depth into the staleness status shown to
// the operator. It reports only; there is no backpressure.
type BacklogMonitor struct {
	IgnoreBacklog int64
	Metrics       *Metrics

	status string
}

func (b *BacklogMonitor) Update(depth int) string {
	b.Metrics.QueueDepth.Set(float64(depth))

	if int64(depth) > b.IgnoreBacklog {
		b.status = fmt.Sprintf("%d Updates Queued", depth)
	} else {
		b.status = BacklogUpToDate
	}

	return b.status
}

func (b *BacklogMonitor) Status() string {
	if b.status == "" {
		return BacklogUpToDate
	}

	return b.status
}
