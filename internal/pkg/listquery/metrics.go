package listquery

import "time"

// Metrics receives list query events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordFetch(resource string, duration time.Duration, err error)
	RecordCacheHit(resource string)
	RecordSharedFetch(resource string)
	RecordStaleDrop(resource string)
}

type NoopMetrics struct{}

func (NoopMetrics) RecordFetch(string, time.Duration, error) {}
func (NoopMetrics) RecordCacheHit(string)                     {}
func (NoopMetrics) RecordSharedFetch(string)                  {}
func (NoopMetrics) RecordStaleDrop(string)                    {}
