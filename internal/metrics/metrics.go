package metrics

import (
	"sync"
	"time"
)

// SourceStats is the outcome of the latest delivery of one source.
type SourceStats struct {
	Articles int       `json:"articles"`
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	At       time.Time `json:"at"`
}

type Metrics struct {
	mu sync.RWMutex

	// Counters
	Runs               int64
	ArticlesProcessed  int64
	SummariesOK        int64
	SummariesFailed    int64
	BatchesSent        int64
	DeliveryFailures   int64
	SourcesWithoutNews int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastRunID     string
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool

	sources map[string]SourceStats
}

var Global = &Metrics{IsHealthy: true}

// RecordSummary counts one summarized article.
func (m *Metrics) RecordSummary(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesProcessed++
	if ok {
		m.SummariesOK++
		return
	}
	m.SummariesFailed++
}

// RecordDelivery stores the outcome of one source's delivery. A source with
// no articles counts as a source without news.
func (m *Metrics) RecordDelivery(source string, articles, sent, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if articles == 0 {
		m.SourcesWithoutNews++
	}
	m.BatchesSent += int64(sent)
	m.DeliveryFailures += int64(failed)

	if m.sources == nil {
		m.sources = make(map[string]SourceStats)
	}
	m.sources[source] = SourceStats{Articles: articles, Sent: sent, Failed: failed, At: time.Now()}
}

// Source returns the latest delivery outcome of source.
func (m *Metrics) Source(name string) (SourceStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sources[name]
	return s, ok
}

func (m *Metrics) RecordProcessingTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessingCount++
	m.LastProcessingTime = d
	m.TotalProcessingTime += d
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
}

// SetLastRun marks a finished run and clears the unhealthy state.
func (m *Metrics) SetLastRun(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
	m.LastRunTime = time.Now()
	m.LastRunID = runID
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sources := make(map[string]SourceStats, len(m.sources))
	for name, s := range m.sources {
		sources[name] = s
	}

	return map[string]interface{}{
		"runs":                       m.Runs,
		"articles_processed":         m.ArticlesProcessed,
		"summaries_ok":               m.SummariesOK,
		"summaries_failed":           m.SummariesFailed,
		"batches_sent":               m.BatchesSent,
		"delivery_failures":          m.DeliveryFailures,
		"sources_without_news":       m.SourcesWithoutNews,
		"sources":                    sources,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_run_id":                m.LastRunID,
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
