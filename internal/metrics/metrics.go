package metrics

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime time.Time

	predictionsTotal   atomic.Int64
	predictionsSuccess atomic.Int64
	predictionsFailed  atomic.Int64
	predictionsBlocked atomic.Int64

	recordsSaved   atomic.Int64
	recordsDeleted atomic.Int64
	recordsEvicted atomic.Int64

	storageReadFailures  atomic.Int64
	storageWriteFailures atomic.Int64

	conditionCalls map[string]*atomic.Int64
	conditionLock  sync.Mutex

	callDurations     []time.Duration
	callDurationsLock sync.Mutex
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

func New() *Metrics {
	return &Metrics{
		startTime:      time.Now(),
		callDurations:  make([]time.Duration, 0, 1000),
		conditionCalls: make(map[string]*atomic.Int64),
	}
}

// RecordPrediction tracks the outcome of one prediction submission.
func (m *Metrics) RecordPrediction(condition string, success bool) {
	m.predictionsTotal.Add(1)
	if success {
		m.predictionsSuccess.Add(1)
	} else {
		m.predictionsFailed.Add(1)
	}

	m.conditionLock.Lock()
	defer m.conditionLock.Unlock()
	if m.conditionCalls[condition] == nil {
		m.conditionCalls[condition] = &atomic.Int64{}
	}
	m.conditionCalls[condition].Add(1)
}

// RecordPredictionBlocked tracks submissions rejected by validation
// before any network call was made.
func (m *Metrics) RecordPredictionBlocked() {
	m.predictionsBlocked.Add(1)
}

func (m *Metrics) RecordSave() {
	m.recordsSaved.Add(1)
}

func (m *Metrics) RecordDelete() {
	m.recordsDeleted.Add(1)
}

func (m *Metrics) RecordEviction(n int64) {
	m.recordsEvicted.Add(n)
}

func (m *Metrics) RecordStorageFailure(write bool) {
	if write {
		m.storageWriteFailures.Add(1)
	} else {
		m.storageReadFailures.Add(1)
	}
}

func (m *Metrics) RecordCallDuration(d time.Duration) {
	m.callDurationsLock.Lock()
	defer m.callDurationsLock.Unlock()

	m.callDurations = append(m.callDurations, d)
	if len(m.callDurations) > 1000 {
		m.callDurations = m.callDurations[1:]
	}
}

type Snapshot struct {
	Uptime               time.Duration    `json:"uptime"`
	PredictionsTotal     int64            `json:"predictions_total"`
	PredictionsSuccess   int64            `json:"predictions_success"`
	PredictionsFailed    int64            `json:"predictions_failed"`
	PredictionsBlocked   int64            `json:"predictions_blocked"`
	RecordsSaved         int64            `json:"records_saved"`
	RecordsDeleted       int64            `json:"records_deleted"`
	RecordsEvicted       int64            `json:"records_evicted"`
	StorageReadFailures  int64            `json:"storage_read_failures"`
	StorageWriteFailures int64            `json:"storage_write_failures"`
	ConditionCalls       map[string]int64 `json:"condition_calls"`
	AvgCallDuration      time.Duration    `json:"avg_call_duration"`
	SuccessRate          float64          `json:"success_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:               time.Since(m.startTime),
		PredictionsTotal:     m.predictionsTotal.Load(),
		PredictionsSuccess:   m.predictionsSuccess.Load(),
		PredictionsFailed:    m.predictionsFailed.Load(),
		PredictionsBlocked:   m.predictionsBlocked.Load(),
		RecordsSaved:         m.recordsSaved.Load(),
		RecordsDeleted:       m.recordsDeleted.Load(),
		RecordsEvicted:       m.recordsEvicted.Load(),
		StorageReadFailures:  m.storageReadFailures.Load(),
		StorageWriteFailures: m.storageWriteFailures.Load(),
		ConditionCalls:       make(map[string]int64),
	}

	if s.PredictionsTotal > 0 {
		s.SuccessRate = float64(s.PredictionsSuccess) / float64(s.PredictionsTotal) * 100
	}

	m.callDurationsLock.Lock()
	if len(m.callDurations) > 0 {
		var total time.Duration
		for _, d := range m.callDurations {
			total += d
		}
		s.AvgCallDuration = total / time.Duration(len(m.callDurations))
	}
	m.callDurationsLock.Unlock()

	m.conditionLock.Lock()
	for k, v := range m.conditionCalls {
		s.ConditionCalls[k] = v.Load()
	}
	m.conditionLock.Unlock()

	return s
}

func (m *Metrics) Prometheus() string {
	var sb strings.Builder

	write := func(name, help, kind string, value int64) {
		sb.WriteString("# HELP " + name + " " + help + "\n")
		sb.WriteString("# TYPE " + name + " " + kind + "\n")
		sb.WriteString(name + " " + strconv.FormatInt(value, 10) + "\n\n")
	}

	write("carescan_uptime_seconds", "Time since server start", "gauge",
		int64(time.Since(m.startTime).Seconds()))
	write("carescan_predictions_total", "Total prediction submissions", "counter",
		m.predictionsTotal.Load())
	write("carescan_predictions_success", "Successful predictions", "counter",
		m.predictionsSuccess.Load())
	write("carescan_predictions_failed", "Failed predictions", "counter",
		m.predictionsFailed.Load())
	write("carescan_predictions_blocked", "Predictions blocked by validation", "counter",
		m.predictionsBlocked.Load())
	write("carescan_records_saved_total", "Records persisted", "counter",
		m.recordsSaved.Load())
	write("carescan_records_deleted_total", "Records deleted", "counter",
		m.recordsDeleted.Load())
	write("carescan_records_evicted_total", "Records evicted by retention", "counter",
		m.recordsEvicted.Load())
	write("carescan_storage_read_failures_total", "Storage read failures", "counter",
		m.storageReadFailures.Load())
	write("carescan_storage_write_failures_total", "Storage write failures", "counter",
		m.storageWriteFailures.Load())

	m.conditionLock.Lock()
	if len(m.conditionCalls) > 0 {
		sb.WriteString("# HELP carescan_condition_calls_total Prediction calls per condition\n")
		sb.WriteString("# TYPE carescan_condition_calls_total counter\n")
		for k, v := range m.conditionCalls {
			label := strings.ReplaceAll(strings.ToLower(k), " ", "_")
			sb.WriteString("carescan_condition_calls_total{condition=\"" + label + "\"} " +
				strconv.FormatInt(v.Load(), 10) + "\n")
		}
		sb.WriteString("\n")
	}
	m.conditionLock.Unlock()

	return sb.String()
}

// Package-level helpers operating on the default instance.

func GetSnapshot() *Snapshot {
	return Default().Snapshot()
}

func GetPrometheus() string {
	return Default().Prometheus()
}
