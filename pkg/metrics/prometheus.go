// Package metrics provides Prometheus metrics for the tournament simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Simulation
	matchesPlayed      prometheus.Counter
	pointsPlayed       prometheus.Counter
	matchLength        prometheus.Histogram
	roundsExecuted     prometheus.Counter
	tournamentsPlayed  *prometheus.CounterVec
	tournamentDuration *prometheus.HistogramVec
	championSkill      *prometheus.HistogramVec
	seasonsCompleted   prometheus.Counter
	currentSeason      prometheus.Gauge
	poolSize           prometheus.Gauge
	currentPurse       prometheus.Gauge
	retirements        prometheus.Counter
	skillNotices       *prometheus.CounterVec
	simulationErrors   *prometheus.CounterVec

	// Standings index
	standingsUpdates        prometheus.Counter
	standingsRecords        prometheus.Gauge
	standingsSnapshotLastMs prometheus.Gauge
	standingsSnapshotCount  prometheus.Counter
	standingsQueryLatency   prometheus.Histogram

	// Event bus
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueDequeued   prometheus.Counter
	queueDropped    prometheus.Counter
	workerLatency   prometheus.Histogram
	workerErrors    prometheus.Counter
	liveSubscribers prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sportlife",
		subsystem:        "sim",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.matchesPlayed = m.counter("matches_played_total", "Total number of matches resolved")
	m.pointsPlayed = m.counter("points_played_total", "Total number of points drawn")
	m.matchLength = m.histogram("match_points", "Points played per match",
		[]float64{2, 4, 6, 8, 10, 12, 16, 20, 25, 30})
	m.roundsExecuted = m.counter("rounds_executed_total", "Total number of round instructions executed")
	m.tournamentsPlayed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tournaments_total",
		Help: "Completed tournaments by format",
	}, []string{"format"})
	m.tournamentDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "tournament_duration_milliseconds",
		Help:    "Wall time spent running a tournament, including pacing",
		Buckets: m.histogramBuckets,
	}, []string{"format"})
	m.championSkill = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "champion_skill",
		Help:    "Skill of tournament champions at the time of winning",
		Buckets: []float64{200, 400, 600, 800, 1000, 1200, 1500, 2000},
	}, []string{"format"})
	m.seasonsCompleted = m.counter("seasons_completed_total", "Total number of seasons completed")
	m.currentSeason = m.gauge("current_season", "Season currently being played")
	m.poolSize = m.gauge("pool_size", "Number of active competitors")
	m.currentPurse = m.gauge("current_purse", "Base purse of the current season")
	m.retirements = m.counter("retirements_total", "Total number of competitors retired")
	m.skillNotices = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "skill_events_total",
		Help: "Random skill events by kind (boost, injury)",
	}, []string{"kind"})
	m.simulationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component",
	}, []string{"component"})

	m.standingsUpdates = m.counter("standings_updates_total", "Total number of standings index writes")
	m.standingsRecords = m.gauge("standings_records", "Records held by the standings index")
	m.standingsSnapshotLastMs = m.gauge("standings_snapshot_last_duration_milliseconds",
		"Last standings snapshot rebuild duration in milliseconds")
	m.standingsSnapshotCount = m.counter("standings_snapshot_total", "Total number of standings snapshots published")
	m.standingsQueryLatency = m.histogram("standings_query_latency_milliseconds",
		"Standings index query latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("event_queue_size", "Current size of the display event queue")
	m.queueCapacity = m.gauge("event_queue_capacity", "Capacity of the display event queue")
	m.queueEnqueued = m.counter("event_queue_enqueue_total", "Events enqueued")
	m.queueDequeued = m.counter("event_queue_dequeue_total", "Events dequeued")
	m.queueDropped = m.counter("event_queue_dropped_total", "Progress events dropped because the queue was full")
	m.workerLatency = m.histogram("event_dispatch_latency_milliseconds",
		"Time spent dispatching one event to all sinks", m.histogramBuckets)
	m.workerErrors = m.counter("event_dispatch_errors_total", "Sink errors while dispatching events")
	m.liveSubscribers = m.gauge("live_subscribers", "Connected websocket subscribers")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
}

// RecordMatch records one resolved match and the points it took.
func RecordMatch(points int) {
	globalManager.matchesPlayed.Inc()
	globalManager.pointsPlayed.Add(float64(points))
	globalManager.matchLength.Observe(float64(points))
}

// RecordRound increments the executed round instruction counter.
func RecordRound() {
	globalManager.roundsExecuted.Inc()
}

// RecordTournament records a completed tournament.
func RecordTournament(format string, durationMs float64, championSkill int) {
	globalManager.tournamentsPlayed.WithLabelValues(format).Inc()
	globalManager.tournamentDuration.WithLabelValues(format).Observe(durationMs)
	globalManager.championSkill.WithLabelValues(format).Observe(float64(championSkill))
}

// RecordSeason records a completed season.
func RecordSeason() {
	globalManager.seasonsCompleted.Inc()
}

// UpdateSeason sets the current season and its base purse.
func UpdateSeason(season int, purse int64) {
	globalManager.currentSeason.Set(float64(season))
	globalManager.currentPurse.Set(float64(purse))
}

// UpdatePoolSize sets the number of active competitors.
func UpdatePoolSize(n int) {
	globalManager.poolSize.Set(float64(n))
}

// RecordRetirement increments the retirement counter.
func RecordRetirement() {
	globalManager.retirements.Inc()
}

// RecordSkillEvent counts a boost or injury.
func RecordSkillEvent(kind string) {
	globalManager.skillNotices.WithLabelValues(kind).Inc()
}

// RecordError counts an error for the given component.
func RecordError(component string) {
	globalManager.simulationErrors.WithLabelValues(component).Inc()
}

// RecordStandingsUpdate increments the standings write counter.
func RecordStandingsUpdate() {
	globalManager.standingsUpdates.Inc()
}

// UpdateStandingsRecords sets the number of records in the standings index.
func UpdateStandingsRecords(n int) {
	globalManager.standingsRecords.Set(float64(n))
}

// RecordStandingsSnapshot records a snapshot rebuild.
func RecordStandingsSnapshot(durationMs float64) {
	globalManager.standingsSnapshotLastMs.Set(durationMs)
	globalManager.standingsSnapshotCount.Inc()
}

// RecordStandingsQueryLatency records a standings query latency.
func RecordStandingsQueryLatency(latencyMs float64) {
	globalManager.standingsQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current event queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the event queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueDropped increments the dropped event counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordWorkerProcessingLatency records event dispatch latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the dispatch error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateLiveSubscribers sets the websocket subscriber count.
func UpdateLiveSubscribers(n int) {
	globalManager.liveSubscribers.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
