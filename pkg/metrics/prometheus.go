// Package metrics provides Prometheus metrics for the repute service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by repute.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Reputation engine
	eventsRecorded      *prometheus.CounterVec
	eventsDuplicate     prometheus.Counter
	profilesInitialized prometheus.Counter
	tierTransitions     *prometheus.CounterVec
	achievementsAwarded *prometheus.CounterVec
	decayApplied        prometheus.Counter
	decayPoints         prometheus.Counter

	// Leaderboard
	leaderboardUpdates prometheus.Counter
	leaderboardGroups  prometheus.Gauge
	leaderboardQueries prometheus.Counter

	// Notifications
	notificationsPublished *prometheus.CounterVec
	notificationsDropped   prometheus.Counter
	notifyQueueSize        prometheus.Gauge
	dispatchLatency        prometheus.Histogram

	// Storage
	storeLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "repute",
		subsystem:        "reputation",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.eventsRecorded = auto.NewCounterVec(
		m.counterOpts("events_recorded_total", "Reputation events applied, by event kind"),
		[]string{"kind"},
	)
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total", "Events rejected by the idempotency key cache"))
	m.profilesInitialized = auto.NewCounter(m.counterOpts("profiles_initialized_total", "Profiles created"))
	m.tierTransitions = auto.NewCounterVec(
		m.counterOpts("tier_transitions_total", "Tier changes, by direction"),
		[]string{"direction"},
	)
	m.achievementsAwarded = auto.NewCounterVec(
		m.counterOpts("achievements_awarded_total", "Achievements awarded, by achievement id"),
		[]string{"achievement"},
	)
	m.decayApplied = auto.NewCounter(m.counterOpts("decay_applied_total", "Decay passes that removed at least one point"))
	m.decayPoints = auto.NewCounter(m.counterOpts("decay_points_total", "Total points removed by decay"))

	m.leaderboardUpdates = auto.NewCounter(m.counterOpts("leaderboard_updates_total", "Leaderboard membership upserts"))
	m.leaderboardGroups = auto.NewGauge(m.gaugeOpts("leaderboard_groups", "Groups with a loaded leaderboard index"))
	m.leaderboardQueries = auto.NewCounter(m.counterOpts("leaderboard_queries_total", "Top-N leaderboard queries"))

	m.notificationsPublished = auto.NewCounterVec(
		m.counterOpts("notifications_published_total", "Notifications accepted by the sink, by kind"),
		[]string{"kind"},
	)
	m.notificationsDropped = auto.NewCounter(m.counterOpts("notifications_dropped_total", "Notifications dropped because the queue was full or closed"))
	m.notifyQueueSize = auto.NewGauge(m.gaugeOpts("notify_queue_size", "Notifications waiting for dispatch"))
	m.dispatchLatency = auto.NewHistogram(m.histogramOpts("dispatch_latency_milliseconds", "Time to fan a notification out to subscribers"))

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Persistence adapter latency, by operation"),
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordEvent counts an applied reputation event.
func RecordEvent(kind string) {
	globalManager.eventsRecorded.WithLabelValues(kind).Inc()
}

// RecordEventDuplicate counts an event dropped by the idempotency cache.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordProfileInitialized counts a newly created profile.
func RecordProfileInitialized() {
	globalManager.profilesInitialized.Inc()
}

// RecordTierTransition counts a tier change; direction is "up" or "down".
func RecordTierTransition(direction string) {
	globalManager.tierTransitions.WithLabelValues(direction).Inc()
}

// RecordAchievementAwarded counts an awarded achievement.
func RecordAchievementAwarded(achievement string) {
	globalManager.achievementsAwarded.WithLabelValues(achievement).Inc()
}

// RecordDecay counts a decay pass that removed points.
func RecordDecay(points uint32) {
	globalManager.decayApplied.Inc()
	globalManager.decayPoints.Add(float64(points))
}

// RecordLeaderboardUpdate counts a leaderboard upsert.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// UpdateLeaderboardGroups sets the number of loaded leaderboard groups.
func UpdateLeaderboardGroups(count int) {
	globalManager.leaderboardGroups.Set(float64(count))
}

// RecordLeaderboardQuery counts a top-N query.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordNotificationPublished counts a notification accepted by the sink.
func RecordNotificationPublished(kind string) {
	globalManager.notificationsPublished.WithLabelValues(kind).Inc()
}

// RecordNotificationDropped counts a notification the sink could not accept.
func RecordNotificationDropped() {
	globalManager.notificationsDropped.Inc()
}

// UpdateNotifyQueueSize sets the notification backlog.
func UpdateNotifyQueueSize(size int) {
	globalManager.notifyQueueSize.Set(float64(size))
}

// RecordDispatchLatency records fan-out latency in milliseconds.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordStoreLatency records persistence adapter latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
