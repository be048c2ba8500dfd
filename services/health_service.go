package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"thaitour_go/config"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp         = "up"
	dependencyStatusDown       = "down"
	dependencyStatusDisabled   = "disabled"
	dependencyStatusConfigured = "configured"

	defaultServiceName = "Thai Tour API"
	defaultVersion     = "1.0.0"
	defaultTimeout     = 1500 * time.Millisecond
)

// HealthService aggregates application health information for the health endpoints.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration

	db    *gorm.DB
	redis *redis.Client
	jobs  JobLister
}

// JobLister exposes the registered background jobs
type JobLister interface {
	Jobs() []JobInfo
}

type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	UptimeHuman   string             `json:"uptime_human"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Jobs          []JobInfo          `json:"jobs,omitempty"`
	Metrics       HealthMetrics      `json:"metrics"`
	Flags         HealthFlags        `json:"flags"`
	System        HealthSystem       `json:"system"`
}

type DependencyStatus struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	LatencyMs int64                  `json:"latency_ms"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type HealthMetrics struct {
	Goroutines int            `json:"goroutines"`
	Memory     MemoryMetrics  `json:"memory"`
	Database   *DatabaseStats `json:"database,omitempty"`
}

type MemoryMetrics struct {
	AllocBytes     uint64 `json:"alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapObjects    uint64 `json:"heap_objects"`
	LastGCUnix     *int64 `json:"last_gc_unix,omitempty"`
	NumGC          uint32 `json:"num_gc"`
}

type DatabaseStats struct {
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMs     int64 `json:"wait_duration_ms"`
	MaxOpenConnections int   `json:"max_open_connections"`
}

// HealthFlags exposes configuration that changes runtime behaviour.
type HealthFlags struct {
	SkipMigrate     bool   `json:"skip_migrate"`
	SeedData        bool   `json:"seed_data"`
	CatalogCacheTTL string `json:"catalog_cache_ttl"`
	SeasonYear      int    `json:"season_year"`
	Timezone        string `json:"timezone"`
}

type HealthSystem struct {
	GoVersion string `json:"go_version"`
	GoOS      string `json:"go_os"`
	GoArch    string `json:"go_arch"`
}

// NewHealthService builds a service probing db and rc; either may be nil.
func NewHealthService(serviceName, version string, db *gorm.DB, rc *redis.Client, jobs JobLister) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = defaultServiceName
	}
	if strings.TrimSpace(version) == "" {
		version = defaultVersion
	}

	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     defaultTimeout,
		db:          db,
		redis:       rc,
		jobs:        jobs,
	}
}

func (s *HealthService) SetStartTime(t time.Time) {
	if !t.IsZero() {
		s.startTime = t
	}
}

func (s *HealthService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Liveness is the cheap report served by /health: dependency probes only.
func (s *HealthService) Liveness(ctx context.Context) HealthReport {
	report := s.baseReport()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dbDep, _, dbStatus := s.checkDatabase(ctx)
	redisDep, redisStatus := s.checkRedis(ctx)
	report.Dependencies = []DependencyStatus{dbDep, redisDep}
	report.Status = combineStatus(combineStatus(report.Status, dbStatus), redisStatus)
	return report
}

// GetHealthReport collects the full diagnostic report served by /health/details.
func (s *HealthService) GetHealthReport(ctx context.Context) HealthReport {
	report := s.baseReport()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dbDep, dbMetrics, dbStatus := s.checkDatabase(ctx)
	redisDep, redisStatus := s.checkRedis(ctx)
	report.Dependencies = []DependencyStatus{dbDep, redisDep, checkObjectStorage(), checkLine()}
	report.Status = combineStatus(combineStatus(report.Status, dbStatus), redisStatus)

	if s.jobs != nil {
		report.Jobs = s.jobs.Jobs()
	}
	report.Metrics = collectSystemMetrics(dbMetrics)
	report.Flags = collectFlags()
	report.System = HealthSystem{
		GoVersion: runtime.Version(),
		GoOS:      runtime.GOOS,
		GoArch:    runtime.GOARCH,
	}
	return report
}

func (s *HealthService) baseReport() HealthReport {
	uptime := time.Since(s.startTime)
	if uptime < 0 {
		uptime = 0
	}
	return HealthReport{
		Status:        overallStatusOK,
		Service:       s.serviceName,
		Version:       s.version,
		Environment:   currentEnvironment(),
		Time:          time.Now().UTC(),
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   humanizeDuration(uptime),
	}
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == overallStatusCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) (DependencyStatus, *DatabaseStats, string) {
	dep := DependencyStatus{Name: "mysql", Status: dependencyStatusDown}

	if s.db == nil {
		dep.Error = "database connection not initialised"
		return dep, nil, overallStatusCritical
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		dep.Error = fmt.Sprintf("sql DB handle error: %v", err)
		return dep, nil, overallStatusCritical
	}

	start := time.Now()
	err = sqlDB.PingContext(ctx)
	dep.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		dep.Error = err.Error()
		return dep, nil, overallStatusCritical
	}

	dep.Status = dependencyStatusUp
	stats := sqlDB.Stats()
	return dep, &DatabaseStats{
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDurationMs:     stats.WaitDuration.Milliseconds(),
		MaxOpenConnections: stats.MaxOpenConnections,
	}, overallStatusOK
}

// Redis backs the catalog cache, the activity log queue and the token
// blacklist; losing it degrades the API but does not take it down.
func (s *HealthService) checkRedis(ctx context.Context) (DependencyStatus, string) {
	dep := DependencyStatus{Name: "redis"}
	if s.redis == nil {
		dep.Status = dependencyStatusDisabled
		return dep, overallStatusDegraded
	}

	start := time.Now()
	err := s.redis.Ping(ctx).Err()
	dep.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep, overallStatusDegraded
	}

	dep.Status = dependencyStatusUp
	dep.Details = map[string]interface{}{"address": s.redis.Options().Addr}
	return dep, overallStatusOK
}

func checkObjectStorage() DependencyStatus {
	dep := DependencyStatus{Name: "s3", Status: dependencyStatusDisabled}
	if config.AppConfig != nil && config.AppConfig.S3BucketName != "" {
		dep.Status = dependencyStatusConfigured
		dep.Details = map[string]interface{}{
			"bucket": config.AppConfig.S3BucketName,
			"region": config.AppConfig.AWSRegion,
		}
	}
	return dep
}

func checkLine() DependencyStatus {
	dep := DependencyStatus{Name: "line", Status: dependencyStatusDisabled}
	if config.AppConfig != nil && config.AppConfig.LineChannelSecret != "" && config.AppConfig.LineChannelToken != "" {
		dep.Status = dependencyStatusConfigured
	}
	return dep
}

func collectSystemMetrics(dbMetrics *DatabaseStats) HealthMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	metrics := HealthMetrics{
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryMetrics{
			AllocBytes:     mem.Alloc,
			SysBytes:       mem.Sys,
			HeapAllocBytes: mem.HeapAlloc,
			HeapObjects:    mem.HeapObjects,
			NumGC:          mem.NumGC,
		},
		Database: dbMetrics,
	}
	if mem.LastGC != 0 {
		unix := time.Unix(0, int64(mem.LastGC)).Unix()
		metrics.Memory.LastGCUnix = &unix
	}
	return metrics
}

func collectFlags() HealthFlags {
	if config.AppConfig == nil {
		return HealthFlags{}
	}
	return HealthFlags{
		SkipMigrate:     config.AppConfig.SkipMigrate,
		SeedData:        config.AppConfig.SeedData,
		CatalogCacheTTL: config.AppConfig.CatalogCacheTTL.String(),
		SeasonYear:      config.AppConfig.SeasonYear,
		Timezone:        config.AppConfig.Timezone,
	}
}

func currentEnvironment() string {
	if config.AppConfig == nil || strings.TrimSpace(config.AppConfig.AppEnv) == "" {
		return "unknown"
	}
	return strings.TrimSpace(config.AppConfig.AppEnv)
}

func combineStatus(current, candidate string) string {
	order := map[string]int{
		overallStatusOK:       0,
		overallStatusDegraded: 1,
		overallStatusCritical: 2,
	}
	if _, ok := order[current]; !ok {
		current = overallStatusOK
	}
	if v, ok := order[candidate]; ok && v > order[current] {
		return candidate
	}
	return current
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	d %= time.Minute
	seconds := d / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
