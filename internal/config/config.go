package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/livescore/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	InternalJobToken   string

	APISportsAPIKey                string
	APIFootballBaseURL             string
	APIBasketballBaseURL           string
	APISportsTimeout               time.Duration
	APISportsMaxRetries            int
	APISportsCircuitEnabled        bool
	APISportsCircuitFailureCount   int
	APISportsCircuitOpenTimeout    time.Duration
	APISportsCircuitHalfOpenMaxReq int

	NBALeagueIDs       []int64
	LiveCacheTTL       time.Duration
	LiveFanoutWorkers  int
	LiveStreamInterval time.Duration

	BackgroundWorkers    int
	BackgroundJobTimeout time.Duration

	RawArchiveEnabled             bool
	DBURL                         string
	DBDisablePreparedBinaryResult bool
	DBMaxOpenConns                int

	LivePublishEnabled      bool
	RedisURL                string
	LivePublishStreamMaxLen int64

	MetricsEnabled bool

	UptraceEnabled             bool
	UptraceDSN                 string
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PprofEnabled               bool
	PprofAddr                  string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Default NBA league ids on the basketball provider: regular season,
// in-season tournament and NBA Cup.
const defaultNBALeagueIDs = "12,422,423"

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevelDefault := "info"
	if appEnv == EnvDev {
		logLevelDefault = "debug"
	}
	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", logLevelDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	apiSportsTimeout, err := getEnvAsPositiveDuration("APISPORTS_TIMEOUT", "8s")
	if err != nil {
		return Config{}, err
	}
	apiSportsMaxRetries, err := getEnvAsInt("APISPORTS_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse APISPORTS_MAX_RETRIES: %w", err)
	}
	if apiSportsMaxRetries < 0 {
		return Config{}, fmt.Errorf("APISPORTS_MAX_RETRIES must be >= 0")
	}
	apiSportsCircuitEnabled, err := strconv.ParseBool(getEnv("APISPORTS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APISPORTS_CIRCUIT_ENABLED: %w", err)
	}
	apiSportsCircuitFailureCount, err := getEnvAsInt("APISPORTS_CIRCUIT_FAILURE_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse APISPORTS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if apiSportsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("APISPORTS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	apiSportsCircuitOpenTimeout, err := getEnvAsPositiveDuration("APISPORTS_CIRCUIT_OPEN_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	apiSportsCircuitHalfOpenMaxReq, err := getEnvAsInt("APISPORTS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse APISPORTS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if apiSportsCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("APISPORTS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	nbaLeagueIDs, err := parseIDList(getEnv("NBA_LEAGUE_IDS", defaultNBALeagueIDs))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_LEAGUE_IDS: %w", err)
	}
	if len(nbaLeagueIDs) == 0 {
		return Config{}, fmt.Errorf("NBA_LEAGUE_IDS cannot be empty")
	}
	liveCacheTTL, err := getEnvAsPositiveDuration("LIVE_CACHE_TTL", "30s")
	if err != nil {
		return Config{}, err
	}
	liveFanoutWorkers, err := getEnvAsInt("LIVE_FANOUT_WORKERS", len(nbaLeagueIDs))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_FANOUT_WORKERS: %w", err)
	}
	if liveFanoutWorkers < 1 {
		return Config{}, fmt.Errorf("LIVE_FANOUT_WORKERS must be >= 1")
	}
	liveStreamInterval, err := getEnvAsPositiveDuration("LIVE_STREAM_INTERVAL", "15s")
	if err != nil {
		return Config{}, err
	}

	backgroundWorkers, err := getEnvAsInt("BACKGROUND_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKGROUND_WORKERS: %w", err)
	}
	if backgroundWorkers < 1 {
		return Config{}, fmt.Errorf("BACKGROUND_WORKERS must be >= 1")
	}
	backgroundJobTimeout, err := getEnvAsPositiveDuration("BACKGROUND_JOB_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	rawArchiveEnabled, err := strconv.ParseBool(getEnv("RAW_ARCHIVE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RAW_ARCHIVE_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if rawArchiveEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when RAW_ARCHIVE_ENABLED=true")
	}

	dbDisablePreparedBinaryResult, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	livePublishEnabled, err := strconv.ParseBool(getEnv("LIVE_PUBLISH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_PUBLISH_ENABLED: %w", err)
	}
	redisURL := strings.TrimSpace(getEnv("REDIS_URL", ""))
	if livePublishEnabled && redisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when LIVE_PUBLISH_ENABLED=true")
	}
	livePublishStreamMaxLen, err := strconv.ParseInt(getEnv("LIVE_PUBLISH_STREAM_MAXLEN", "1000"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_PUBLISH_STREAM_MAXLEN: %w", err)
	}
	if livePublishStreamMaxLen <= 0 {
		return Config{}, fmt.Errorf("LIVE_PUBLISH_STREAM_MAXLEN must be > 0")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := getEnvAsPositiveDuration("BETTERSTACK_TIMEOUT", "3s")
	if err != nil {
		return Config{}, err
	}
	betterStackMinLevel, err := logging.ParseLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_MIN_LEVEL: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "livescore-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           logLevel,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		APISportsAPIKey:                strings.TrimSpace(getEnv("APISPORTS_API_KEY", "")),
		APIFootballBaseURL:             strings.TrimRight(strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "https://v3.football.api-sports.io")), "/"),
		APIBasketballBaseURL:           strings.TrimRight(strings.TrimSpace(getEnv("APIBASKETBALL_BASE_URL", "https://v1.basketball.api-sports.io")), "/"),
		APISportsTimeout:               apiSportsTimeout,
		APISportsMaxRetries:            apiSportsMaxRetries,
		APISportsCircuitEnabled:        apiSportsCircuitEnabled,
		APISportsCircuitFailureCount:   apiSportsCircuitFailureCount,
		APISportsCircuitOpenTimeout:    apiSportsCircuitOpenTimeout,
		APISportsCircuitHalfOpenMaxReq: apiSportsCircuitHalfOpenMaxReq,

		NBALeagueIDs:       nbaLeagueIDs,
		LiveCacheTTL:       liveCacheTTL,
		LiveFanoutWorkers:  liveFanoutWorkers,
		LiveStreamInterval: liveStreamInterval,

		BackgroundWorkers:    backgroundWorkers,
		BackgroundJobTimeout: backgroundJobTimeout,

		RawArchiveEnabled:             rawArchiveEnabled,
		DBURL:                         dbURL,
		DBDisablePreparedBinaryResult: dbDisablePreparedBinaryResult,
		DBMaxOpenConns:                dbMaxOpenConns,

		LivePublishEnabled:      livePublishEnabled,
		RedisURL:                redisURL,
		LivePublishStreamMaxLen: livePublishStreamMaxLen,

		MetricsEnabled: metricsEnabled,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        betterStackMinLevel,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.APIFootballBaseURL == "" || cfg.APIBasketballBaseURL == "" {
		return Config{}, fmt.Errorf("APIFOOTBALL_BASE_URL and APIBASKETBALL_BASE_URL cannot be empty")
	}

	return cfg, nil
}

// HasAPISportsKey is false when the provider key is absent. The service
// still boots; live lookups fail with a configuration error.
func (c Config) HasAPISportsKey() bool {
	return c.APISportsAPIKey != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseIDList keeps the configured order and drops duplicates.
func parseIDList(raw string) ([]int64, error) {
	items := splitCSV(raw)
	out := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %d", value)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
