package contract

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/trendgate/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 100
	MaxResultLimit     = 10000
	DefaultPrecision   = 2
	MaxPrecision       = 4
	DefaultLeadMonths  = 3
	MaxLeadMonths      = 24
)

// CacheTTL is how long a cached row result stays valid.
const CacheTTL = 7 * 24 * time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// MonthFormat is the layout of the --now flag.
const MonthFormat = "2006-01"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Tuning holds the numeric thresholds of the analysis pipeline.
type Tuning struct {
	MinWindowScore      float64 `json:"min_window_score"`
	YearRoundStability  float64 `json:"year_round_stability"`
	StrongStability     float64 `json:"strong_stability"`
	StrongScore         float64 `json:"strong_score"`
	LowFlowMaxRatio     float64 `json:"low_flow_max_ratio"`
	PriceWindowDays     int     `json:"price_window_days"`
	TrendAlpha          float64 `json:"trend_alpha"`
	VolatilityThreshold float64 `json:"volatility_threshold"`
	QuantileLevel       float64 `json:"quantile_level"`
	SalesThreshold      int     `json:"sales_threshold"`
}

// DefaultTuning returns the default thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		MinWindowScore:      0.05,
		YearRoundStability:  1.15,
		StrongStability:     1.3,
		StrongScore:         0.65,
		LowFlowMaxRatio:     0.2,
		PriceWindowDays:     60,
		TrendAlpha:          0.05,
		VolatilityThreshold: 0.05,
		QuantileLevel:       0.9,
		SalesThreshold:      50,
	}
}

// Params flattens the tuning into a map for run tracking.
func (t Tuning) Params() map[string]any {
	return map[string]any{
		"min_window_score":     t.MinWindowScore,
		"year_round_stability": t.YearRoundStability,
		"strong_stability":     t.StrongStability,
		"strong_score":         t.StrongScore,
		"low_flow_max_ratio":   t.LowFlowMaxRatio,
		"price_window_days":    t.PriceWindowDays,
		"trend_alpha":          t.TrendAlpha,
		"volatility_threshold": t.VolatilityThreshold,
		"quantile_level":       t.QuantileLevel,
		"sales_threshold":      t.SalesThreshold,
	}
}

// TuningRawInput holds tuning overrides from the YAML config file.
// Pointer fields distinguish "unset" from an explicit zero.
type TuningRawInput struct {
	MinWindowScore      *float64 `mapstructure:"min_window_score"`
	YearRoundStability  *float64 `mapstructure:"year_round_stability"`
	StrongStability     *float64 `mapstructure:"strong_stability"`
	StrongScore         *float64 `mapstructure:"strong_score"`
	LowFlowMaxRatio     *float64 `mapstructure:"low_flow_max_ratio"`
	PriceWindowDays     *int     `mapstructure:"price_window_days"`
	TrendAlpha          *float64 `mapstructure:"trend_alpha"`
	VolatilityThreshold *float64 `mapstructure:"volatility_threshold"`
	QuantileLevel       *float64 `mapstructure:"quantile_level"`
	SalesThreshold      *int     `mapstructure:"sales_threshold"`
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	InputFiles  []string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Width       int // Terminal width override (0 = auto-detect)

	Now        time.Time // first day of the month the analysis is evaluated at
	LeadMonths int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MetricsFile string // Prometheus textfile written after analyze

	Tuning Tuning

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputFiles []string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Detail           bool   `mapstructure:"detail"`
	Width            int    `mapstructure:"width"`
	Now              string `mapstructure:"now"`
	LeadMonths       int    `mapstructure:"lead-months"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	MetricsFile string `mapstructure:"metrics-file"`

	// --- Tuning from config file ---
	Tuning TuningRawInput `mapstructure:"tuning"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.InputFiles != nil {
		clone.InputFiles = slices.Clone(c.InputFiles)
	}
	return &clone
}

// CloneWithNow creates a copy of the Config evaluated at a different month.
func (c *Config) CloneWithNow(now time.Time) *Config {
	clone := c.Clone()
	clone.Now = FirstOfMonth(now)
	return clone
}

// CurrentMonth returns the calendar month of Now, 1..12.
func (c *Config) CurrentMonth() int {
	return int(c.Now.Month())
}

// RunParams returns the configuration recorded with each tracked run.
func (c *Config) RunParams() map[string]any {
	params := map[string]any{
		"inputs":      strings.Join(c.InputFiles, ","),
		"now":         c.Now.Format(MonthFormat),
		"lead_months": c.LeadMonths,
		"workers":     c.Workers,
		"limit":       c.ResultLimit,
	}
	maps.Copy(params, c.Tuning.Params())
	return params
}

// FirstOfMonth truncates t to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseNowMonth parses the --now flag. An empty value means the month of clock.
func ParseNowMonth(s string, clock time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FirstOfMonth(clock), nil
	}
	t, err := time.Parse(MonthFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q, expected YYYY-MM: %w", s, err)
	}
	return t, nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTiming(cfg, input); err != nil {
		return err
	}
	if err := processTuning(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputFiles = input.InputFiles
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", cfg.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processTiming resolves the evaluation month and the lead time.
func processTiming(cfg *Config, input *ConfigRawInput) error {
	now, err := ParseNowMonth(input.Now, time.Now())
	if err != nil {
		return err
	}
	cfg.Now = now

	if input.LeadMonths < 0 || input.LeadMonths > MaxLeadMonths {
		return fmt.Errorf("lead-months must be between 0 and %d (received %d)", MaxLeadMonths, input.LeadMonths)
	}
	cfg.LeadMonths = input.LeadMonths
	return nil
}

// processTuning overlays config file overrides on the default tuning and validates the result.
func processTuning(cfg *Config, input *ConfigRawInput) error {
	tuning, err := ProcessTuningRawInput(input.Tuning)
	if err != nil {
		return err
	}
	cfg.Tuning = tuning
	return nil
}

// ProcessTuningRawInput applies the overrides to the defaults and validates the result.
func ProcessTuningRawInput(raw TuningRawInput) (Tuning, error) {
	t := DefaultTuning()
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&t.MinWindowScore, raw.MinWindowScore)
	setFloat(&t.YearRoundStability, raw.YearRoundStability)
	setFloat(&t.StrongStability, raw.StrongStability)
	setFloat(&t.StrongScore, raw.StrongScore)
	setFloat(&t.LowFlowMaxRatio, raw.LowFlowMaxRatio)
	setInt(&t.PriceWindowDays, raw.PriceWindowDays)
	setFloat(&t.TrendAlpha, raw.TrendAlpha)
	setFloat(&t.VolatilityThreshold, raw.VolatilityThreshold)
	setFloat(&t.QuantileLevel, raw.QuantileLevel)
	setInt(&t.SalesThreshold, raw.SalesThreshold)

	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate checks that every threshold is in range.
func (t Tuning) Validate() error {
	ratios := []struct {
		name  string
		value float64
	}{
		{"min_window_score", t.MinWindowScore},
		{"strong_score", t.StrongScore},
		{"low_flow_max_ratio", t.LowFlowMaxRatio},
		{"trend_alpha", t.TrendAlpha},
		{"volatility_threshold", t.VolatilityThreshold},
		{"quantile_level", t.QuantileLevel},
	}
	for _, r := range ratios {
		if r.value <= 0 || r.value > 1 {
			return fmt.Errorf("tuning %s must be in (0, 1] (received %.3f)", r.name, r.value)
		}
	}
	if t.YearRoundStability <= 0 || t.StrongStability <= 0 {
		return fmt.Errorf("tuning stability cutoffs must be greater than 0")
	}
	if t.YearRoundStability > t.StrongStability {
		return fmt.Errorf("tuning year_round_stability (%.3f) cannot exceed strong_stability (%.3f)", t.YearRoundStability, t.StrongStability)
	}
	if t.PriceWindowDays <= 0 {
		return fmt.Errorf("tuning price_window_days must be greater than 0 (received %d)", t.PriceWindowDays)
	}
	if t.SalesThreshold <= 0 {
		return fmt.Errorf("tuning sales_threshold must be greater than 0 (received %d)", t.SalesThreshold)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
