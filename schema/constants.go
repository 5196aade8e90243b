package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// FlowType represents the seasonal demand pattern of a product.
	FlowType string

	// PriceLabel represents the classified price trend.
	PriceLabel string

	// Verdict represents the final development decision.
	Verdict string

	// TrendDirection represents the outcome of a monotonic trend test.
	TrendDirection string

	// YearContext tells whether a peak window is targeted this year or next year.
	YearContext string

	// InputFormat represents the encoding of a product row file.
	InputFormat string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All flow types supported.
const (
	YearRoundFlow      FlowType = "year-round"
	StrongCyclicalFlow FlowType = "strong-cyclical"
	MixedSeasonalFlow  FlowType = "mixed-seasonal"
	UnknownFlow        FlowType = "unknown"
	RecentListingFlow  FlowType = "recent-listing-no-history"
)

// All price labels supported.
const (
	RisingPrice   PriceLabel = "rising"
	FallingPrice  PriceLabel = "falling"
	StablePrice   PriceLabel = "stable"
	VolatilePrice PriceLabel = "volatile"
	UnknownPrice  PriceLabel = "unknown"
)

// All verdicts supported, from most to least favorable.
const (
	DevelopVerdict      Verdict = "develop"
	TrackVerdict        Verdict = "track"
	UndeterminedVerdict Verdict = "undetermined"
	RejectVerdict       Verdict = "reject"
)

// All trend directions supported.
const (
	IncreasingTrend TrendDirection = "increasing"
	DecreasingTrend TrendDirection = "decreasing"
	NoTrend         TrendDirection = "no trend"
)

// Year contexts for timing.
const (
	ThisYear YearContext = "this"
	NextYear YearContext = "next"
)

// Input formats for product row files.
const (
	JSONInput InputFormat = "json"
	YAMLInput InputFormat = "yaml"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidFlowTypes lists all valid flow types.
var ValidFlowTypes = map[FlowType]struct{}{
	YearRoundFlow:      {},
	StrongCyclicalFlow: {},
	MixedSeasonalFlow:  {},
	UnknownFlow:        {},
	RecentListingFlow:  {},
}

// ValidVerdicts lists all valid verdicts.
var ValidVerdicts = map[Verdict]struct{}{
	DevelopVerdict:      {},
	TrackVerdict:        {},
	UndeterminedVerdict: {},
	RejectVerdict:       {},
}

// AllVerdicts returns verdicts in display order.
var AllVerdicts = []Verdict{DevelopVerdict, TrackVerdict, UndeterminedVerdict, RejectVerdict}

// flowLabels maps flow types to their display labels used in cycle text.
var flowLabels = map[FlowType]string{
	YearRoundFlow:      "Year-round",
	StrongCyclicalFlow: "Strong cyclical",
	MixedSeasonalFlow:  "Mixed seasonal",
	UnknownFlow:        "Unknown",
	RecentListingFlow:  "none",
}

// Label returns the display label of the flow type.
func (f FlowType) Label() string {
	if l, ok := flowLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseFlowLabel converts a display label back to its flow type.
func ParseFlowLabel(label string) (FlowType, bool) {
	for f, l := range flowLabels {
		if l == label {
			return f, true
		}
	}
	return "", false
}

// Label returns the capitalized display form of the price label.
func (p PriceLabel) Label() string {
	switch p {
	case RisingPrice:
		return "Rising"
	case FallingPrice:
		return "Falling"
	case StablePrice:
		return "Stable"
	case VolatilePrice:
		return "Volatile"
	default:
		return "Unknown"
	}
}

// Label returns the capitalized display form of the verdict.
func (v Verdict) Label() string {
	switch v {
	case DevelopVerdict:
		return "Develop"
	case TrackVerdict:
		return "Track"
	case RejectVerdict:
		return "Reject"
	default:
		return "Undetermined"
	}
}
