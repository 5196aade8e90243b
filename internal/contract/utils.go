package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/trendgate/schema"
)

// Color variables for console output.
var (
	DevelopColor      = color.New(color.FgGreen, color.Bold) // DevelopColor marks a go decision.
	TrackColor        = color.New(color.FgYellow)            // TrackColor marks products worth watching.
	UndeterminedColor = color.New(color.FgCyan)              // UndeterminedColor marks missing information.
	RejectColor       = color.New(color.FgRed, color.Bold)   // RejectColor marks a no-go decision.
)

// GetPlainLabel returns the plain text label of a verdict. This is the
// label used for CSV, JSON, and table printing.
func GetPlainLabel(v schema.Verdict) string {
	return v.Label()
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(v schema.Verdict) string {
	text := GetPlainLabel(v)

	switch v {
	case schema.DevelopVerdict:
		return DevelopColor.Sprint(text)
	case schema.TrackVerdict:
		return TrackColor.Sprint(text)
	case schema.RejectVerdict:
		return RejectColor.Sprint(text)
	default:
		return UndeterminedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for result caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trendgate_cache.db"
	}
	return filepath.Join(homeDir, ".trendgate_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trendgate_history.db"
	}
	return filepath.Join(homeDir, ".trendgate_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character of content remains.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
