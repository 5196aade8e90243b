package contract

import (
	"os"

	"github.com/phuslu/log"
)

// Logger is the process-wide structured logger. It writes to stderr so that
// stdout stays reserved for analysis output.
var Logger = log.Logger{
	Level:  log.InfoLevel,
	Writer: &log.ConsoleWriter{Writer: os.Stderr, ColorOutput: true},
}

// SetLogLevel changes the level of Logger. Unknown names fall back to info.
func SetLogLevel(level string) {
	Logger.Level = log.ParseLevel(level)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.Warn().Err(err).Msg(msg)
}

// LogInfo logs an informational message with optional key/value pairs.
func LogInfo(msg string, kv ...string) {
	e := Logger.Info()
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.Str(kv[i], kv[i+1])
	}
	e.Msg(msg)
}
