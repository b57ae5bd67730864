package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/snip/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're serving MCP over stdio (set by main)
var MCPMode = false

// verbose is set by the --verbose CLI flag
var verbose = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetVerbose turns on debug output regardless of the build flag
func SetVerbose(enabled bool) {
	verbose = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "snip-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	// Never write to stdio while it carries the MCP protocol
	if MCPMode {
		return false
	}

	if EnableDebug == "true" || verbose {
		return true
	}

	// Allow runtime override via environment variable
	for _, key := range []string{"SNIP_DEBUG", "DEBUG"} {
		if v := os.Getenv(key); v == "1" || v == "true" {
			return true
		}
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogParse logs grammar selection and parsing
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogLocate logs tree traversal and matching
func LogLocate(format string, args ...interface{}) {
	Log("LOCATE", format, args...)
}

// LogWatch logs file watching
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// LogConfig logs configuration loading
func LogConfig(format string, args ...interface{}) {
	Log("CONFIG", format, args...)
}

// Fatal logs a fatal message and returns it as an error; callers decide
// whether to exit.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := getDebugWriter(); w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", strings.TrimRight(msg, "\n"))
}
