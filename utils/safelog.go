// utils/safelog.go
// Safe logging: masks merchant labels, amounts and ids in production logs so
// statement contents never end up in hosted log storage.

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction controls masking; development keeps full logs.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var (
	// Amounts in minor units tend to be long digit runs.
	amountRegex = regexp.MustCompile(`\b\d{4,}\b`)
	uuidRegex   = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString masks amounts and shortens UUIDs when running in production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	result := amountRegex.ReplaceAllString(input, "***")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		return id[:8] + "..."
	})
	return result
}

// MaskMerchant hides a merchant label in production, keeping a short prefix
// so adjacent log lines can still be correlated.
func MaskMerchant(label string) string {
	if !IsProduction {
		return label
	}
	if len(label) <= 3 {
		return "***"
	}
	return label[:3] + "***"
}

// MaskAmount hides a minor-unit amount in production.
func MaskAmount(amountMinor int64) string {
	if IsProduction {
		return "***"
	}
	return fmt.Sprintf("%d", amountMinor)
}

// SafeDebug logs a masked debug message (only when LOG_LEVEL=DEBUG).
func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeInfo logs a masked info message.
func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeWarn logs a masked warning.
func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeError logs a masked error message.
func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}
