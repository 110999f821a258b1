package keautil

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func UTCNow() time.Time {
	return time.Now().UTC()
}

// Returns a pointer to a copy of the given value. It is handy when the
// optional configuration parameters are represented as pointers.
func Ptr[T any](value T) *T {
	return &value
}

// Returns the value the pointer points to or the default value if the
// pointer is nil.
func ValueOr[T any](ptr *T, defaultValue T) T {
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// Configures the global logger. The level is one of the logrus level names
// (e.g., debug, info, warning). Empty level defaults to info.
func SetupLogging(output io.Writer, level string) error {
	logLevel := log.InfoLevel
	if level != "" {
		var err error
		logLevel, err = log.ParseLevel(strings.ToLower(level))
		if err != nil {
			return errors.Wrapf(err, "invalid log level: %s", level)
		}
	}
	log.SetLevel(logLevel)
	log.SetOutput(output)
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			// Grab filename and line of current frame and add it to log entry
			_, filename := path.Split(f.File)
			return "", fmt.Sprintf("%20v:%-5d", filename, f.Line)
		},
	})
	return nil
}

// Hides the values of the sensitive parameters (passwords, secrets and
// tokens) in the configuration returned by Kea before it is displayed.
// The key comparison is case-insensitive. The hidden values are set to
// nil.
func HideSensitiveData(obj *map[string]any) {
	hideSensitiveData(*obj)
}

func hideSensitiveData(value any) {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			lowerKey := strings.ToLower(key)
			if lowerKey == "password" || lowerKey == "secret" || lowerKey == "token" {
				typed[key] = nil
				continue
			}
			hideSensitiveData(nested)
		}
	case []any:
		for _, nested := range typed {
			hideSensitiveData(nested)
		}
	}
}
