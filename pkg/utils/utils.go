package utils

import (
	"bytes"
	"context"
	"html"
	"runtime"
	"strings"
	"unicode/utf8"

	"deal-checker/pkg/logger"
)

func CleanToValidUTF8(s string) string {
	var buf bytes.Buffer
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		buf.WriteRune(r)
		i += size
	}
	return buf.String()
}

// SafeText unescapes HTML entities and drops invalid UTF-8, which pasted
// listing text often carries.
func SafeText(text string) string {
	return strings.TrimSpace(CleanToValidUTF8(html.UnescapeString(text)))
}

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", logger.StringField("panic", stringify(r)))
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// ShouldContinue reports whether ctx is still live, logging the caller when
// it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		pc, _, _, ok := runtime.Caller(1)
		funcName := "unknown"
		if ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				parts := strings.Split(fn.Name(), "/")
				funcName = parts[len(parts)-1]
			}
		}

		log.Warn("Context cancelled",
			logger.StringField("caller", funcName),
		)
		return false
	default:
		return true
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	default:
		return "non-string panic value"
	}
}
