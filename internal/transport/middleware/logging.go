package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// maxLoggedBody caps how much of a request or response body reaches the log.
const maxLoggedBody = 4 << 10

const (
	maskCredential = "[FILTERED]"
	maskPersonal   = "[PII]"
)

// credentialKeys are matched as substrings of lower-cased header and JSON keys.
var credentialKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"credential",
}

// personalKeys are employee fields that identify or describe a person beyond
// name and code. Matched exactly on the JSON key.
var personalKeys = map[string]bool{
	"mobilenumber":     true,
	"email":            true,
	"address":          true,
	"emergencycontact": true,
	"salary":           true,
	"bloodgroup":       true,
	"maritalstatus":    true,
}

// LoggingMiddleware logs each request and its response. Credentials and
// employee personal data are masked in headers and JSON bodies.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())
			if reqID == "" {
				reqID = w.Header().Get("X-Trace-ID")
			}

			logRequest(logger, r, reqID)

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&limitedWriter{buf: &body, max: maxLoggedBody})

			next.ServeHTTP(ww, r)

			logResponse(r, logger, ww, body.Bytes(), time.Since(start), reqID)
		})
	}
}

// limitedWriter keeps the first max bytes and reports every write as whole.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

func logRequest(logger *slog.Logger, r *http.Request, reqID string) {
	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	logger.Info("incoming request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", maskHeaders(r.Header),
		"body", maskBody(bodyBytes),
	)
}

func logResponse(r *http.Request, logger *slog.Logger, ww middleware.WrapResponseWriter, body []byte, duration time.Duration, reqID string) {
	statusCode := ww.Status()
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	logLevel := slog.LevelInfo
	switch {
	case statusCode >= 500:
		logLevel = slog.LevelError
	case statusCode >= 400:
		logLevel = slog.LevelWarn
	}

	logger.Log(r.Context(), logLevel, "response",
		"request_id", reqID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", ww.BytesWritten(),
		"body", maskBody(body),
	)
}

func isCredentialKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range credentialKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for name, values := range headers {
		if isCredentialKey(name) {
			masked[name] = maskCredential
			continue
		}
		masked[name] = strings.Join(values, ", ")
	}
	return masked
}

// maskBody renders a body for the log. Bodies that are not JSON, including
// ones cut short by maxLoggedBody, are only described by size.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[non-JSON body, " + strconv.Itoa(len(body)) + " bytes]"
	}

	out, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[unloggable body]"
	}
	return string(out)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		masked := make(map[string]interface{}, len(v))
		for key, value := range v {
			switch {
			case isCredentialKey(key):
				masked[key] = maskCredential
			case personalKeys[strings.ToLower(key)]:
				masked[key] = maskPersonal
			default:
				masked[key] = maskJSON(value)
			}
		}
		return masked
	case []interface{}:
		masked := make([]interface{}, len(v))
		for i, item := range v {
			masked[i] = maskJSON(item)
		}
		return masked
	default:
		return v
	}
}
