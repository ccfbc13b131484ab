package logger

import (
	"bytes"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// bodyLimit caps request and response bodies copied into a request log
	bodyLimit = 16 * 1024
	// request log type
	requestType = "request"
)

// headers that carry credentials and never go to the log
var redactedHeaders = []string{"Authorization", "X-Slack-Signature"}

// logRecord for Request Log
type logRecord struct {
	RequestID       string
	Timestamp       time.Time
	HTTPStatusCode  int
	ErrorStackTrace string
	HTTPMethod      string
	RequestPath     string
	RequestQuery    string
	RequestBody     string
	ResponseBody    string
	RetryNum        string
	Headers         http.Header
}

func (record *logRecord) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("type", requestType),
		zap.String("request_id", record.RequestID),
		zap.String("method", record.HTTPMethod),
		zap.String("path", record.RequestPath),
		zap.String("query", record.RequestQuery),
		zap.Int("status", record.HTTPStatusCode),
		zap.Duration("duration", time.Since(record.Timestamp)),
		zap.String("request_body", truncate(record.RequestBody)),
		zap.String("response_body", truncate(record.ResponseBody)),
		zap.Any("headers", record.Headers),
	}
	if record.RetryNum != "" {
		fields = append(fields, zap.String("slack_retry_num", record.RetryNum))
	}
	if record.ErrorStackTrace != "" {
		fields = append(fields, zap.String("stack", record.ErrorStackTrace))
	}
	return fields
}

// GinLogMiddleware writes one structured log entry per request, including panics
func GinLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var record *logRecord
		// overwrite the gin.Context.Writer to log response body
		respLogWriter := &respLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = respLogWriter

		defer func() {
			if record == nil {
				return
			}
			// finally print request log even on panic
			if record.HTTPStatusCode >= http.StatusInternalServerError {
				GetLogger().Error("request", record.fields()...)
			} else {
				GetLogger().Info("request", record.fields()...)
			}
		}()

		defer func() {
			if r := recover(); r != nil {
				if record != nil {
					record.HTTPStatusCode = http.StatusInternalServerError
					record.ErrorStackTrace = string(debug.Stack())
				}
				// throw the panic to the later middlewares
				panic(r)
			}
		}()

		record = initLogRecord(c)

		c.Next()

		record.HTTPStatusCode = c.Writer.Status()
		record.ResponseBody = respLogWriter.body.String()
	}
}

func truncate(s string) string {
	if len(s) <= bodyLimit {
		return s
	}
	return s[:bodyLimit] + "...TRUNCATED"
}

type respLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w respLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w respLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func initLogRecord(c *gin.Context) *logRecord {
	var requestBody string
	if c.Request.Body != nil {
		requestBodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			GetLogger().Warn("failed to read request body for logging", zap.Error(err))
		}
		// reattach request body for later use
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBodyBytes))
		requestBody = string(requestBodyBytes)
	}

	headers := c.Request.Header.Clone()
	for _, h := range redactedHeaders {
		if headers.Get(h) != "" {
			headers.Set(h, "REDACTED")
		}
	}

	record := &logRecord{
		RequestID:    c.GetHeader("X-Request-Id"),
		Timestamp:    time.Now(),
		HTTPMethod:   c.Request.Method,
		RequestPath:  c.Request.URL.Path,
		RequestQuery: c.Request.URL.RawQuery,
		RequestBody:  requestBody,
		RetryNum:     c.GetHeader("X-Slack-Retry-Num"),
		Headers:      headers,
	}

	if lc, ok := lambdacontext.FromContext(c.Request.Context()); ok {
		record.RequestID = lc.AwsRequestID
	}

	return record
}
