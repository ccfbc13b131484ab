package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"slack_topic_relay/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cls Classifier, exec ActionExecutor) *gin.Engine {
	t.Helper()
	return NewRouter(NewSlackHandler(newTestDispatcher(t, cls, exec)), testSigningSecret)
}

func signedRequest(t *testing.T, body []byte, ts time.Time) *http.Request {
	t.Helper()
	timestamp := strconv.FormatInt(ts.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleRequest_Challenge(t *testing.T) {
	r := newTestRouter(t, &stubClassifier{}, &recordingExecutor{})

	w := serve(r, signedRequest(t, []byte(`{"type":"url_verification","challenge":"abc123","token":"x"}`), time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"challenge":"abc123"}`, w.Body.String())
}

func TestHandleRequest_AcknowledgesEveryEvent(t *testing.T) {
	cls := &stubClassifier{err: assert.AnError}
	r := newTestRouter(t, cls, &recordingExecutor{})

	bodies := map[string][]byte{
		"empty":           nil,
		"not json":        []byte(`not json`),
		"classify failed": callbackPayload(t, paydayMessage("1.1")),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := serve(r, signedRequest(t, body, time.Now()))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())
		})
	}
}

func TestHandleRequest_ProcessesMessage(t *testing.T) {
	cls := &stubClassifier{actions: []model.Action{model.SendDirectMessage{UserID: "U1", Message: "when do we get paid"}}}
	exec := &recordingExecutor{}
	r := newTestRouter(t, cls, exec)

	body := callbackPayload(t, paydayMessage("1712345678.000100"))
	w := serve(r, signedRequest(t, body, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	// a Slack redelivery carries the same event and a retry header
	retry := signedRequest(t, body, time.Now())
	retry.Header.Set("X-Slack-Retry-Num", "1")
	retry.Header.Set("X-Slack-Retry-Reason", "http_timeout")
	retried := slackRetryDeliveriesTotal.WithLabelValues("http_timeout")
	before := testutil.ToFloat64(retried)

	w = serve(r, retry)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(retried))

	assert.Equal(t, 1, cls.Calls())
	assert.Len(t, exec.Executed(), 1)
}

func TestVerifySlackSignature(t *testing.T) {
	cls := &stubClassifier{}
	r := newTestRouter(t, cls, &recordingExecutor{})
	body := callbackPayload(t, paydayMessage("1.1"))

	t.Run("bad signature", func(t *testing.T) {
		req := signedRequest(t, body, time.Now())
		req.Header.Set("X-Slack-Signature", "v0=deadbeef")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("missing headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader(body))
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		req := signedRequest(t, body, time.Now().Add(-time.Hour))
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("tampered body", func(t *testing.T) {
		req := signedRequest(t, body, time.Now())
		req.Body = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"type":"url_verification","challenge":"x"}`))).Body
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	assert.Zero(t, cls.Calls())
}

func TestRouter_AuxiliaryRoutes(t *testing.T) {
	r := newTestRouter(t, &stubClassifier{}, &recordingExecutor{})
	serve(r, signedRequest(t, []byte(`{"type":"url_verification","challenge":"abc123"}`), time.Now()))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/debug", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Debug log printed to console.", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "topic_relay_events_total")
}

type stubResolver map[string]string

func (s stubResolver) ResolveChannel(_ context.Context, name string) (string, error) {
	if id, ok := s[name]; ok {
		return id, nil
	}
	return "", assert.AnError
}

func TestResolveWatchChannels(t *testing.T) {
	resolver := stubResolver{"payroll": "C1", "hr": "C2"}

	ids, err := resolveWatchChannels(context.Background(), resolver, []string{"payroll", "hr"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, ids)

	ids, err = resolveWatchChannels(context.Background(), resolver, nil)
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = resolveWatchChannels(context.Background(), resolver, []string{"payroll", "missing"})
	assert.ErrorContains(t, err, "missing")
}
