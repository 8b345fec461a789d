package httptransport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/monitoring"
	"logicleafs/backend/internal/service"
	"logicleafs/backend/internal/smtp"
	"logicleafs/backend/internal/storage"
	"logicleafs/backend/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubMailer 记录每次发送，并返回预设的错误
type stubMailer struct {
	mu    sync.Mutex
	err   error
	sent  [][]byte
	creds []smtp.Credentials
}

func (m *stubMailer) Send(_ context.Context, creds smtp.Credentials, _ string, _ []string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	m.creds = append(m.creds, creds)
	return nil
}

func (m *stubMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	router  *gin.Engine
	store   *memory.Store
	mailer  *stubMailer
	metrics *monitoring.Metrics
}

func testConfig(mail config.MailConfig) *config.Config {
	return &config.Config{
		Mail: mail,
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func completeMail() config.MailConfig {
	return config.MailConfig{
		SenderEmail:    "sender@example.com",
		SenderPassword: "app-password",
		RecipientEmail: "owner@example.com",
	}
}

// newTestEnv 使用内存存储；withStore 为 false 时模拟存储初始化失败
func newTestEnv(t *testing.T, mail config.MailConfig, withStore bool, mailErr error) *testEnv {
	t.Helper()

	env := &testEnv{
		mailer:  &stubMailer{err: mailErr},
		metrics: monitoring.NewMetrics(prometheus.NewRegistry()),
	}

	var store storage.Store
	if withStore {
		env.store = memory.NewStore()
		store = env.store
	}

	cfg := testConfig(mail)
	svc := service.NewSubmissionService(cfg.Mail, store, env.mailer, zap.NewNop())
	env.router = NewRouter(RouterDependencies{
		Config:            cfg,
		SubmissionService: svc,
		Metrics:           env.metrics,
		Logger:            zap.NewNop(),
	})
	return env
}

func janeForm() url.Values {
	return url.Values{
		"Name":    {"Jane Doe"},
		"Email":   {"jane@example.com"},
		"Phone":   {"555-1234"},
		"Subject": {"Inquiry"},
		"Message": {"Hello"},
	}
}

func postForm(router *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	// 即使邮件和存储都没有配置也返回 200
	env := newTestEnv(t, config.MailConfig{}, false, nil)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logic Leafs API server is running"}`, rec.Body.String())
}

func TestSubmitForm_Success(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	rec := postForm(env.router, "/submit-form", janeForm())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success","message":"Form submitted successfully!"}`, rec.Body.String())

	records := env.store.List()
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].Name)
	assert.Equal(t, "Hello", records[0].Message)
	assert.False(t, records[0].Timestamp.IsZero())

	require.Equal(t, 1, env.mailer.count())
	assert.True(t, strings.HasPrefix(string(env.mailer.sent[0]), "Subject: New Contact Submission from Jane Doe\n\n"))
	assert.Equal(t, smtp.Credentials{Username: "sender@example.com", Password: "app-password"}, env.mailer.creds[0])
}

func TestSubmitForm_Multipart(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range janeForm() {
		require.NoError(t, w.WriteField(key, values[0]))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit-form", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.store.Count())
}

func TestSubmitForm_Failures(t *testing.T) {
	tests := []struct {
		name        string
		mail        config.MailConfig
		withStore   bool
		mailErr     error
		wantDetail  string
		wantRecords int
	}{
		{
			name:       "mail settings missing",
			mail:       config.MailConfig{SenderEmail: "sender@example.com", SenderPassword: "app-password"},
			withStore:  true,
			wantDetail: MsgNotConfigured,
		},
		{
			name:       "store unavailable",
			mail:       completeMail(),
			withStore:  false,
			wantDetail: MsgNoDatabase,
		},
		{
			name:        "relay rejects credentials",
			mail:        completeMail(),
			withStore:   true,
			mailErr:     fmt.Errorf("%w: 535 5.7.8 Username and Password not accepted", smtp.ErrAuthFailed),
			wantDetail:  MsgAuthFailed,
			wantRecords: 1,
		},
		{
			name:        "relay unreachable",
			mail:        completeMail(),
			withStore:   true,
			mailErr:     errors.New("dial relay smtp.gmail.com:465: connection refused"),
			wantDetail:  MsgInternal,
			wantRecords: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.mail, tt.withStore, tt.mailErr)

			rec := postForm(env.router, "/submit-form", janeForm())

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"detail":%q}`, tt.wantDetail), rec.Body.String())
			if env.store != nil {
				assert.Equal(t, tt.wantRecords, env.store.Count())
			}
			assert.Equal(t, 0, env.mailer.count())
		})
	}
}

func TestSubmitForm_AuthFailureDetailExact(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, smtp.ErrAuthFailed)

	rec := postForm(env.router, "/submit-form", janeForm())

	assert.Equal(t, `{"detail":"Server email error: Authentication failed."}`, rec.Body.String())
}

func TestSubmitForm_MissingField(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	form := janeForm()
	form.Del("Name")
	rec := postForm(env.router, "/submit-form", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"detail":[{"loc":["body","Name"],"msg":"field required","type":"value_error.missing"}]}`,
		rec.Body.String())
	assert.Equal(t, 0, env.store.Count())
	assert.Equal(t, 0, env.mailer.count())
}

func TestSubmitForm_QueryParametersIgnored(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	form := janeForm()
	form.Del("Message")
	rec := postForm(env.router, "/submit-form?Message=from-query", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loc":["body","Message"]`)
}

func TestSubmitForm_NotIdempotent(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	for i := 0; i < 2; i++ {
		rec := postForm(env.router, "/submit-form", janeForm())
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, env.store.Count())
	assert.Equal(t, 2, env.mailer.count())
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	req := httptest.NewRequest(http.MethodOptions, "/submit-form", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-requested-with,content-type")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "x-requested-with,content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Values("Vary"), "Access-Control-Request-Headers")
	assert.Equal(t, "http://localhost:5500", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, 0, env.store.Count())
}

func TestCORS_SimpleRequest(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	req := httptest.NewRequest(http.MethodPost, "/submit-form", strings.NewReader(janeForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://logicleafs.example")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://logicleafs.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("store available", func(t *testing.T) {
		env := newTestEnv(t, completeMail(), true, nil)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		env := newTestEnv(t, completeMail(), false, nil)

		ready := httptest.NewRecorder()
		env.router.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		live := httptest.NewRecorder()
		env.router.ServeHTTP(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
		assert.Equal(t, http.StatusOK, live.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, smtp.ErrAuthFailed)
	postForm(env.router, "/submit-form", janeForm())

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `logicleafs_submissions_total{result="auth_failed"} 1`)
	assert.Contains(t, rec.Body.String(), "logicleafs_store_available 1")
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	notFound := httptest.NewRecorder()
	env.router.ServeHTTP(notFound, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, notFound.Body.String())

	wrongMethod := httptest.NewRecorder()
	env.router.ServeHTTP(wrongMethod, httptest.NewRequest(http.MethodGet, "/submit-form", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, wrongMethod.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, wrongMethod.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, completeMail(), true, nil)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
