package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/axoraweb/seo-backend/internal/jobs"
	"github.com/axoraweb/seo-backend/internal/optimizer"
	"github.com/axoraweb/seo-backend/internal/rewrite"
	"github.com/axoraweb/seo-backend/internal/storage"
	"github.com/axoraweb/seo-backend/internal/testutil"
	gojson "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const sitePage = `<html><head><title>Home</title></head><body><p>Welcome</p></body></html>`

func nilLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	echo *echo.Echo
	jobs *jobs.Manager
}

func newTestServer(t *testing.T, contactRate float64) *testServer {
	t.Helper()

	ws, err := storage.NewWorkspace(t.TempDir(), 0)
	require.NoError(t, err)
	pipeline := optimizer.NewPipeline(optimizer.Options{Defaults: rewrite.DefaultDefaults()})
	manager := jobs.NewManager(jobs.Options{Workspace: ws, Settings: pipeline.Settings})

	deps := &Dependencies{
		Optimizer:    pipeline,
		Jobs:         manager,
		Version:      "test",
		Logger:       nilLogger(),
		ContactRate:  contactRate,
		ContactBurst: 1,
	}
	e := echo.New()
	SetupMiddleware(e, deps.Logger)
	RegisterRoutes(e, NewHandlers(deps), deps)
	return &testServer{echo: e, jobs: manager}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func siteArchive(t *testing.T) []byte {
	return testutil.BuildZip(t,
		testutil.ZipEntry{Name: "index.html", Content: sitePage},
		testutil.ZipEntry{Name: "css/site.css", Content: "/* theme */\nbody { color: red; }"},
	)
}

func uploadRequest(t *testing.T, target string, u testutil.Upload) *http.Request {
	body, contentType := testutil.MultipartBody(t, u)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHandleOptimize(t *testing.T) {
	srv := newTestServer(t, 0)

	req := uploadRequest(t, "/api/seo-optimize", testutil.Upload{
		FileName:    "site.zip",
		FileContent: siteArchive(t),
		Fields:      map[string]string{"projectInfo": `{"businessName":"Acme","targetKeywords":["bakery"]}`},
	})
	rec := srv.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp optimizeResponse
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Result.Files, 2)
	assert.Equal(t, "index.html", resp.Result.Files[0].Name)
	assert.Contains(t, resp.Result.Files[0].Content, "Acme")

	zipped, err := base64.StdEncoding.DecodeString(resp.OptimizedZip)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index.html", "css/site.css"}, testutil.ZipNames(t, zipped))
}

func TestHandleOptimize_Errors(t *testing.T) {
	srv := newTestServer(t, 0)
	empty := testutil.BuildZip(t, testutil.ZipEntry{Name: "assets", Dir: true})

	tests := []struct {
		name       string
		upload     testutil.Upload
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing file",
			upload:     testutil.Upload{Fields: map[string]string{"projectInfo": "{}"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeMissingRequiredInput,
		},
		{
			name:       "not a zip name",
			upload:     testutil.Upload{FileName: "site.tar", FileContent: siteArchive(t)},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidArchiveFormat,
		},
		{
			name:       "corrupt archive",
			upload:     testutil.Upload{FileName: "site.zip", FileContent: []byte("definitely not a zip")},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidArchiveFormat,
		},
		{
			name:       "no files",
			upload:     testutil.Upload{FileName: "site.zip", FileContent: empty},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeNoProcessableFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(uploadRequest(t, "/api/seo-optimize", tt.upload))
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHandleOptimize_MalformedProjectInfoIgnored(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(uploadRequest(t, "/api/seo-optimize", testutil.Upload{
		FileName:    "SITE.ZIP",
		FileContent: siteArchive(t),
		Fields:      map[string]string{"projectInfo": "{not json"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Professional Business")
}

func TestHandleOptimize_Msgpack(t *testing.T) {
	srv := newTestServer(t, 0)
	req := uploadRequest(t, "/api/seo-optimize", testutil.Upload{FileName: "site.zip", FileContent: siteArchive(t)})
	req.Header.Set(echo.HeaderAccept, MIMEApplicationMsgpack)

	rec := srv.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MIMEApplicationMsgpack, rec.Header().Get(echo.HeaderContentType))

	var resp map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["optimizedZip"])
	assert.Contains(t, resp, "result")
}

func TestHandleAnalyze(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(uploadRequest(t, "/api/analyze-project", testutil.Upload{FileName: "site.zip", FileContent: siteArchive(t)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Analysis)
	assert.EqualValues(t, "html", resp.Analysis.ProjectType)
	assert.Len(t, resp.Analysis.PageFiles, 1)
	require.Len(t, resp.Steps, 4)
	assert.EqualValues(t, "completed", resp.Steps[3].Status)
}

func TestHandleAnalyze_InvalidArchive(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(uploadRequest(t, "/api/analyze-project", testutil.Upload{FileName: "site.zip", FileContent: []byte("nope")}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidArchiveFormat, decodeError(t, rec).Code)
}

func TestAnalysisJobs(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(uploadRequest(t, "/api/analyze-project/jobs", testutil.Upload{FileName: "site.zip", FileContent: siteArchive(t)}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var started startAnalysisResponse
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.JobID)
	assert.Equal(t, jobs.StatusProcessing, started.Status)
	assert.Len(t, started.Steps, 4)

	var job jobs.Job
	require.Eventually(t, func() bool {
		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/analyze-project/jobs/"+started.JobID, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		job = jobs.Job{}
		return gojson.Unmarshal(rec.Body.Bytes(), &job) == nil && job.IsTerminal()
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, jobs.StatusComplete, job.Status)
	require.NotNil(t, job.Analysis)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/analyze-project/jobs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)
}

func TestHandleAnalysisStream(t *testing.T) {
	srv := newTestServer(t, 0)
	httpSrv := httptest.NewServer(srv.echo)
	defer httpSrv.Close()

	job := srv.jobs.Start(context.Background(), siteArchive(t), nil)

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/ws/analysis/" + job.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var types []string
	var last WSMessage
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		var msg WSMessage
		require.NoError(t, gojson.Unmarshal(data, &msg))
		types = append(types, msg.Type)
		last = msg
	}

	require.NotEmpty(t, types)
	assert.Equal(t, MsgTypeConnected, types[0])
	assert.Equal(t, MsgTypeComplete, last.Type)

	var final jobs.Job
	require.NoError(t, gojson.Unmarshal(last.Payload, &final))
	assert.Equal(t, job.ID, final.ID)
	assert.NotNil(t, final.Analysis)
}

func TestHandleAnalysisStream_UnknownJob(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/ws/analysis/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func contactRequestBody(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandleContact(t *testing.T) {
	srv := newTestServer(t, 0)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantText   string
	}{
		{"valid", `{"name":"Ann","email":"ann@example.com","message":"Hi"}`, http.StatusOK, contactThanks},
		{"missing name", `{"email":"ann@example.com","message":"Hi"}`, http.StatusBadRequest, "Name, email, and message are required"},
		{"blank message", `{"name":"Ann","email":"ann@example.com","message":"  "}`, http.StatusBadRequest, "Name, email, and message are required"},
		{"bad email", `{"name":"Ann","email":"ann.example.com","message":"Hi"}`, http.StatusBadRequest, "valid email"},
		{"invalid json", `{"name":`, http.StatusBadRequest, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(contactRequestBody(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}

func TestHandleContact_RateLimited(t *testing.T) {
	srv := newTestServer(t, 0.01)
	body := `{"name":"Ann","email":"ann@example.com","message":"Hi"}`

	rec := srv.do(contactRequestBody(body))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(contactRequestBody(body))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, rec).Code)
}

func TestHandleHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler("1.2.3")
	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var got healthResponse
		require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "1.2.3", got.Version)
		assert.GreaterOrEqual(t, got.UptimeSeconds, int64(0))
	}
}

func TestHandleHealth_Msgpack(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderAccept, MIMEApplicationMsgpack)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, NewHealthHandler("1.2.3").HandleHealth(c))
	assert.Equal(t, MIMEApplicationMsgpack, rec.Header().Get(echo.HeaderContentType))

	var got map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1.2.3", got["version"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("wrapped: %w", ErrMissingRequiredInput), http.StatusBadRequest, CodeMissingRequiredInput},
		{fmt.Errorf("opening: %w", archive.ErrInvalidArchiveFormat), http.StatusBadRequest, CodeInvalidArchiveFormat},
		{optimizer.ErrNoProcessableFiles, http.StatusBadRequest, CodeNoProcessableFiles},
		{jobs.ErrJobNotFound, http.StatusNotFound, CodeNotFound},
		{NewValidationError("email", "bad"), http.StatusBadRequest, CodeValidation},
		{errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := FromError(tt.err, "fallback")
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestErrorHandler_EchoErrors(t *testing.T) {
	srv := newTestServer(t, 0)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	ErrorHandler(nilLogger())(errors.New("boom"), e.NewContext(req, rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "boom")
}
