package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/announcement-api/internal/dto"
	"github.com/noah-isme/announcement-api/internal/middleware"
	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

type announcementServiceMock struct {
	dispatchResp   *dto.DispatchAnnouncementResult
	dispatchErr    error
	historyResp    []models.AnnouncementSummary
	historyHit     bool
	historyErr     error
	lastReq        dto.DispatchAnnouncementRequest
	lastSender     string
	dispatchCalled bool
}

func (m *announcementServiceMock) Dispatch(ctx context.Context, req dto.DispatchAnnouncementRequest, sender string) (*dto.DispatchAnnouncementResult, error) {
	m.dispatchCalled = true
	m.lastReq = req
	m.lastSender = sender
	return m.dispatchResp, m.dispatchErr
}

func (m *announcementServiceMock) History(ctx context.Context) ([]models.AnnouncementSummary, bool, error) {
	return m.historyResp, m.historyHit, m.historyErr
}

type exporterMock struct {
	file       *dto.ExportFile
	err        error
	lastFormat dto.ExportFormat
}

func (m *exporterMock) ExportHistory(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

type responseEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   *appErrors.Error       `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func postDispatch(handler *AnnouncementHandler, body string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/announcements", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	handler.Dispatch(c)
	return w
}

func TestAnnouncementHandlerDispatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{dispatchResp: &dto.DispatchAnnouncementResult{
		ID:        "ann-1",
		Title:     "Maintenance",
		Delivered: 1,
		Failed:    1,
		Failures:  []models.DeliveryFailure{{RecipientID: "u2", Reason: "recipient not found"}},
	}}
	handler := NewAnnouncementHandler(mockSvc, &exporterMock{})

	body := `{"title":"Maintenance","body":"System down 10pm","targeting":{"type":"manual","userIds":["u1","u2"]}}`
	w := postDispatch(handler, body, &models.JWTClaims{UserID: "user-9", Email: "ops@example.com"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.dispatchCalled)
	assert.Equal(t, "ops@example.com", mockSvc.lastSender)
	require.NotNil(t, mockSvc.lastReq.Targeting)
	assert.Equal(t, models.TargetingManual, mockSvc.lastReq.Targeting.Type)
	assert.Equal(t, []string{"u1", "u2"}, mockSvc.lastReq.Targeting.UserIDs)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "announcement sent to 1 recipient(s)", env.Message)
	var result dto.DispatchAnnouncementResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "u2", result.Failures[0].RecipientID)
}

func TestAnnouncementHandlerDispatchAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{dispatchResp: &dto.DispatchAnnouncementResult{ID: "ann-1"}}
	handler := NewAnnouncementHandler(mockSvc, &exporterMock{})

	w := postDispatch(handler, `{"title":"t","body":"b","targeting":{"type":"all"}}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, mockSvc.lastSender)
}

func TestAnnouncementHandlerDispatchInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mockSvc, &exporterMock{})

	w := postDispatch(handler, `{"title":"t"`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.dispatchCalled)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestAnnouncementHandlerDispatchServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{appErrors.ErrMissingRecipients, http.StatusBadRequest, "MISSING_RECIPIENTS"},
		{appErrors.ErrDependencyUnavailable, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"},
		{appErrors.Internal(assert.AnError, "failed to deliver announcement"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		handler := NewAnnouncementHandler(&announcementServiceMock{dispatchErr: tc.err}, &exporterMock{})
		w := postDispatch(handler, `{"title":"t","body":"b","targeting":{"type":"all"}}`, nil)
		require.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.code, decodeEnvelope(t, w).Error.Code)
	}
}

func TestAnnouncementHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{
		historyResp: []models.AnnouncementSummary{{ID: "ann-2", Title: "Second"}, {ID: "ann-1", Title: "First"}},
		historyHit:  true,
	}
	handler := NewAnnouncementHandler(mockSvc, &exporterMock{})

	router := gin.New()
	router.Use(middleware.ResponseMeta())
	router.GET("/announcements/history", handler.History)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/announcements/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var items []models.AnnouncementSummary
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "ann-2", items[0].ID)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestAnnouncementHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := &exporterMock{file: &dto.ExportFile{Filename: "announcements.csv", ContentType: "text/csv", Content: []byte("a,b\n")}}
	handler := NewAnnouncementHandler(&announcementServiceMock{}, exporter)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/announcements/history/export?format=csv", nil)
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, exporter.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "announcements.csv")
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestAnnouncementHandlerPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnnouncementHandler(&announcementServiceMock{}, &exporterMock{})
	handler.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/announcements/test", nil)
	handler.Ping(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2024-05-10T12:00:00Z", body["timestamp"])
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		db     Pinger
		status int
	}{
		{nil, http.StatusServiceUnavailable},
		{pingerStub{err: assert.AnError}, http.StatusServiceUnavailable},
		{pingerStub{}, http.StatusOK},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/ready", nil)
		NewMetricsHandler(nil, tc.db).Ready(c)
		assert.Equal(t, tc.status, w.Code)
	}
}
