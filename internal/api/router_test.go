package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const examplePlan = `{"calorie_target":2000,"protein_target":150,"days":{"Mon":[{"meal_name":"Breakfast","ingredients":[{"name":"Eggs","quantity":2,"unit":"pcs","protein":12,"calories":140}]}]}}`

var generateEndpoints = []string{
	"/api/v1/spreadsheet",
	"/generate-spreadsheet",
	"/api/v1/spreadsheet/raw",
	"/api/v1/functions/generate-spreadsheet",
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Debug: true, Version: "test"},
		Server: config.ServerConfig{PublicBaseURL: "http://plans.test"},
		Store: config.StoreConfig{
			Driver:     config.StoreDriverMemory,
			TTL:        time.Minute,
			MaxEntries: 10,
		},
		Export: config.ExportConfig{
			DefaultDelivery: config.DeliveryFile,
			TempDir:         t.TempDir(),
			MaxBodyBytes:    1 << 20,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, store.ArtifactStore) {
	t.Helper()
	artifacts := store.NewMemoryStore(cfg.Store.MaxEntries, 0)
	t.Cleanup(func() { artifacts.Close() })
	return SetupRouter(cfg, artifacts), artifacts
}

func perform(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertWorkbook(t *testing.T, data []byte) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Mon"}, f.GetSheetList())
	rows, err := f.GetRows("Mon", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, []string{"Calories (kcal)", "2000", "140", "-1860"}, rows[1])
	assert.Equal(t, []string{"Protein (grams)", "150", "12", "-138"}, rows[2])
	assert.Equal(t, []string{"TOTAL", "", "", "", "12", "140"}, rows[7])
	assert.Equal(t, []string{"Daily Totals", "", "", "", "12", "140"}, rows[9])
}

func TestGenerateOnEveryEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.DefaultDelivery = config.DeliveryStream
	r, _ := newTestRouter(t, cfg)

	for _, path := range generateEndpoints {
		t.Run(path, func(t *testing.T) {
			w := perform(r, http.MethodPost, path, examplePlan, "Content-Type", "application/json")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, mealplan.ContentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="meal_plan.xlsx"`, w.Header().Get("Content-Disposition"))
			assertWorkbook(t, w.Body.Bytes())
		})
	}
}

func TestGenerateFileDeliveryCleansTempDir(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg)

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet", examplePlan)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertWorkbook(t, w.Body.Bytes())

	entries, err := os.ReadDir(cfg.Export.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateBase64Delivery(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet?delivery=base64", examplePlan)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload delivery.Base64Payload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	require.NoError(t, err)
	assertWorkbook(t, data)
}

func TestStoreDeliveryAndDownload(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet?delivery=store", examplePlan)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored delivery.StoredFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	require.True(t, strings.HasPrefix(stored.DownloadURL, "http://plans.test/api/v1/download/"))

	path := strings.TrimPrefix(stored.DownloadURL, "http://plans.test")
	w = perform(r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="meal_plan.xlsx"`, w.Header().Get("Content-Disposition"))
	assertWorkbook(t, w.Body.Bytes())
}

func TestDownloadErrors(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodGet, "/api/v1/download/unknown-id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "File not found or expired")

	w = perform(r, http.MethodGet, "/api/v1/download/", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File ID required")
}

func TestPreflightOnEveryEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	for _, path := range generateEndpoints {
		t.Run(path, func(t *testing.T) {
			// 預檢請求帶非 JSON 內容也不會被解析
			w := perform(r, http.MethodOptions, path, "{not json")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

			w = perform(r, http.MethodOptions, path, "",
				"Origin", "https://planner.example.com",
				"Access-Control-Request-Method", http.MethodPost,
			)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestMethodNotAllowedOnEveryEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	for _, path := range generateEndpoints {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(method+" "+path, func(t *testing.T) {
				w := perform(r, method, path, "")
				assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
				assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
			})
		}
	}
}

func TestClientErrorsOnEveryEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: "", want: "No data provided"},
		{name: "missing target", body: `{"protein_target":150,"days":{"Mon":[]}}`, want: "calorie_target"},
		{name: "wrong type", body: `{"calorie_target":"2000","protein_target":150,"days":{"Mon":[]}}`, want: "calorie_target"},
		{name: "invalid sheet name", body: `{"calorie_target":2000,"protein_target":150,"days":{"Mon/Tue":[]}}`, want: "Mon/Tue"},
	}

	for _, path := range generateEndpoints {
		for _, tt := range tests {
			t.Run(path+" "+tt.name, func(t *testing.T) {
				w := perform(r, http.MethodPost, path, tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), tt.want)
			})
		}
	}
}

func TestUnknownDeliveryMode(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet?delivery=carrier-pigeon", examplePlan)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown delivery mode")
}

func TestBlobDeliveryWithoutTokenFails(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet?delivery=blob", examplePlan)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Missing BLOB_READ_WRITE_TOKEN")
}

func TestBodyTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.MaxBodyBytes = 16
	r, _ := newTestRouter(t, cfg)

	w := perform(r, http.MethodPost, "/api/v1/spreadsheet", examplePlan)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDeduplicationGuard(t *testing.T) {
	cfg := testConfig(t)
	cfg.DedupWindow = time.Minute
	r, _ := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/api/v1/spreadsheet", examplePlan).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodPost, "/api/v1/spreadsheet", examplePlan).Code)
	// 健康檢查不受影響
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/live", "").Code)

	// 未宣告長度且超過上限的請求體仍回 413
	cfg = testConfig(t)
	cfg.DedupWindow = time.Minute
	cfg.Export.MaxBodyBytes = 64
	r, _ = newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/spreadsheet", strings.NewReader(examplePlan))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestRateLimitGuard(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Hour}
	r, _ := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/api/v1/spreadsheet", examplePlan).Code)
	w := perform(r, http.MethodPost, "/generate-spreadsheet", examplePlan)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t))

	w := perform(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"test"`)

	w = perform(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")

	w = perform(r, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
