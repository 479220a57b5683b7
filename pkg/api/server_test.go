package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/config"
	"github.com/dd0wney/workpairs/pkg/metrics"
)

const scenarioCSV = `EmpID,ProjectID,DateFrom,DateTo
143,12,2013-01-11,2014-05-01
218,12,2013-05-01,2014-05-01
143,10,2009-01-01,2012-05-27
218,10,2009-01-01,2012-05-27
abc,10,2009-01-01,2012-05-27
`

var testToday = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	registry *metrics.Registry
}

func newTestServer(t *testing.T, environ map[string]string) *testServer {
	t.Helper()
	if environ == nil {
		environ = map[string]string{}
	}
	cfg, err := config.ParseWith(env.Options{Environment: environ})
	require.NoError(t, err)

	registry := metrics.NewRegistry()
	s := NewServer(cfg,
		WithMetrics(registry),
		WithClock(clock.NewFakeClock(testToday)),
	)
	return &testServer{Server: s, registry: registry}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile(uploadFormField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file attached"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeUpload(t *testing.T, rr *httptest.ResponseRecorder) UploadResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder, status int) ErrorResponse {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, status, resp.Code)
	assert.Equal(t, http.StatusText(status), resp.Error)
	return resp
}

func TestUploadCSV(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(uploadRequest(t, "/api/upload", "employees.csv", []byte(scenarioCSV)))
	resp := decodeUpload(t, rr)

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	require.Len(t, resp.EmployeeProjects, 4)
	assert.Equal(t, AssignmentResponse{EmployeeID: 143, ProjectID: 12, DateFrom: "2013-01-11", DateTo: "2014-05-01"},
		resp.EmployeeProjects[0])

	require.NotNil(t, resp.LongestWorkingPair)
	assert.Equal(t, int64(143), resp.LongestWorkingPair.EmployeeID1)
	assert.Equal(t, int64(218), resp.LongestWorkingPair.EmployeeID2)
	assert.Equal(t, int64(1609), resp.LongestWorkingPair.DaysWorkedTogether)
	assert.Equal(t, int64(10), resp.LongestWorkingPair.ProjectID)
	require.Len(t, resp.Pairs, 1)

	require.Len(t, resp.SkippedRows, 2)
	assert.Equal(t, 1, resp.SkippedRows[0].Line)
	assert.Equal(t, 6, resp.SkippedRows[1].Line)
	assert.Equal(t, "non_numeric_id", resp.SkippedRows[1].Reason)

	assert.Equal(t, "brute-force", resp.Stats.Strategy)
	assert.Equal(t, 4, resp.Stats.Records)
	assert.Equal(t, 2, resp.Stats.Skipped)
	assert.Equal(t, 1, resp.Stats.Pairs)
}

func TestUploadFormPostPath(t *testing.T) {
	ts := newTestServer(t, nil)

	req := uploadRequest(t, "/upload", "employees.csv", []byte(scenarioCSV))
	req.Header.Set("Origin", "http://localhost:8000")
	rr := ts.do(req)
	resp := decodeUpload(t, rr)

	require.NotNil(t, resp.LongestWorkingPair)
	assert.Equal(t, int64(1609), resp.LongestWorkingPair.DaysWorkedTogether)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	resp2 := decodeError(t, ts.do(uploadRequest(t, "/upload", "empty.csv", nil)), http.StatusBadRequest)
	assert.Equal(t, "File is required.", resp2.Message)

	small := newTestServer(t, map[string]string{"MAX_UPLOAD_SIZE": "16"})
	decodeError(t, small.do(uploadRequest(t, "/upload", "employees.csv", []byte(scenarioCSV))),
		http.StatusRequestEntityTooLarge)
}

func TestUploadStrategies(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, strategy := range []string{"brute-force", "sweep-line", "parallel", "Sweep-Line"} {
		t.Run(strategy, func(t *testing.T) {
			rr := ts.do(uploadRequest(t, "/api/upload?strategy="+strategy, "employees.csv", []byte(scenarioCSV)))
			resp := decodeUpload(t, rr)

			assert.Equal(t, strings.ToLower(strategy), resp.Stats.Strategy)
			require.NotNil(t, resp.LongestWorkingPair)
			assert.Equal(t, int64(1609), resp.LongestWorkingPair.DaysWorkedTogether)
		})
	}
}

func TestUploadOpenEndedUsesToday(t *testing.T) {
	ts := newTestServer(t, nil)
	csv := "1,10,2024-03-01,NULL\n2,10,2024-03-10,\n"

	resp := decodeUpload(t, ts.do(uploadRequest(t, "/api/upload", "open.csv", []byte(csv))))

	require.NotNil(t, resp.LongestWorkingPair)
	assert.Equal(t, int64(6), resp.LongestWorkingPair.DaysWorkedTogether)
	assert.Equal(t, "2024-03-15", resp.EmployeeProjects[0].DateTo)
}

func TestUploadNoPairs(t *testing.T) {
	ts := newTestServer(t, nil)
	csv := "143,12,2013-01-11,2014-05-01\n218,13,2013-05-01,2014-05-01\n"

	rr := ts.do(uploadRequest(t, "/api/upload", "employees.csv", []byte(csv)))
	resp := decodeUpload(t, rr)

	assert.Nil(t, resp.LongestWorkingPair)
	assert.Empty(t, resp.Pairs)
	assert.Contains(t, rr.Body.String(), `"longestWorkingPair":null`)
	assert.Contains(t, rr.Body.String(), `"pairs":[]`)
	assert.Contains(t, rr.Body.String(), `"skippedRows":[]`)
}

func TestUploadXLSX(t *testing.T) {
	ts := newTestServer(t, nil)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"EmpID", "ProjectID", "DateFrom", "DateTo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1, 7, "2020-01-01", "2020-01-31"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2, 7, "2020-01-21", "2020-02-28"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	resp := decodeUpload(t, ts.do(uploadRequest(t, "/api/upload", "employees.xlsx", buf.Bytes())))

	require.NotNil(t, resp.LongestWorkingPair)
	assert.Equal(t, int64(11), resp.LongestWorkingPair.DaysWorkedTogether)

	body := scrape(t, ts)
	assert.Contains(t, body, `workpairs_files_loaded_total{format="xlsx",status="ok"} 1`)
}

func TestUploadMissingFile(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := decodeError(t, ts.do(uploadRequest(t, "/api/upload", "", nil)), http.StatusBadRequest)
	assert.Equal(t, "File is required.", resp.Message)
}

func TestUploadEmptyFile(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := decodeError(t, ts.do(uploadRequest(t, "/api/upload", "empty.csv", nil)), http.StatusBadRequest)
	assert.Equal(t, "File is required.", resp.Message)
}

func TestUploadNotMultipart(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(scenarioCSV))
	req.Header.Set("Content-Type", "text/csv")

	decodeError(t, ts.do(req), http.StatusBadRequest)
}

func TestUploadValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		target   string
		filename string
		contains string
	}{
		{"unknown strategy", "/api/upload?strategy=quantum", "employees.csv", "Strategy"},
		{"unsupported extension", "/api/upload", "employees.pdf", "extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(uploadRequest(t, tt.target, tt.filename, []byte(scenarioCSV)))
			resp := decodeError(t, rr, http.StatusBadRequest)
			assert.Contains(t, resp.Message, tt.contains)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t, map[string]string{"MAX_UPLOAD_SIZE": "16"})

	resp := decodeError(t, ts.do(uploadRequest(t, "/api/upload", "employees.csv", []byte(scenarioCSV))),
		http.StatusRequestEntityTooLarge)
	assert.Contains(t, resp.Message, "16 bytes")
}

func TestUploadUndecodableFile(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(uploadRequest(t, "/api/upload", "broken.xlsx", []byte("definitely not a zip archive")))
	resp := decodeError(t, rr, http.StatusInternalServerError)

	assert.Equal(t, "file processing failed", resp.Message)
	assert.Contains(t, scrape(t, ts), `workpairs_files_loaded_total{format="xlsx",status="error"} 1`)
}

func TestUploadGzip(t *testing.T) {
	ts := newTestServer(t, nil)

	var csv strings.Builder
	for emp := 1; emp <= 40; emp++ {
		fmt.Fprintf(&csv, "%d,1,2020-01-01,2020-12-31\n", emp)
	}
	req := uploadRequest(t, "/api/upload", "many.csv", []byte(csv.String()))
	req.Header.Set("Accept-Encoding", "gzip")

	rr := ts.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Len(t, resp.Pairs, 40*39/2)
}

func TestUploadCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "http://localhost:8000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := ts.do(req)

	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "http://localhost:8000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = ts.do(req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadCORSConfiguredOrigins(t *testing.T) {
	ts := newTestServer(t, map[string]string{"CORS_ALLOWED_ORIGINS": "https://app.example, https://admin.example"})

	req := uploadRequest(t, "/api/upload", "employees.csv", []byte(scenarioCSV))
	req.Header.Set("Origin", "https://admin.example")
	rr := ts.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://admin.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

func scrape(t *testing.T, ts *testServer) string {
	t.Helper()
	rr := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	decodeUpload(t, ts.do(uploadRequest(t, "/api/upload?strategy=sweep-line", "employees.csv", []byte(scenarioCSV))))
	ts.do(httptest.NewRequest(http.MethodGet, "/no/such/route", nil))

	body := scrape(t, ts)
	assert.Contains(t, body, `workpairs_computations_total{status="ok",strategy="sweep-line"} 1`)
	assert.Contains(t, body, `workpairs_files_loaded_total{format="csv",status="ok"} 1`)
	assert.Contains(t, body, `workpairs_rows_skipped_total{reason="non_numeric_id"} 2`)
	assert.Contains(t, body, `path="/api/upload"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `/no/such/route`)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rr := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, "%s: %s", path, rr.Body.String())
	}

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"engine"`)

	ts.Drain()
	assert.True(t, ts.Draining())

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	rr = ts.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSelfTest(t *testing.T) {
	for _, strategy := range []string{"auto", "brute-force", "sweep-line", "parallel"} {
		ts := newTestServer(t, map[string]string{"ENGINE_STRATEGY": strategy})
		assert.NoError(t, ts.selfTest(), strategy)
	}
}

func TestUploadForm(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/upload", "/home"} {
		rr := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), `action="/api/upload"`)
		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	}

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/home", rr.Header().Get("Location"))
}

func TestUploadWrongMethod(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/api/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
