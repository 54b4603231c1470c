package server

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sampleConfig = `logging:
  level: info
output:
  format: pretty
availability:
  - name: Reference
    active: true
    baselineAvailability: 70
    sustainmentIncrease: 15
    readinessFloor: 65
tariff:
  - name: Reference
    active: true
    horizonYears: 4
    budgetCap: 1000
`

func newTestHandler() http.Handler {
	return NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "1.2.3")
}

func TestHandleAvailabilityDefaults(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/availability", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "63.5", resp.Headline)
	assert.Len(t, resp.Result.Curve, constants.CurveSamples)
	assert.Nil(t, resp.BreakEven)
	assert.NotEmpty(t, resp.Duration)
}

func TestHandleAvailabilityBreakEven(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/availability", map[string]interface{}{
		"readinessFloor": 65,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.BreakEven)

	want := (1/0.9 - 1) * 100
	assert.InDelta(t, want, resp.BreakEven.Value, 0.02)
	assert.True(t, resp.BreakEven.Converged)
	require.NotEmpty(t, resp.BreakEven.Notes)
	assert.Contains(t, resp.BreakEven.Notes[0], "breaches the readiness floor")
}

func TestHandleAvailabilityNonlinear(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/availability", map[string]interface{}{
		"elasticityMode": "nonlinear",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	fraction := 1 - 1/1.15
	want := 70 - math.Pow(fraction, 1.8)*100
	assert.InDelta(t, want, resp.Result.NewAvailabilityPct, 1e-9)
}

func TestHandleAvailabilityValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{"Baseline negative", map[string]interface{}{"baselineAvailability": -1}, "baselineAvailability must be at least 0"},
		{"Baseline above one hundred", map[string]interface{}{"baselineAvailability": 101}, "baselineAvailability must be at most 100"},
		{"Increase too high", map[string]interface{}{"sustainmentIncrease": 120}, "sustainmentIncrease must be at most 100"},
		{"Zero elasticity", map[string]interface{}{"linearElasticity": 0}, "linearElasticity must be greater than 0"},
		{"Exponent below one", map[string]interface{}{"nonlinearExponent": 0.5}, "nonlinearExponent must be at least 1"},
		{"Unknown mode", map[string]interface{}{"elasticityMode": "cubic"}, "elasticityMode must be one of"},
		{"Unknown field", map[string]interface{}{"fleetSize": 12}, "failed to decode request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, newTestHandler(), "/api/availability", tt.payload)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, decodeError(t, rr), tt.want)
		})
	}
}

func TestHandleTariffProjection(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/tariff", map[string]interface{}{
		"horizonYears": 4,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp tariffResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Projection.Years, 4)
	first := resp.Projection.Years[0]
	assert.Equal(t, constants.DefaultStartYear, first.Year)
	assert.Equal(t, 8.10, first.ProcurementImpact)
	assert.Equal(t, 225.00, first.SustainmentImpact)
	assert.Equal(t, 233.10, first.TotalImpact)
	assert.Contains(t, resp.CSV, `"2025","8.10","225.00","233.10"`)
	assert.Nil(t, resp.BudgetCap)
}

func TestHandleTariffBudgetCap(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/tariff", map[string]interface{}{
		"horizonYears": 4,
		"budgetCap":    500,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp tariffResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.BudgetCap)

	assert.Equal(t, "passThrough", resp.BudgetCap.Field)
	assert.LessOrEqual(t, resp.BudgetCap.Achieved, 500.0)
	assert.Less(t, resp.BudgetCap.Value, constants.DefaultPassThroughPct)
}

func TestHandleTariffValidation(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/tariff", map[string]interface{}{
		"horizonYears": 2,
		"chinaTariff":  120,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	msg := decodeError(t, rr)
	assert.Contains(t, msg, "horizonYears must be at least 4")
	assert.Contains(t, msg, "chinaTariff must be at most 100")
}

func TestHandleInputsBeyondSliderRanges(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/availability", map[string]interface{}{
		"baselineAvailability": 95,
		"sustainmentIncrease":  80,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = performJSON(t, newTestHandler(), "/api/tariff", map[string]interface{}{
		"steelTariff": 75,
		"chinaTariff": 45,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestHandleTariffExport(t *testing.T) {
	rr := performJSON(t, newTestHandler(), "/api/tariff/export", map[string]interface{}{
		"horizonYears": 5,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "tariff-impact.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	year, err := f.GetCellValue("Tariff 1", "A4")
	require.NoError(t, err)
	assert.Equal(t, "2025", year)
}

func TestHandleConfigUpload(t *testing.T) {
	rr := performUpload(t, newTestHandler(), sampleConfig, "config.yaml", true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp configResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Results.Availability, 1)
	require.Len(t, resp.Results.Tariff, 1)
	assert.Equal(t, "63.5", resp.Results.Availability[0].Result.HeadlineDisplay())
	assert.Len(t, resp.Results.Availability[0].Optimizations, 1)
	assert.Len(t, resp.Results.Tariff[0].Optimizations, 1)
	assert.NotEmpty(t, resp.CSV)
	assert.NotEmpty(t, resp.Duration)
	assert.NotNil(t, resp.Config)
	assert.Equal(t, sampleConfig, resp.ConfigYAML)
}

func TestHandleConfigUploadWithoutOptimize(t *testing.T) {
	rr := performUpload(t, newTestHandler(), sampleConfig, "config.yaml", false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp configResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results.Availability, 1)
	assert.Empty(t, resp.Results.Availability[0].Optimizations)
}

func TestHandleConfigUploadInvalidYAML(t *testing.T) {
	rr := performUpload(t, newTestHandler(), "availability: [", "config.yaml", false)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Contains(t, decodeError(t, rr), "error reading config data")
}

func TestHandleConfigUploadInvalidMode(t *testing.T) {
	contents := `availability:
  - name: Broken
    active: true
    elasticityMode: cubic
`
	rr := performUpload(t, newTestHandler(), contents, "config.yaml", false)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	assert.Contains(t, decodeError(t, rr), "unknown elasticity mode")
}

func TestHandleConfigUploadUndefinedCurve(t *testing.T) {
	contents := `availability:
  - name: Inverted
    active: true
    baselineAvailability: 70
    sustainmentIncrease: 15
    nonlinearExponent: -1
`
	rr := performUpload(t, newTestHandler(), contents, "config.yaml", false)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	assert.Contains(t, decodeError(t, rr), "curve is undefined")
}

func TestWriteJSONUnencodablePayload(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()

	h.writeJSON(rr, http.StatusOK, map[string]float64{"value": math.Inf(-1)})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "failed to encode response", decodeError(t, rr))
}

func TestHandleConfigUploadMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("optimize", "true"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/config", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "missing configuration file")
}

func TestHandleConfigUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	rr := performUpload(t, handler, strings.Repeat("a", 1024), "config.yaml", false)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
	assert.Contains(t, decodeError(t, rr), "upload exceeds limit")
}

func TestHandleMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/availability", nil)
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleConfigExport(t *testing.T) {
	payload := map[string]interface{}{
		"tariff": []interface{}{
			map[string]interface{}{"name": "sample", "active": true},
		},
		"availability": []interface{}{
			map[string]interface{}{"name": "sample", "active": true},
		},
		"output": map[string]interface{}{
			"format": "pretty",
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
	}

	rr := performJSON(t, newTestHandler(), "/api/editor/export", payload)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	var topLevel []string
	for _, line := range strings.Split(resp["configYaml"], "\n") {
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-") {
			continue
		}
		topLevel = append(topLevel, strings.TrimSuffix(line, ":"))
	}
	assert.Equal(t, []string{"logging", "output", "availability", "tariff"}, topLevel)
}

func TestHandleVersionAndDefaults(t *testing.T) {
	handler := newTestHandler()

	rr := performGet(t, handler, "/api/version")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())

	rr = performGet(t, handler, "/api/defaults")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Availability struct {
			Ranges []sliderRange `json:"ranges"`
		} `json:"availability"`
		Tariff struct {
			Ranges []sliderRange `json:"ranges"`
		} `json:"tariff"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Availability.Ranges, len(availabilityRanges))
	assert.Len(t, resp.Tariff.Ranges, len(tariffRanges))
}

func TestRequestIDPropagation(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(requestIDHeader))

	rr = performGet(t, handler, "/healthz")
	assert.Len(t, rr.Header().Get(requestIDHeader), 36)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler()

	performJSON(t, handler, "/api/availability", map[string]interface{}{})
	performJSON(t, handler, "/api/availability", map[string]interface{}{"baselineAvailability": 10})

	rr := performGet(t, handler, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `sustainment_impact_model_evaluations_total{model="availability",outcome="ok"} 1`)
	assert.Contains(t, body, `sustainment_impact_http_requests_total{code="400",method="POST",path="/api/availability"} 1`)
	assert.Contains(t, body, "sustainment_impact_http_request_duration_milliseconds_bucket")
}

func TestStaticAssetsServed(t *testing.T) {
	rr := performGet(t, newTestHandler(), "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sustainment Impact")
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, coerceBool("true"))
	assert.True(t, coerceBool(" 1 "))
	assert.True(t, coerceBool(true))
	assert.True(t, coerceBool(2.0))
	assert.False(t, coerceBool("nope"))
	assert.False(t, coerceBool(nil))
}

func performGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performJSON(t *testing.T, handler http.Handler, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performUpload(t *testing.T, handler http.Handler, content, filename string, optimize bool) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if optimize {
		if err := writer.WriteField("optimize", "true"); err != nil {
			t.Fatalf("failed to write optimize field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/config", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp["error"]
}
