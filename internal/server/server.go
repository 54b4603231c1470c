package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/sustainment-impact/internal/config"
	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/internal/optimizer"
	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/optimization"
	"github.com/iwvelando/sustainment-impact/pkg/output"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	validator     *requestValidator
	metrics       *metrics
}

// NewHandler constructs the HTTP handler that serves the dashboard UI and the
// model API. Cross-origin requests are accepted from allowedOrigins only.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, allowedOrigins ...string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		validator:     newRequestValidator(),
		metrics:       newMetrics(),
	}

	router := chi.NewRouter()
	router.Use(
		h.metrics.handler,
		cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}),
		requestID,
		requestLogger(logger),
		middleware.Recoverer,
	)

	router.Get("/healthz", h.handleHealth)
	router.Get("/api/version", h.handleVersion)
	router.Get("/api/defaults", h.handleDefaults)
	router.Post("/api/availability", h.handleAvailability)
	router.Post("/api/tariff", h.handleTariff)
	router.Post("/api/tariff/export", h.handleTariffExport)
	router.Post("/api/config", h.handleConfigUpload)
	router.Post("/api/editor/export", h.handleConfigExport)
	router.Handle("/metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{}))

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	router.Get("/*", http.FileServer(http.FS(sub)).ServeHTTP)

	return router
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type defaultsResponse struct {
	Availability modelDefaults `json:"availability"`
	Tariff       modelDefaults `json:"tariff"`
}

type modelDefaults struct {
	Inputs any           `json:"inputs"`
	Ranges []sliderRange `json:"ranges"`
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Availability: modelDefaults{Inputs: defaultAvailabilityRequest(), Ranges: availabilityRanges},
		Tariff:       modelDefaults{Inputs: defaultTariffRequest(), Ranges: tariffRanges},
	})
}

type availabilityResponse struct {
	forecast.AvailabilityForecast
	Headline  string                `json:"headline"`
	BreakEven *optimization.Summary `json:"breakEven,omitempty"`
	Duration  string                `json:"duration"`
}

func (h *handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAvailability"
	start := time.Now()

	req := defaultAvailabilityRequest()
	if !h.decodeAndValidate(w, r, &req, op) {
		return
	}

	in, err := req.inputs()
	if err != nil {
		h.respondModelError(w, err, op)
		return
	}

	fc, err := forecast.Availability("dashboard", in)
	h.metrics.observeEvaluation("availability", err)
	if err != nil {
		h.respondModelError(w, err, op)
		return
	}

	response := availabilityResponse{
		AvailabilityForecast: fc,
		Headline:             fc.Result.HeadlineDisplay(),
	}

	if req.ReadinessFloor > 0 {
		summary, err := optimizer.ReadinessBreakEven(fc.Name, in, req.ReadinessFloor, config.OptimizerConfig{})
		if err != nil {
			h.respondModelError(w, err, op)
			return
		}
		response.BreakEven = &summary
	}

	response.Duration = time.Since(start).String()
	h.writeJSON(w, http.StatusOK, response)
}

type tariffResponse struct {
	forecast.TariffForecast
	CSV       string                `json:"csv"`
	BudgetCap *optimization.Summary `json:"budgetCap,omitempty"`
	Duration  string                `json:"duration"`
}

func (h *handler) handleTariff(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTariff"
	start := time.Now()

	req := defaultTariffRequest()
	if !h.decodeAndValidate(w, r, &req, op) {
		return
	}

	assumptions := tariff.DefaultAssumptions()
	fc, err := forecast.Tariff("dashboard", assumptions, req.inputs())
	h.metrics.observeEvaluation("tariff", err)
	if err != nil {
		h.respondModelError(w, err, op)
		return
	}

	response := tariffResponse{
		TariffForecast: fc,
		CSV:            output.TariffCSV(fc.Projection),
	}

	if req.BudgetCap > 0 {
		summary, err := optimizer.BudgetCapPassThrough(fc.Name, tariff.NewModel(assumptions), req.inputs(), req.BudgetCap, config.OptimizerConfig{})
		if err != nil {
			h.respondModelError(w, err, op)
			return
		}
		response.BudgetCap = &summary
	}

	response.Duration = time.Since(start).String()
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleTariffExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTariffExport"

	req := defaultTariffRequest()
	if !h.decodeAndValidate(w, r, &req, op) {
		return
	}

	fc, err := forecast.Tariff("dashboard", tariff.DefaultAssumptions(), req.inputs())
	h.metrics.observeEvaluation("tariff", err)
	if err != nil {
		h.respondModelError(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := output.XlsxFormat(&buf, forecast.Results{Tariff: []forecast.TariffForecast{fc}}); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build workbook: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="tariff-impact.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write workbook",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

type configResponse struct {
	Results    forecast.Results       `json:"results"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

func (h *handler) handleConfigUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigUpload"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if coerceBool(r.FormValue("optimize")) {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}
		optimizationResult, err = runner.Run()
		if err != nil {
			h.respondModelError(w, fmt.Errorf("optimizer execution failed: %w", err), op)
			return
		}
	}

	results, err := forecast.GetForecast(h.logger, *cfg)
	h.metrics.observeEvaluation("config", err)
	if err != nil {
		h.respondModelError(w, err, op)
		return
	}
	if optimizationResult != nil {
		optimizationResult.Apply(&results)
	}

	var csv bytes.Buffer
	if err := output.CsvFormat(&csv, results); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Int("availabilityScenarios", len(results.Availability)),
		zap.Int("tariffScenarios", len(results.Tariff)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, configResponse{
		Results:    results,
		CSV:        csv.String(),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes the ambient sections first and the
// remaining top-level keys in sorted order.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "optimizer", "tariffAssumptions", "availability", "tariff"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	default:
		return false
	}
}

// decodeAndValidate decodes a JSON body over the defaults already in dst and
// validates the result. It writes the error response and returns false on
// failure.
func (h *handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return false
	}
	return true
}

// respondModelError maps model input errors to 422 and anything else to 500.
func (h *handler) respondModelError(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	if errors.Is(err, availability.ErrInvalidInput) || errors.Is(err, tariff.ErrInvalidInput) {
		status = http.StatusUnprocessableEntity
	}
	h.respondErrorWithOp(w, status, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before committing the status so that an
// unencodable payload becomes a 500 rather than a truncated success.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
