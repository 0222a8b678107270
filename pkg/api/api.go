// Package api is the request gateway: it authenticates callers,
// validates intent requests, fetches a time bounded batch from the log
// store, runs exactly one analysis over a per-request engine instance,
// and serializes the findings.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"loginsight/pkg/analyzer"
	"loginsight/pkg/models"
	"loginsight/pkg/storage"
)

// ErrInvalidParams marks validation failures that map to 400 responses.
// Anything else returned by a handler maps to a generic 500.
var ErrInvalidParams = fmt.Errorf("invalid parameters")

type intentHandler func(ctx context.Context, params json.RawMessage) (map[string]interface{}, error)

type API struct {
	r        *mux.Router
	db       storage.Store
	cfg      Config
	handlers map[string]intentHandler
}

func (api *API) Router() *mux.Router {
	return api.r
}

func New(db storage.Store, cfg Config) *API {
	api := API{r: mux.NewRouter(), db: db, cfg: cfg}
	api.handlers = map[string]intentHandler{
		"get_access_logs":         api.getAccessLogs,
		"get_error_logs":          api.getErrorAnalysis,
		"store_access_log":        api.storeAccessLog,
		"store_error_log":         api.storeErrorLog,
		"get_traffic_summary":     api.getTrafficSummary,
		"get_security_threats":    api.getSecurityThreats,
		"get_performance_metrics": api.getPerformanceMetrics,
		"get_anomalies":           api.getAnomalies,
	}
	api.endpoints()

	return &api
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)
	api.r.Use(api.accessLogMiddleware)

	api.r.HandleFunc("/healthz", api.healthHandler).Methods(http.MethodGet)

	intent := api.r.PathPrefix("/intent").Subrouter()
	intent.Use(api.authMiddleware)
	intent.Use(api.maxBytesMiddleware)
	intent.HandleFunc("", api.intentHandler).Methods(http.MethodPost)
}

func (api *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.db.Ping(r.Context()); err != nil {
		log.Errorf("[healthHandler] store ping failed: %v", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (api *API) intentHandler(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond(w, http.StatusRequestEntityTooLarge, Response{
				RequestID: reqID,
				Success:   false,
				Error:     fmt.Sprintf("Payload too large (max: %d bytes)", maxErr.Limit),
			})
			return
		}
		respond(w, http.StatusBadRequest, Response{
			RequestID: reqID,
			Success:   false,
			Error:     "Invalid JSON",
		})
		return
	}
	defer r.Body.Close()

	if err := validateIntent(req.Intent); err != nil {
		log.Debugf("[intentHandler][request_id:%s] rejected: %v", reqID, err)
		respond(w, http.StatusBadRequest, Response{
			RequestID: reqID,
			Success:   false,
			Error:     err.Error(),
		})
		return
	}

	log.Infof("[intentHandler][request_id:%s] executing intent %s", reqID, req.Intent)

	data, err := api.handlers[req.Intent](r.Context(), req.Params)
	if err != nil {
		if errors.Is(err, ErrInvalidParams) {
			respond(w, http.StatusBadRequest, Response{
				RequestID: reqID,
				Success:   false,
				Error:     err.Error(),
			})
			return
		}
		// Log the detail, return a generic message.
		log.Errorf("[intentHandler][request_id:%s] intent %s failed: %v", reqID, req.Intent, err)
		respond(w, http.StatusInternalServerError, Response{
			RequestID: reqID,
			Success:   false,
			Error:     "Internal server error",
		})
		return
	}

	respond(w, http.StatusOK, Response{
		RequestID: reqID,
		Success:   true,
		Data:      data,
	})
}

func respond(w http.ResponseWriter, status int, body Response) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("[respond] failed to encode response: %v", err)
	}
}

func decodeParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func (api *API) queryFromParams(raw json.RawMessage) (queryParams, storage.Query, error) {
	var p queryParams
	if err := decodeParams(raw, &p); err != nil {
		return p, storage.Query{}, err
	}
	q, err := buildQuery(p)
	if err != nil {
		return p, q, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return p, q, nil
}

// analyzerConfig merges per-request threshold overrides with the
// configured defaults and the current rule set snapshot.
func (api *API) analyzerConfig(p queryParams) analyzer.Config {
	cfg := api.cfg.Analyzer
	cfg.Rules = api.cfg.Rules.Rules()
	if p.ThresholdMs != nil {
		cfg.SlowRequestMs = *p.ThresholdMs
	}
	if p.MinSeverity != nil {
		cfg.MinSeverityScore = *p.MinSeverity
	}
	return cfg
}

func (api *API) getAccessLogs(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.AccessLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	// Optional exact-match filters, applied gateway side.
	if p.IPAddress != "" || p.StatusCode != 0 {
		filtered := make([]models.AccessLogEntry, 0, len(logs))
		for _, e := range logs {
			if p.IPAddress != "" && e.IPAddress != p.IPAddress {
				continue
			}
			if p.StatusCode != 0 && e.StatusCode != p.StatusCode {
				continue
			}
			filtered = append(filtered, e)
		}
		logs = filtered
	}

	return map[string]interface{}{"logs": logs, "count": len(logs)}, nil
}

// getErrorAnalysis clusters 4xx/5xx access log errors.
func (api *API) getErrorAnalysis(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.AccessLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(logs, nil, api.analyzerConfig(p))
	clusters := a.AnalyzeErrors()

	return map[string]interface{}{"errors": clusters, "count": len(clusters)}, nil
}

func (api *API) storeAccessLog(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var p storeAccessParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Timestamp == "" || p.IPAddress == "" || p.Method == "" || p.Endpoint == "" || p.StatusCode == 0 {
		return nil, fmt.Errorf("%w: timestamp, ip_address, method, endpoint and status_code are required", ErrInvalidParams)
	}

	ts, err := parseTime(p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := validateIPAddress(p.IPAddress); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := validateStatusCode(p.StatusCode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	entry := models.AccessLogEntry{
		Timestamp:      ts,
		IPAddress:      p.IPAddress,
		Method:         p.Method,
		Endpoint:       p.Endpoint,
		HTTPVersion:    p.HTTPVersion,
		StatusCode:     p.StatusCode,
		ResponseSize:   p.ResponseSize,
		ResponseTimeMs: p.ResponseTimeMs,
		UserAgent:      p.UserAgent,
		Department:     p.Department,
		UserID:         p.UserID,
	}
	if err := api.db.AddAccessLog(ctx, entry); err != nil {
		return nil, err
	}

	return map[string]interface{}{"message": "Access log stored successfully"}, nil
}

func (api *API) storeErrorLog(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var p storeErrorParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Timestamp == "" || p.LogLevel == "" || p.ErrorCode == "" || p.ErrorMessage == "" {
		return nil, fmt.Errorf("%w: timestamp, log_level, error_code and error_message are required", ErrInvalidParams)
	}

	ts, err := parseTime(p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	severity := p.SeverityScore
	if severity == 0 {
		severity = 5
	}

	entry := models.ErrorLogEntry{
		Timestamp:     ts,
		LogLevel:      p.LogLevel,
		ProcessID:     p.ProcessID,
		ThreadID:      p.ThreadID,
		ClientIP:      p.ClientIP,
		ErrorCode:     p.ErrorCode,
		ErrorMessage:  p.ErrorMessage,
		FilePath:      p.FilePath,
		LineNumber:    p.LineNumber,
		SeverityScore: severity,
	}
	if err := api.db.AddErrorLog(ctx, entry); err != nil {
		return nil, err
	}

	return map[string]interface{}{"message": "Error log stored successfully"}, nil
}

func (api *API) getTrafficSummary(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.AccessLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	summary := analyzer.New(logs, nil, api.analyzerConfig(p)).TrafficSummary()

	return map[string]interface{}{
		"total_requests": summary.TotalRequests,
		"error_count":    summary.ErrorCount,
		"error_rate":     summary.ErrorRate,
		"top_endpoints":  summary.TopEndpoints,
		"top_ips":        summary.TopIPs,
	}, nil
}

func (api *API) getSecurityThreats(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.AccessLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	threats := analyzer.New(logs, nil, api.analyzerConfig(p)).DetectThreats()

	return map[string]interface{}{"threats": threats, "count": len(threats)}, nil
}

func (api *API) getPerformanceMetrics(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.AccessLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	issues := analyzer.New(logs, nil, api.analyzerConfig(p)).DetectPerformanceIssues()

	return map[string]interface{}{"issues": issues, "count": len(issues)}, nil
}

func (api *API) getAnomalies(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	p, q, err := api.queryFromParams(raw)
	if err != nil {
		return nil, err
	}

	logs, err := api.db.ErrorLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	anomalies := analyzer.New(nil, logs, api.analyzerConfig(p)).DetectAnomalies()

	return map[string]interface{}{"anomalies": anomalies, "count": len(anomalies)}, nil
}
