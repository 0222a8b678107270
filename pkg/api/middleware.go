package api

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"loginsight/pkg/logger"
	"loginsight/pkg/models"
)

type ctxKeyRequestID struct{}

var RequestIDKey = ctxKeyRequestID{}

func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			id, err := uuid.NewV4()
			if err != nil {
				log.Errorf("[requestIDMiddleware] failed to generate request ID for %v: %v", r.RemoteAddr, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			reqID = id.String()
			log.Debugf("[requestIDMiddleware] generated request ID:%s for %v", reqID, r.RemoteAddr)
		}

		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) headerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates the x-api-key header against the configured
// key list. Comparison is constant time; failures never reveal which
// key was tried.
func (api *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if !api.validAPIKey(key) {
			log.Warnf("[authMiddleware][from:%v] rejected request with invalid or missing API key", r.RemoteAddr)
			respond(w, http.StatusUnauthorized, Response{
				RequestID: requestID(r),
				Success:   false,
				Error:     "Unauthorized: Invalid or missing API key",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (api *API) validAPIKey(key string) bool {
	if key == "" || len(api.cfg.APIKeys) == 0 {
		return false
	}
	for _, valid := range api.cfg.APIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return true
		}
	}
	return false
}

func (api *API) maxBytesMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, api.cfg.MaxPayloadBytes)
		next.ServeHTTP(w, r)
	})
}

// accessLogMiddleware records every gateway request as an access log
// entry in the store, so the engine's own traffic is analyzable.
func (api *API) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl := logger.New(w)
		start := time.Now()

		next.ServeHTTP(rl, r)

		entry := models.AccessLogEntry{
			Timestamp:      start,
			IPAddress:      clientIP(r),
			Method:         r.Method,
			Endpoint:       r.URL.Path,
			HTTPVersion:    r.Proto,
			StatusCode:     rl.Status(),
			ResponseSize:   rl.Size(),
			ResponseTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
			UserAgent:      r.UserAgent(),
		}
		if err := api.db.AddAccessLog(r.Context(), entry); err != nil {
			log.Errorf("[accessLogMiddleware] failed to store access log entry: %v", err)
		}
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First address in the chain is the original client.
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}
