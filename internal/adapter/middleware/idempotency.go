package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// How long the "in-progress" lock lives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for X-Request-At.
	maxClockSkew = 10 * time.Minute

	// OperatorKey is the echo context key holding the acting operator id.
	OperatorKey = "operator_id"
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

type IdempotencyOptions struct {
	TTL time.Duration
	Log *logrus.Logger
	Now func() time.Time
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// Idempotency guards mutating routes. The key is method + route + operator
// id + request id; a finished response is replayed for a repeated request
// with the same body. Server errors are not kept, so the client may retry.
func Idempotency(rdb *redis.Client, opts IdempotencyOptions) echo.MiddlewareFunc {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return fail(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validRequestID(reqID) {
				return fail(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return fail(c, http.StatusBadRequest, err.Error())
			}
			now := opts.Now()
			if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return fail(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			operator := strings.TrimSpace(req.Header.Get(HeaderOperatorID))
			if !reHex32.MatchString(operator) {
				return fail(c, http.StatusBadRequest, "missing or invalid "+HeaderOperatorID)
			}
			c.Set(OperatorKey, operator)

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return fail(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			// the concrete path, so one request id cannot cover two resources
			key := buildKey(req.Method, req.URL.Path, operator, reqID)
			log := opts.Log.WithFields(logrus.Fields{"route": c.Path(), "request_id": reqID})
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempEntry{
				InProgress: true, BodySHA256: bhash, RequestID: reqID, RequestAtMS: reqAt.UnixMilli(), CreatedAt: now,
			})
			if err != nil {
				log.WithError(err).Error("idempotency store unavailable")
				return fail(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				cur, err := loadEntry(ctx, rdb, key)
				if err != nil {
					log.WithError(err).Warn("idempotency entry unreadable")
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return fail(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					log.Debug("replaying stored response")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return fail(c, http.StatusConflict, "request is already in progress")
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone
			store := context.WithoutCancel(req.Context())
			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(store, key).Err(); err != nil {
					log.WithError(err).Warn("idempotency lock not released")
				}
				return nil
			}
			final := idempEntry{
				Code: rec.code, Body: rec.buf.Bytes(), BodySHA256: bhash,
				RequestID: reqID, RequestAtMS: reqAt.UnixMilli(), CreatedAt: opts.Now(),
			}
			if err := saveFinal(store, rdb, key, final, opts.TTL); err != nil {
				log.WithError(err).Warn("idempotency response not stored")
			}
			return nil
		}
	}
}
