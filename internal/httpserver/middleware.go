package httpserver

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-voiceform/pkg/model"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a ULID to requests that arrive without one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
			if err == nil {
				requestID = id.String()
			}
		}

		c.Locals(RequestIDHeader, requestID)
		c.Set(RequestIDHeader, requestID)
		return c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *fiber.Ctx) string {
	requestID, ok := c.Locals(RequestIDHeader).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// Logging logs one line per request with a redacted copy of the body.
func Logging(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		fields := logrus.Fields{
			"request_id":    GetRequestID(c),
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"response_size": len(c.Response().Body()),
		}
		if body := c.Request().Body(); len(body) > 0 {
			fields["request_body"] = sanitizeRequestBody(body)
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Success")
		}
		return err
	}
}

var sensitiveKeys = map[string]struct{}{
	"ssn":                  {},
	"socialsecurity":       {},
	"socialsecuritynumber": {},
	"phone":                {},
	"phonenumber":          {},
	"driverslicensenumber": {},
	"accountnumber":        {},
	"routingnumber":        {},
}

// sanitizeRequestBody masks sensitive keys and, for tool-call payloads, the
// value whose field hint names a sensitive field.
func sanitizeRequestBody(body []byte) string {
	var payload map[string]any
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return "[non-JSON body]"
	}

	for key := range payload {
		if isSensitive(key) {
			payload[key] = "[SECRET]"
		}
	}
	for _, hintKey := range []string{"fieldId", "field_id", "fieldName", "name", "id"} {
		hint, ok := payload[hintKey].(string)
		if ok && isSensitive(hint) {
			for _, valueKey := range []string{"value", "text", "answer", "response"} {
				if _, exists := payload[valueKey]; exists {
					payload[valueKey] = "[SECRET]"
				}
			}
		}
	}

	sanitized, err := jsoniter.Marshal(payload)
	if err != nil {
		return "[sanitization-failed]"
	}
	return string(sanitized)
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[model.NormalizeID(key)]
	return ok
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	bucket    map[string]*rate.Limiter
	rate      rate.Limit
	burstSize int
	mutex     sync.Mutex
	logger    *logrus.Logger
}

// NewRateLimiter allows reqRate requests per second with burstSize burst.
func NewRateLimiter(reqRate rate.Limit, burstSize int, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		bucket:    make(map[string]*rate.Limiter),
		rate:      reqRate,
		burstSize: burstSize,
		logger:    logger,
	}
}

func (r *RateLimiter) limiterFor(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	limiter, ok := r.bucket[ip]
	if !ok {
		limiter = rate.NewLimiter(r.rate, r.burstSize)
		r.bucket[ip] = limiter
	}
	return limiter
}

// Handler rejects requests over the limit with 429.
func (r *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientIP := c.IP()
		if !r.limiterFor(clientIP).Allow() {
			r.logger.Warnf("too many requests for IP %s", clientIP)
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: ErrTooManyRequests.Error(),
				Code:  "TOO_MANY_REQUESTS",
			})
		}
		return c.Next()
	}
}
