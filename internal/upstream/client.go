// Package upstream fetches attendance reports from the campus dashboard API.
package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"attendance-bot/pkg/attendance"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultCacheTTL  = 5 * time.Minute
	DefaultRateLimit = 30

	// Ответы больше этого размера считаются ошибкой API
	maxResponseSize = 32 << 20
	userAgent       = "attendance-bot"
)

var (
	ErrNoToken      = errors.New("session token is empty")
	ErrUnauthorized = errors.New("session token rejected by attendance api")
)

// StatusError - API ответило неуспешным статусом
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("attendance api returned %s", e.Status)
}

type Config struct {
	URL                string
	Timeout            time.Duration
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

// Client - клиент API посещаемости; безопасен для конкурентного использования
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.RateLimitPerMinute <= 0 {
		config.RateLimitPerMinute = DefaultRateLimit
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	perRequest := time.Minute / time.Duration(config.RateLimitPerMinute)

	logger.WithFields(logrus.Fields{
		"url":       config.URL,
		"timeout":   config.Timeout,
		"cache_ttl": config.CacheTTL,
		"rate":      config.RateLimitPerMinute,
	}).Info("Attendance api client initialized")

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter:    rate.NewLimiter(rate.Every(perRequest), config.RateLimitPerMinute),
		logger:     logger,
	}
}

// FetchAttendance возвращает отчет для токена, используя кэш
func (c *Client) FetchAttendance(ctx context.Context, token string) (*attendance.Report, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	key := cacheKey(token)
	if cached, found := c.cache.Get(key); found {
		if report, ok := cached.(*attendance.Report); ok {
			c.logger.WithField("login", report.Login).Debug("Attendance cache hit")
			return report, nil
		}
	}

	report, err := c.fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, report, cache.DefaultExpiration)
	return report, nil
}

// Invalidate удаляет закэшированный отчет для токена
func (c *Client) Invalidate(token string) {
	c.cache.Delete(cacheKey(token))
}

func (c *Client) fetch(ctx context.Context, token string) (*attendance.Report, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cookie", "session="+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Attendance api request failed")
		return nil, fmt.Errorf("attendance api request failed: %w", err)
	}
	defer resp.Body.Close()

	fields := logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WithFields(fields).Warn("Attendance api rejected session token")
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.WithFields(fields).Error("Attendance api returned error status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance response: %w", err)
	}

	var report attendance.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode attendance response: %w", err)
	}

	fields["login"] = report.Login
	fields["entries"] = report.EntryCount()
	c.logger.WithFields(fields).Info("Attendance report fetched")

	return &report, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "attendance:" + hex.EncodeToString(sum[:])
}
