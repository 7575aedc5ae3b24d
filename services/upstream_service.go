package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Upstream targets, used as metric labels and log fields.
const (
	TargetEvents  = "events"
	TargetStreams = "streams"
	TargetDahua   = "dahua"
	TargetProxy   = "proxy"
	TargetImage   = "image"
)

const maxUpstreamBody = 32 << 20

var ErrUpstreamStatus = errors.New("upstream responded with non-2xx status")

// UpstreamStatusError reports a non-2xx answer from an upstream service.
type UpstreamStatusError struct {
	Target     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s upstream responded with status %d", e.Target, e.StatusCode)
}

func (e *UpstreamStatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// UpstreamResponse is a body passed through from an upstream service.
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type UpstreamService struct {
	resolver   *EndpointResolver
	httpClient *http.Client
	cache      *ResponseCache
	log        *zap.Logger
}

func NewUpstreamService(cfg config.UpstreamConfig, resolver *EndpointResolver) *UpstreamService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UpstreamService{
		resolver:   resolver,
		httpClient: &http.Client{Timeout: timeout},
		cache:      NewResponseCache(cfg.CacheTTL),
		log:        logger.GetLoggerWith(logger.NameUpstream),
	}
}

// APIBase is the events service address face sample URLs are built on.
func (s *UpstreamService) APIBase(ctx context.Context) string {
	return s.resolver.APIBase(ctx)
}

// FetchEvents returns the raw events page from {api_base}/6/events.
func (s *UpstreamService) FetchEvents(ctx context.Context, page, pageSize int) ([]byte, error) {
	page, pageSize = pageDefaults(page, pageSize)
	url := fmt.Sprintf("%s/6/events?page=%d&page_size=%d", s.resolver.APIBase(ctx), page, pageSize)
	return s.fetchJSON(ctx, TargetEvents, url)
}

func (s *UpstreamService) FetchStreams(ctx context.Context) ([]byte, error) {
	url := s.resolver.StreamsBase(ctx) + "/api/luna-streams/1/streams?order=desc&page=1&page_size=100"
	return s.fetchJSON(ctx, TargetStreams, url)
}

func (s *UpstreamService) FetchDahua(ctx context.Context, page, pageSize int) ([]byte, error) {
	page, pageSize = pageDefaults(page, pageSize)
	url := fmt.Sprintf("%s/cameras?page=%d&page_size=%d", s.resolver.DahuaBase(ctx), page, pageSize)
	return s.fetchJSON(ctx, TargetDahua, url)
}

// Events fetches and decodes one page of events.
func (s *UpstreamService) Events(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	body, err := s.FetchEvents(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return DecodeEvents(body)
}

func (s *UpstreamService) Streams(ctx context.Context) ([]models.Stream, error) {
	body, err := s.FetchStreams(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeStreams(body)
}

func (s *UpstreamService) DahuaCameras(ctx context.Context, page, pageSize int) ([]models.DahuaCamera, error) {
	body, err := s.FetchDahua(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return DecodeDahuaCameras(body)
}

// Forward passes a GET through to {streams_base}/api/<path>. The upstream
// status and body are returned as-is, whatever the status.
func (s *UpstreamService) Forward(ctx context.Context, path, rawQuery string) (*UpstreamResponse, error) {
	url := s.resolver.StreamsBase(ctx) + "/api/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	resp, err := s.get(ctx, url, "")
	if err != nil {
		UpstreamRequests.WithLabelValues(TargetProxy, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		UpstreamRequests.WithLabelValues(TargetProxy, "error").Inc()
		return nil, fmt.Errorf("failed to read proxy response: %w", err)
	}

	UpstreamRequests.WithLabelValues(TargetProxy, "success").Inc()
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &UpstreamResponse{StatusCode: resp.StatusCode, ContentType: contentType, Body: body}, nil
}

// FetchImage downloads an arbitrary URL for the image proxy.
func (s *UpstreamService) FetchImage(ctx context.Context, url string) (*UpstreamResponse, error) {
	resp, err := s.get(ctx, url, "")
	if err != nil {
		UpstreamRequests.WithLabelValues(TargetImage, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		UpstreamRequests.WithLabelValues(TargetImage, "error").Inc()
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	UpstreamRequests.WithLabelValues(TargetImage, "success").Inc()
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &UpstreamResponse{StatusCode: resp.StatusCode, ContentType: contentType, Body: body}, nil
}

func (s *UpstreamService) fetchJSON(ctx context.Context, target, url string) ([]byte, error) {
	if body, _, ok := s.cache.Get(url); ok {
		UpstreamRequests.WithLabelValues(target, "cache_hit").Inc()
		return body, nil
	}

	start := time.Now()
	resp, err := s.get(ctx, url, "application/json")
	if err != nil {
		UpstreamRequests.WithLabelValues(target, "error").Inc()
		s.log.Warn("Upstream request failed", zap.String("target", target), zap.String("url", url), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		UpstreamRequests.WithLabelValues(target, "error").Inc()
		return nil, fmt.Errorf("failed to read %s response: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		UpstreamRequests.WithLabelValues(target, "error").Inc()
		s.log.Warn("Upstream responded with error status",
			zap.String("target", target),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, &UpstreamStatusError{Target: target, URL: url, StatusCode: resp.StatusCode, Body: body}
	}

	if !json.Valid(body) {
		UpstreamRequests.WithLabelValues(target, "error").Inc()
		return nil, fmt.Errorf("%s upstream returned invalid JSON", target)
	}

	UpstreamRequests.WithLabelValues(target, "success").Inc()
	s.cache.Set(url, body, resp.Header.Get("Content-Type"))
	s.log.Debug("Upstream request succeeded",
		zap.String("target", target),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)))
	return body, nil
}

func (s *UpstreamService) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	return resp, nil
}

func pageDefaults(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 200
	}
	return page, pageSize
}

// DecodeEvents accepts either {"events":[...]} or a bare array.
func DecodeEvents(body []byte) ([]models.Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var events []models.Event
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		return events, nil
	}
	var list models.EventList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return list.Events, nil
}

// DecodeStreams accepts either {"streams":[...]} or a bare array.
func DecodeStreams(body []byte) ([]models.Stream, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var streams []models.Stream
		if err := json.Unmarshal(body, &streams); err != nil {
			return nil, fmt.Errorf("decode streams: %w", err)
		}
		return streams, nil
	}
	var list models.StreamList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	return list.Streams, nil
}

// DecodeDahuaCameras accepts a bare array or an envelope with the list
// under "items", "cameras" or "data".
func DecodeDahuaCameras(body []byte) ([]models.DahuaCamera, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var cameras []models.DahuaCamera
		if err := json.Unmarshal(body, &cameras); err != nil {
			return nil, fmt.Errorf("decode dahua cameras: %w", err)
		}
		return cameras, nil
	}
	var envelope struct {
		Items   []models.DahuaCamera `json:"items"`
		Cameras []models.DahuaCamera `json:"cameras"`
		Data    []models.DahuaCamera `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode dahua cameras: %w", err)
	}
	switch {
	case envelope.Items != nil:
		return envelope.Items, nil
	case envelope.Cameras != nil:
		return envelope.Cameras, nil
	default:
		return envelope.Data, nil
	}
}
