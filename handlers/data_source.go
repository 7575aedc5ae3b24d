package handlers

import (
	"context"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"
	"safecity-dashboard/be/services"

	"go.uber.org/zap"
)

// Values of the X-Data-Source response header.
const (
	SourceFeed     = "feed"
	SourceUpstream = "upstream"
	SourceMock     = "mock"
)

// DataSource picks where the map views read from: the live feed buffer,
// then a direct upstream fetch, then mock data when fallback is enabled.
type DataSource struct {
	upstream     *services.UpstreamService
	feed         *services.EventFeed
	mock         *services.MockData
	mockFallback bool
	log          *zap.Logger
}

func NewDataSource(upstream *services.UpstreamService, feed *services.EventFeed, mock *services.MockData, mockFallback bool) *DataSource {
	return &DataSource{
		upstream:     upstream,
		feed:         feed,
		mock:         mock,
		mockFallback: mockFallback,
		log:          logger.GetLoggerWith(logger.NameHTTP, zap.String(logger.FieldCategory, "data")),
	}
}

func (d *DataSource) canMock() bool {
	return d.mockFallback && d.mock != nil
}

// Events reads the feed buffer unless it still holds startup fallback
// events, in which case upstream is tried first and the buffer is served
// as mock data.
func (d *DataSource) Events(ctx context.Context) ([]models.Event, string, error) {
	var fallback []models.Event
	if d.feed != nil {
		if events := d.feed.Events(); len(events) > 0 {
			if !d.feed.HoldsFallback() {
				return events, SourceFeed, nil
			}
			fallback = events
		}
	}

	events, err := d.upstream.Events(ctx, 1, 200)
	if err == nil {
		return events, SourceUpstream, nil
	}
	if len(fallback) > 0 {
		return fallback, SourceMock, nil
	}
	if !d.canMock() {
		return nil, "", err
	}
	services.MockFallbacks.WithLabelValues(services.TargetEvents).Inc()
	d.log.Warn("Using mock events", zap.Error(err))
	return d.mock.MockEventList(), SourceMock, nil
}

func (d *DataSource) Streams(ctx context.Context) ([]models.Stream, string, error) {
	streams, err := d.upstream.Streams(ctx)
	if err == nil {
		return streams, SourceUpstream, nil
	}
	if !d.canMock() {
		return nil, "", err
	}
	mocked, decodeErr := services.DecodeStreams(d.mock.Streams())
	if decodeErr != nil {
		return nil, "", err
	}
	services.MockFallbacks.WithLabelValues(services.TargetStreams).Inc()
	d.log.Warn("Using mock streams", zap.Error(err))
	return mocked, SourceMock, nil
}

func (d *DataSource) DahuaCameras(ctx context.Context) ([]models.DahuaCamera, string, error) {
	cameras, err := d.upstream.DahuaCameras(ctx, 1, 200)
	if err == nil {
		return cameras, SourceUpstream, nil
	}
	if !d.canMock() {
		return nil, "", err
	}
	mocked, decodeErr := services.DecodeDahuaCameras(d.mock.Dahua())
	if decodeErr != nil {
		return nil, "", err
	}
	services.MockFallbacks.WithLabelValues(services.TargetDahua).Inc()
	d.log.Warn("Using mock Dahua cameras", zap.Error(err))
	return mocked, SourceMock, nil
}

// ImageBase is the address face sample URLs are built against.
func (d *DataSource) ImageBase(ctx context.Context) string {
	return d.upstream.APIBase(ctx)
}
