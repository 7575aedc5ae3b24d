package services

import (
	"testing"
	"time"

	"safecity-dashboard/be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStreams(t *testing.T, raw string) []models.Stream {
	t.Helper()
	streams, err := DecodeStreams([]byte(raw))
	require.NoError(t, err)
	return streams
}

func TestUpdatedTimestampFallbacks(t *testing.T) {
	streams := decodeStreams(t, `[
		{"stream_id": "a", "update_time": "2025-01-03T00:00:00Z", "create_time": "2025-01-01T00:00:00Z"},
		{"stream_id": "b", "lastEventTime": "2025-01-02T00:00:00Z"},
		{"stream_id": "c", "createdAt": "2025-01-01T00:00:00Z"},
		{"stream_id": "d"}
	]`)

	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC).UnixMilli(), UpdatedTimestamp(&streams[0]))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), UpdatedTimestamp(&streams[1]))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), UpdatedTimestamp(&streams[2]))
	assert.Zero(t, UpdatedTimestamp(&streams[3]))
}

func TestStreamMarker(t *testing.T) {
	streams := decodeStreams(t, `{"streams": [
		{"stream_id": "s1", "name": "Blue Area", "status": "active",
		 "location": {"city": "Islamabad", "area": "F-6", "geo_position": {"latitude": 33.7, "longitude": 73.06}},
		 "autorestart": {"status": "enabled"}},
		{"stream_id": "s2"}
	]}`)

	markers := StreamMarkers(streams)
	require.Len(t, markers, 2)

	assert.Equal(t, models.StreamMarker{
		StreamID:    "s1",
		Name:        "Blue Area",
		Status:      "active",
		Lat:         33.7,
		Lng:         73.06,
		City:        "Islamabad",
		Area:        "F-6",
		Autorestart: "enabled",
	}, markers[0])

	assert.Equal(t, "Unknown Location", markers[1].Name)
	assert.Equal(t, "unknown", markers[1].Status)
	assert.Equal(t, DefaultCenter[0], markers[1].Lat)
	assert.Equal(t, DefaultCenter[1], markers[1].Lng)
}

func TestComputeStreamStats(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	streams := decodeStreams(t, `[
		{"stream_id": "1", "status": "active", "create_time": "2025-01-10T01:00:00Z",
		 "location": {"city": "Islamabad", "geo_position": {"latitude": 33.7, "longitude": 73.0}}},
		{"stream_id": "2", "status": "Active", "create_time": "2025-01-01T00:00:00Z",
		 "location": {"city": "Islamabad", "geo_position": {"latitude": 0, "longitude": 73.0}}},
		{"stream_id": "3", "status": "pause", "create_time": "2025-01-09T13:00:00Z",
		 "location": {"city": "Lahore"}},
		{"stream_id": "4", "status": "weird"},
		{"stream_id": "5", "status": "failed", "update_time": "2025-01-09T00:00:00Z"},
		{"stream_id": "6", "status": "active", "update_time": "2025-01-08T00:00:00Z"}
	]`)

	stats := ComputeStreamStats(streams, now)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Active)
	assert.Equal(t, 2, stats.NewLast24h)
	assert.Equal(t, 1, stats.WithLocation)
	assert.Equal(t, 5, stats.WithoutLocation)

	assert.Equal(t, []string{"Islamabad", "Lahore", "Unknown"}, stats.ByCity.Labels)
	assert.Equal(t, []int{2, 1, 3}, stats.ByCity.Data)

	assert.Equal(t, []string{"active", "pause", "weird", "failed"}, stats.ByStatus.Labels)
	assert.Equal(t, []int{3, 1, 1, 1}, stats.ByStatus.Data)
	require.Len(t, stats.ByStatus.BackgroundColor, 4)
	assert.Equal(t, statusColors["active"], stats.ByStatus.BackgroundColor[0])
	assert.Equal(t, statusColors["unknown"], stats.ByStatus.BackgroundColor[2])

	require.Len(t, stats.RecentlyUpdated, 5)
	assert.Equal(t, "1", stats.RecentlyUpdated[0].StreamID)
	assert.Equal(t, "3", stats.RecentlyUpdated[1].StreamID)
	assert.Equal(t, "5", stats.RecentlyUpdated[2].StreamID)
}

func TestComputeStreamStatsEmpty(t *testing.T) {
	stats := ComputeStreamStats(nil, time.Now())
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByCity.Labels)
	assert.NotNil(t, stats.RecentlyUpdated)
}

func TestDahuaMarkers(t *testing.T) {
	cameras, err := DecodeDahuaCameras([]byte(`{"items": [
		{"id": 1, "camera_name": "3rd Avenue", "track_id": "dahua_1", "lat": 33.6, "lon": "73.04", "active": 1, "city": "Rawalpindi"},
		{"id": 2, "camera_name": "No position", "track_id": "dahua_2", "lat": null, "lon": 73.0, "active": 1},
		{"id": 3, "camera_name": "Off", "track_id": "dahua_3", "lat": 31.5, "lon": 74.3, "active": 0}
	]}`))
	require.NoError(t, err)

	markers := DahuaMarkers(cameras)
	require.Len(t, markers, 2)

	assert.Equal(t, "1", markers[0].ID)
	assert.Equal(t, "dahua_1", markers[0].TrackID)
	assert.Equal(t, 73.04, markers[0].Lng)
	assert.True(t, markers[0].Active)
	assert.Equal(t, "Rawalpindi", markers[0].City)

	assert.Equal(t, "3", markers[1].ID)
	assert.False(t, markers[1].Active)
}
