package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveEventsFixture = `[
	{"event_id": "1", "source": "Camera_01", "create_time": "2025-01-01T10:00:00Z",
	 "top_match": {"label": "Ali", "similarity": 0.95},
	 "location": {"city": "Islamabad", "area": "Blue Area", "geo_position": {"latitude": 33.7, "longitude": 73.0}}},
	{"event_id": "2", "source": "Camera_02", "create_time": "2025-01-01T12:30:00Z",
	 "top_match": {"label": "Sara", "similarity": 0.75},
	 "location": {"city": "Lahore", "area": "Gulberg", "geo_position": {"latitude": 31.5, "longitude": 74.3}}},
	{"event_id": "3", "source": "Camera_01", "create_time": "2025-01-01T11:00:00Z",
	 "user_data": "visitor",
	 "location": {"city": "Islamabad", "area": "Blue Area", "geo_position": {"latitude": 33.7, "longitude": 73.0}}}
]`

func TestFilterEvents(t *testing.T) {
	events := decodeEventList(t, liveEventsFixture)

	assert.Len(t, FilterEvents(events, "", ""), 3)
	assert.Len(t, FilterEvents(events, "All", ""), 3)

	got := FilterEvents(events, "Islamabad", "")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].EventID.String())

	got = FilterEvents(events, "All", "gulb")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].EventID.String())

	got = FilterEvents(events, "", "VISITOR")
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].EventID.String())

	got = FilterEvents(events, "Islamabad", "camera_01")
	assert.Len(t, got, 2)

	assert.Empty(t, FilterEvents(events, "Karachi", ""))
}

func TestComputeLiveStats(t *testing.T) {
	stats := ComputeLiveStats(decodeEventList(t, liveEventsFixture))

	assert.Equal(t, 3, stats.Faces)
	assert.Equal(t, 2, stats.Cameras)
	assert.Equal(t, 2, stats.Areas)
	assert.Equal(t, 2, stats.ActiveCities)
	assert.Equal(t, []string{"Islamabad", "Lahore"}, stats.Cities)
	assert.Equal(t, 1, stats.HighConfidenceDetections)
	assert.Equal(t, "2025-01-01T12:30:00Z", stats.Latest)
	// (0.95 + 0.75) / 3 events
	assert.InDelta(t, 56.7, stats.AverageSimilarity, 1e-9)
}

func TestComputeLiveStatsEmpty(t *testing.T) {
	stats := ComputeLiveStats(nil)
	assert.Equal(t, Dash, stats.Latest)
	assert.Zero(t, stats.AverageSimilarity)
	assert.Empty(t, stats.Cities)
}
