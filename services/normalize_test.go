package services

import (
	"testing"
	"time"

	"safecity-dashboard/be/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvent(t *testing.T, raw string) models.Event {
	t.Helper()
	var ev models.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

func decodeEventList(t *testing.T, raw string) []models.Event {
	t.Helper()
	events, err := DecodeEvents([]byte(raw))
	require.NoError(t, err)
	return events
}

func TestParseTimeLayouts(t *testing.T) {
	for _, s := range []string{
		"2025-01-02T03:04:05Z",
		"2025-01-02T03:04:05.123456+05:00",
		"2025-01-02T03:04:05",
		"2025-01-02 03:04:05",
		"2025-01-02",
	} {
		_, ok := ParseTime(s)
		assert.True(t, ok, s)
	}

	_, ok := ParseTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseTime("  ")
	assert.False(t, ok)

	secs, ok := ParseTime("1760000000")
	require.True(t, ok)
	millis, ok := ParseTime("1760000000000")
	require.True(t, ok)
	assert.True(t, secs.Equal(millis))
	assert.Equal(t, int64(1760000000), secs.Unix())
}

func TestExtractCoords(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		lat    float64
		lng    float64
		wantOK bool
	}{
		{
			name:   "geo position wins over flat pair",
			raw:    `{"latitude": 1, "longitude": 2, "location": {"geo_position": {"latitude": 33.6, "longitude": 73.1}}}`,
			lat:    33.6,
			lng:    73.1,
			wantOK: true,
		},
		{
			name:   "string coordinates",
			raw:    `{"latitude": "31.52", "longitude": "74.35"}`,
			lat:    31.52,
			lng:    74.35,
			wantOK: true,
		},
		{
			name:   "lon lat order is swapped back",
			raw:    `{"location": {"geo_position": {"lat": 121.47, "lng": 31.23}}}`,
			lat:    31.23,
			lng:    121.47,
			wantOK: true,
		},
		{
			name:   "x y spelling",
			raw:    `{"location": {"geo_position": {"y": 24.86, "x": 67.01}}}`,
			lat:    24.86,
			lng:    67.01,
			wantOK: true,
		},
		{
			name:   "missing longitude",
			raw:    `{"latitude": 33.6}`,
			wantOK: false,
		},
		{
			name:   "garbage",
			raw:    `{"latitude": "north", "longitude": {}}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := decodeEvent(t, tt.raw)
			lat, lng, ok := ExtractCoords(&ev)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.lat, lat, 1e-9)
				assert.InDelta(t, tt.lng, lng, 1e-9)
			}
		})
	}

	_, _, ok := ExtractCoords(nil)
	assert.False(t, ok)
}

func TestEventKey(t *testing.T) {
	ev := decodeEvent(t, `{"event_id": "abc", "source": "cam"}`)
	assert.Equal(t, "abc", EventKey(&ev))

	ev = decodeEvent(t, `{"source": "cam", "create_time": "2025-01-02T03:04:05Z", "top_match": {"label": "Ali"}}`)
	assert.Equal(t, "cam-2025-01-02T03:04:05Z-Ali", EventKey(&ev))
}

func TestEventLabelAndSimilarity(t *testing.T) {
	ev := decodeEvent(t, `{"top_match": {"label": "Ali", "similarity": 0.876}}`)
	assert.Equal(t, "Ali", EventLabel(&ev))
	assert.Equal(t, "87.6%", FormatSimilarity(ev.TopMatch))

	ev = decodeEvent(t, `{"user_data": "visitor"}`)
	assert.Equal(t, "visitor", EventLabel(&ev))
	assert.Equal(t, Dash, FormatSimilarity(ev.TopMatch))

	ev = decodeEvent(t, `{}`)
	assert.Equal(t, "Unknown", EventLabel(&ev))
}

func TestNormalizeEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := decodeEvent(t, `{
		"event_id": "ev-1",
		"source": "Camera_01",
		"create_time": "2025-01-02T03:04:05Z",
		"face_detections": [{"sample_id": "s-1", "image_origin": "/6/images/a b.jpg"}],
		"top_match": {"label": "Ali", "similarity": 0.5},
		"location": {"city": "Islamabad", "geo_position": {"latitude": 33.6, "longitude": 73.1}}
	}`)

	me, ok := NormalizeEvent(&ev, "http://api", now)
	require.True(t, ok)

	assert.Equal(t, "ev-1", me.EventID)
	assert.Equal(t, "Camera_01", me.Source)
	assert.Equal(t, "Ali", me.Label)
	assert.Equal(t, "50.0%", me.Similarity)
	assert.Equal(t, "Islamabad", me.City)
	assert.Equal(t, Dash, me.Area)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(), me.Timestamp)

	require.NotEmpty(t, me.ImageCandidates)
	assert.Equal(t, me.ImageCandidates[0], me.Image)
	assert.Contains(t, me.Image, "/api/image-proxy?url=")
	assert.Contains(t, me.ImageCandidates, "http://api/6/images/a%20b.jpg?_v=2025-01-02T03%3A04%3A05Z")
	for _, c := range me.ImageCandidates {
		assert.Contains(t, c, "_v=")
	}

	assert.Equal(t, "http://api/6/samples/faces/s-1", FaceSampleURL(&ev, "http://api"))
}

func TestNormalizeEventsDropsUnmappable(t *testing.T) {
	now := time.Now()
	events := decodeEventList(t, `{"events": [
		{"event_id": "a", "latitude": 33.6, "longitude": 73.1},
		{"event_id": "b"},
		{"event_id": "c", "latitude": 31.5, "longitude": 74.3}
	]}`)

	out := NormalizeEvents(events, "", now)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].EventID)
	assert.Equal(t, "c", out[1].EventID)
	// no parseable time: falls back to now
	assert.Equal(t, now.UnixMilli(), out[0].Timestamp)
	assert.Equal(t, Dash, out[0].When)
}
