package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDecodesMixedCoordinateEncodings(t *testing.T) {
	payload := `{
		"event_id": "ev-1",
		"source": "Camera_01",
		"house": {"ignored": true},
		"latitude": "33.71",
		"longitude": 73.05,
		"top_match": {"label": "Person", "similarity": 0.91},
		"location": {"city": "Islamabad", "house_number": 45, "geo_position": {"lat": "33.7", "lon": "bad"}},
		"user_data": {"nested": "object"}
	}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))

	assert.Equal(t, "ev-1", ev.EventID.String())
	assert.True(t, ev.Latitude.Finite())
	assert.InDelta(t, 33.71, ev.Latitude.Value, 1e-9)
	assert.InDelta(t, 73.05, ev.Longitude.Value, 1e-9)
	assert.Equal(t, "45", ev.Location.HouseNumber.String())
	assert.True(t, ev.Location.GeoPosition.Lat.Finite())
	assert.False(t, ev.Location.GeoPosition.Lon.Valid)
	assert.Empty(t, ev.UserData.String())
	assert.InDelta(t, 0.91, ev.TopMatch.Similarity.Value, 1e-9)
}

func TestEventDecodesNumericTimesAndImages(t *testing.T) {
	payload := `{
		"event_id": "odd",
		"create_time": 1760000000,
		"image_url": 42,
		"snapshot": {"nested": true},
		"face_detections": [{"sample_id": 9, "detect_time": 1760000000123, "image_origin": null}]
	}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))

	assert.Equal(t, "odd", ev.EventID.String())
	assert.Equal(t, "1760000000", ev.CreateTime)
	assert.Equal(t, "42", ev.ImageURL)
	assert.Empty(t, ev.Snapshot)
	require.Len(t, ev.FaceDetections, 1)
	assert.Equal(t, "9", ev.FaceDetections[0].SampleID.String())
	assert.Equal(t, "1760000000123", ev.FaceDetections[0].DetectTime)
	assert.Empty(t, ev.FaceDetections[0].ImageOrigin)

	var list EventList
	require.NoError(t, json.Unmarshal([]byte(`{"events":[{"event_id":"good","create_time":"2025-10-09T08:00:00Z"},`+payload+`]}`), &list))
	require.Len(t, list.Events, 2)
	assert.Equal(t, "1760000000", list.Events[1].CreateTime)
}

func TestEventMarshalPassesPayloadThrough(t *testing.T) {
	payload := `{"event_id":"ev-2","extra_field":[1,2,3]}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
}

func TestEventMarshalWithoutPayload(t *testing.T) {
	ev := Event{EventID: "ev-3", Latitude: Float(1.5)}

	out, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "ev-3", decoded["event_id"])
	assert.EqualValues(t, 1.5, decoded["latitude"])
	assert.Nil(t, decoded["longitude"])
}

func TestStreamAndDahuaDecode(t *testing.T) {
	var list StreamList
	require.NoError(t, json.Unmarshal([]byte(`{"streams":[{"stream_id":"s1","name":"Gate","status":"active","version":2,"autorestart":{"restart":1,"status":"enabled"}}]}`), &list))
	require.Len(t, list.Streams, 1)
	assert.Equal(t, "s1", list.Streams[0].StreamID.String())
	assert.Equal(t, "enabled", list.Streams[0].Autorestart.Status)

	var cams []DahuaCamera
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"camera_name":"3rd Avenue","track_id":"t1","lat":55.7,"lon":"36.6","active":1}]`), &cams))
	require.Len(t, cams, 1)
	assert.Equal(t, "7", cams[0].ID.String())
	assert.True(t, cams[0].IsActive())
	assert.InDelta(t, 36.6, cams[0].Lon.Value, 1e-9)
}
