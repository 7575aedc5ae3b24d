package handlers

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneCRUD(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(t, http.MethodPost, "/api/zones", map[string]any{
		"address": "Jinnah Avenue, Blue Area", "latitude": 33.7077, "longitude": 73.0498,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	zone := decodeBody(t, w)
	assert.EqualValues(t, 1, zone["id"])
	assert.Equal(t, "Jinnah Avenue, Blue Area", zone["address"])
	assert.InDelta(t, 33.7077, zone["latitude"], 1e-9)

	w = env.do(t, http.MethodPost, "/api/zones", map[string]any{
		"address": "Mall Road", "latitude": 31.5546, "longitude": 74.3572,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/zones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var zones []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zones))
	require.Len(t, zones, 2)
	assert.Equal(t, "Mall Road", zones[0]["address"], "newest zone first")

	w = env.do(t, http.MethodPut, "/api/zones/1", map[string]any{
		"address": "F-6 Markaz", "latitude": 33.7294, "longitude": 73.0747,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "F-6 Markaz", decodeBody(t, w)["address"])

	w = env.do(t, http.MethodGet, "/api/zones/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "F-6 Markaz", decodeBody(t, w)["address"])

	w = env.do(t, http.MethodDelete, "/api/zones/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Zone deleted successfully", decodeBody(t, w)["message"])

	for _, req := range []struct{ method, path string }{
		{http.MethodDelete, "/api/zones/1"},
		{http.MethodGet, "/api/zones/1"},
		{http.MethodGet, "/api/zones/abc"},
	} {
		w = env.do(t, req.method, req.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, req.path)
		assert.Equal(t, "Zone not found", decodeBody(t, w)["error"])
	}
}

func TestCreateZoneValidation(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	for name, body := range map[string]map[string]any{
		"missing address":    {"latitude": 33.7, "longitude": 73.0},
		"missing longitude":  {"address": "G-9", "latitude": 33.7},
		"latitude too large": {"address": "G-9", "latitude": 95.0, "longitude": 73.0},
	} {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/zones", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Address, latitude and longitude are required", decodeBody(t, w)["error"])
		})
	}

	w := env.do(t, http.MethodPut, "/api/zones/99", map[string]any{"address": "x", "latitude": 1.0, "longitude": 1.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
