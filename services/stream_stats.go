package services

import (
	"sort"
	"strings"
	"time"

	"safecity-dashboard/be/models"
)

const recentStreamsLimit = 5

var statusColors = map[string]string{
	models.StreamStatusActive:   "rgba(16, 185, 129, 0.85)",
	models.StreamStatusPause:    "rgba(245, 158, 11, 0.85)",
	models.StreamStatusFailed:   "rgba(239, 68, 68, 0.85)",
	models.StreamStatusInactive: "rgba(99, 102, 241, 0.85)",
	models.StreamStatusError:    "rgba(244, 63, 94, 0.85)",
	"unknown":                   "rgba(107, 114, 128, 0.85)",
}

// UpdatedTimestamp picks the most specific "last changed" time of a stream,
// falling back to its last event and then its creation time.
func UpdatedTimestamp(s *models.Stream) int64 {
	return unixMillis(firstNonEmpty(
		s.UpdateTime,
		s.UpdatedTime,
		s.UpdatedAt,
		s.UpdatedAtCamel,
		s.ModifyTime,
		s.ModifiedAt,
		s.LastEventTime,
		s.LastEventTimeCC,
		s.CreateTime,
		s.CreatedAt,
		s.CreatedAtCamel,
	))
}

func CreatedTimestamp(s *models.Stream) int64 {
	return unixMillis(firstNonEmpty(s.CreateTime, s.CreatedAt, s.CreatedAtCamel))
}

// StreamMarker places a stream on the map; streams without a position sit
// at DefaultCenter.
func StreamMarker(s *models.Stream) models.StreamMarker {
	m := models.StreamMarker{
		StreamID: s.StreamID.String(),
		Name:     firstNonEmpty(s.Name, "Unknown Location"),
		Status:   firstNonEmpty(s.Status, "unknown"),
		Lat:      DefaultCenter[0],
		Lng:      DefaultCenter[1],
	}
	if s.Location != nil {
		m.City = s.Location.City.String()
		m.Area = s.Location.Area.String()
		if lat, lng, ok := GeoCoords(s.Location.GeoPosition); ok {
			m.Lat, m.Lng = lat, lng
		}
	}
	if s.Autorestart != nil {
		m.Autorestart = s.Autorestart.Status
	}
	return m
}

func StreamMarkers(streams []models.Stream) []models.StreamMarker {
	out := make([]models.StreamMarker, 0, len(streams))
	for i := range streams {
		out = append(out, StreamMarker(&streams[i]))
	}
	return out
}

func hasStreamLocation(s *models.Stream) bool {
	if s.Location == nil || s.Location.GeoPosition == nil {
		return false
	}
	gp := s.Location.GeoPosition
	return gp.Latitude.Finite() && gp.Latitude.Value != 0 &&
		gp.Longitude.Finite() && gp.Longitude.Value != 0
}

// counter keeps first-seen order so charts render stable slices.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *counter) chart() models.Chart {
	ch := models.Chart{Labels: []string{}, Data: []int{}}
	for _, k := range c.keys {
		ch.Labels = append(ch.Labels, k)
		ch.Data = append(ch.Data, c.counts[k])
	}
	return ch
}

// ComputeStreamStats aggregates the dashboard figures for a stream list.
func ComputeStreamStats(streams []models.Stream, now time.Time) models.StreamStats {
	cities := newCounter()
	statuses := newCounter()
	stats := models.StreamStats{Total: len(streams)}

	for i := range streams {
		s := &streams[i]

		city := ""
		if s.Location != nil {
			city = s.Location.City.String()
		}
		cities.add(firstNonEmpty(city, "Unknown"))

		status := strings.ToLower(firstNonEmpty(s.Status, "unknown"))
		statuses.add(status)
		if status == models.StreamStatusActive {
			stats.Active++
		}

		if hasStreamLocation(s) {
			stats.WithLocation++
		} else {
			stats.WithoutLocation++
		}

		if created := CreatedTimestamp(s); created != 0 && now.UnixMilli()-created < (24*time.Hour).Milliseconds() {
			stats.NewLast24h++
		}
	}

	stats.ByCity = cities.chart()
	stats.ByStatus = statuses.chart()
	stats.ByStatus.BackgroundColor = make([]string, 0, len(stats.ByStatus.Labels))
	for _, label := range stats.ByStatus.Labels {
		color, ok := statusColors[label]
		if !ok {
			color = statusColors["unknown"]
		}
		stats.ByStatus.BackgroundColor = append(stats.ByStatus.BackgroundColor, color)
	}

	sorted := make([]*models.Stream, len(streams))
	for i := range streams {
		sorted[i] = &streams[i]
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return UpdatedTimestamp(sorted[a]) > UpdatedTimestamp(sorted[b])
	})
	if len(sorted) > recentStreamsLimit {
		sorted = sorted[:recentStreamsLimit]
	}
	stats.RecentlyUpdated = make([]models.StreamMarker, 0, len(sorted))
	for _, s := range sorted {
		stats.RecentlyUpdated = append(stats.RecentlyUpdated, StreamMarker(s))
	}

	return stats
}

// DahuaMarkers keeps cameras with a finite position.
func DahuaMarkers(cameras []models.DahuaCamera) []models.DahuaMarker {
	out := make([]models.DahuaMarker, 0, len(cameras))
	for i := range cameras {
		c := &cameras[i]
		if !c.Lat.Finite() || !c.Lon.Finite() {
			continue
		}
		out = append(out, models.DahuaMarker{
			ID:       c.ID.String(),
			Name:     c.CameraName,
			TrackID:  c.TrackID,
			Lat:      c.Lat.Value,
			Lng:      c.Lon.Value,
			Active:   c.IsActive(),
			City:     c.City.String(),
			Area:     c.Area.String(),
			StreamID: c.StreamID,
		})
	}
	return out
}
