package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"safecity-dashboard/be/models"
)

// Placeholder shown for missing popup fields.
const Dash = "—"

// DefaultCenter is used for cameras whose events carry no coordinates.
var DefaultCenter = [2]float64{33.6844, 73.0479}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime accepts the timestamp spellings seen across upstream services.
// Bare numbers are unix seconds, or milliseconds from 1e12 up.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
			return time.Time{}, false
		}
		if n < 1e12 {
			n *= 1000
		}
		return time.UnixMilli(int64(n)).UTC(), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func unixMillis(s string) int64 {
	if t, ok := ParseTime(s); ok {
		return t.UnixMilli()
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstValid(values ...models.FlexFloat) models.FlexFloat {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return models.FlexFloat{}
}

// ExtractCoords returns the event's position. geo_position wins over the
// flat latitude/longitude pair; values given as [lon, lat] are swapped back
// when the range makes that obvious.
func ExtractCoords(ev *models.Event) (lat, lng float64, ok bool) {
	if ev == nil {
		return 0, 0, false
	}

	if ev.Location != nil && ev.Location.GeoPosition != nil {
		return GeoCoords(ev.Location.GeoPosition)
	}
	if !ev.Latitude.Finite() || !ev.Longitude.Finite() {
		return 0, 0, false
	}
	return ev.Latitude.Value, ev.Longitude.Value, true
}

// GeoCoords reads a geo_position in any of its spellings.
func GeoCoords(gp *models.GeoPosition) (lat, lng float64, ok bool) {
	if gp == nil {
		return 0, 0, false
	}
	rawLat := firstValid(gp.Latitude, gp.Lat, gp.Y)
	rawLng := firstValid(gp.Longitude, gp.Lng, gp.Lon, gp.X)
	if !rawLat.Finite() || !rawLng.Finite() {
		return 0, 0, false
	}
	lat, lng = rawLat.Value, rawLng.Value
	if lat != 0 && lng != 0 && math.Abs(lat) > 90 && math.Abs(lng) <= 90 {
		lat, lng = lng, lat
	}
	return lat, lng, true
}

// EventKey identifies an event for de-duplication.
func EventKey(ev *models.Event) string {
	if id := ev.EventID.String(); id != "" {
		return id
	}
	label := ""
	if ev.TopMatch != nil {
		label = ev.TopMatch.Label.String()
	}
	return fmt.Sprintf("%s-%s-%s", ev.Source, ev.CreateTime, label)
}

// EventTime is the best "when" string of an event, or "".
func EventTime(ev *models.Event) string {
	return firstNonEmpty(ev.CreateTime, ev.DetectTime, ev.CreatedAt, ev.Datetime)
}

// EventLabel is the display name of the matched person.
func EventLabel(ev *models.Event) string {
	var label string
	if ev.TopMatch != nil {
		label = ev.TopMatch.Label.String()
	}
	if label = firstNonEmpty(label, ev.UserData.String(), ev.Name.String()); label == "" {
		return "Unknown"
	}
	return label
}

// FormatSimilarity renders a 0..1 score as a percentage with one decimal.
func FormatSimilarity(tm *models.TopMatch) string {
	if tm == nil || !tm.Similarity.Finite() {
		return Dash
	}
	return fmt.Sprintf("%.1f%%", tm.Similarity.Value*100)
}

// NormalizeEvent shapes an event for a map marker. ok is false when the
// event has no usable coordinates.
func NormalizeEvent(ev *models.Event, base string, now time.Time) (models.MapEvent, bool) {
	lat, lng, ok := ExtractCoords(ev)
	if !ok {
		return models.MapEvent{}, false
	}

	when := EventTime(ev)
	fd := ev.FirstFaceDetection()
	var fdTime string
	if fd != nil {
		fdTime = fd.DetectTime
	}
	cacheKey := firstNonEmpty(when, fdTime, ev.EventID.String(), ev.ID.String())
	if cacheKey == "" {
		cacheKey = fmt.Sprint(now.UnixMilli())
	}

	candidates := ImageCandidates(ev, fd, base, cacheKey)

	var city, area string
	if ev.Location != nil {
		city, area = ev.Location.City.String(), ev.Location.Area.String()
	}

	out := models.MapEvent{
		EventID:         firstNonEmpty(ev.EventID.String(), ev.ID.String(), cacheKey),
		Source:          ev.Source.String(),
		TrackID:         ev.TrackID.String(),
		Lat:             lat,
		Lng:             lng,
		Label:           EventLabel(ev),
		Similarity:      FormatSimilarity(ev.TopMatch),
		When:            firstNonEmpty(when, Dash),
		City:            firstNonEmpty(city, ev.City.String(), Dash),
		Area:            firstNonEmpty(area, ev.Area.String(), Dash),
		ImageCandidates: candidates,
		Timestamp:       now.UnixMilli(),
	}
	if len(candidates) > 0 {
		out.Image = candidates[0]
	}
	if t, ok := ParseTime(when); ok {
		out.Timestamp = t.UnixMilli()
	}
	return out, true
}

// NormalizeEvents keeps only mappable events.
func NormalizeEvents(events []models.Event, base string, now time.Time) []models.MapEvent {
	out := make([]models.MapEvent, 0, len(events))
	for i := range events {
		if me, ok := NormalizeEvent(&events[i], base, now); ok {
			out = append(out, me)
		}
	}
	return out
}

// FaceSampleURL points at the stored face sample of the first detection.
func FaceSampleURL(ev *models.Event, base string) string {
	if fd := ev.FirstFaceDetection(); fd != nil && fd.SampleID != "" {
		return fmt.Sprintf("%s/6/samples/faces/%s", base, fd.SampleID)
	}
	return firstNonEmpty(ev.ImageOrigin, ev.Source.String(), ev.Image)
}
