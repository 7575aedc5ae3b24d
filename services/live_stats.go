package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"safecity-dashboard/be/models"
)

const highConfidence = 0.9

// FilterEvents narrows the feed to one city ("" or "All" keeps every city)
// and to events whose area, source or label contains term.
func FilterEvents(events []models.Event, city, term string) []models.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Event, 0, len(events))
	for i := range events {
		ev := &events[i]
		if city != "" && city != "All" && eventCity(ev) != city {
			continue
		}
		if term != "" {
			area := ""
			if ev.Location != nil {
				area = ev.Location.Area.String()
			}
			label := ev.UserData.String()
			if ev.TopMatch != nil && ev.TopMatch.Label != "" {
				label = ev.TopMatch.Label.String()
			}
			if !strings.Contains(strings.ToLower(area), term) &&
				!strings.Contains(strings.ToLower(ev.Source.String()), term) &&
				!strings.Contains(strings.ToLower(label), term) {
				continue
			}
		}
		out = append(out, *ev)
	}
	return out
}

func eventCity(ev *models.Event) string {
	if ev.Location == nil {
		return ""
	}
	return ev.Location.City.String()
}

// ComputeLiveStats counts distinct camera positions, areas and cities of the
// given events. Cities lists every city seen, sorted.
func ComputeLiveStats(events []models.Event) models.LiveStats {
	cameras := make(map[string]struct{})
	areas := make(map[string]struct{})
	cities := make(map[string]struct{})
	var latest int64
	var similaritySum float64

	stats := models.LiveStats{Faces: len(events), Latest: Dash}
	for i := range events {
		ev := &events[i]
		if ev.Location != nil && ev.Location.GeoPosition != nil {
			gp := ev.Location.GeoPosition
			if gp.Latitude.Finite() && gp.Longitude.Finite() {
				cameras[coordKey(gp.Latitude.Value, gp.Longitude.Value)] = struct{}{}
			}
		}

		area := ""
		if ev.Location != nil {
			area = ev.Location.Area.String()
		}
		if area = strings.TrimSpace(firstNonEmpty(area, ev.Source.String())); area != "" {
			areas[area] = struct{}{}
		}
		if c := eventCity(ev); c != "" {
			cities[c] = struct{}{}
		}

		if t := unixMillis(firstNonEmpty(ev.CreateTime, ev.DetectTime)); t > latest {
			latest = t
		}

		if ev.TopMatch != nil && ev.TopMatch.Similarity.Finite() {
			similaritySum += ev.TopMatch.Similarity.Value
			if ev.TopMatch.Similarity.Value > highConfidence {
				stats.HighConfidenceDetections++
			}
		}
	}

	stats.Cameras = len(cameras)
	stats.Areas = len(areas)
	stats.ActiveCities = len(cities)
	if latest > 0 {
		stats.Latest = time.UnixMilli(latest).UTC().Format(time.RFC3339)
	}
	if len(events) > 0 {
		stats.AverageSimilarity = math.Round(similaritySum/float64(len(events))*1000) / 10
	}

	stats.Cities = make([]string, 0, len(cities))
	for c := range cities {
		stats.Cities = append(stats.Cities, c)
	}
	sort.Strings(stats.Cities)
	return stats
}
