package services

import (
	"fmt"
	"math"
	"sort"

	"safecity-dashboard/be/models"
)

const metersPerDegree = 111320.0

func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// LatestPerLocation keeps the newest event per coordinate (6 decimals),
// in order of first appearance.
func LatestPerLocation(events []models.MapEvent) []models.MapEvent {
	index := make(map[string]int)
	out := make([]models.MapEvent, 0, len(events))
	for _, ev := range events {
		key := coordKey(ev.Lat, ev.Lng)
		i, exists := index[key]
		if !exists {
			index[key] = len(out)
			out = append(out, ev)
			continue
		}
		if ev.Timestamp > out[i].Timestamp {
			out[i] = ev
		}
	}
	return out
}

// MetersToDegrees converts a metric offset at lat into degree deltas.
func MetersToDegrees(lat, dxMeters, dyMeters float64) (dLat, dLng float64) {
	lngMeters := metersPerDegree * math.Cos(lat*math.Pi/180)
	return dyMeters / metersPerDegree, dxMeters / lngMeters
}

// RadialOffsets arranges n points evenly on a circle, in meters.
func RadialOffsets(n int, radiusMeters float64) [][2]float64 {
	if n <= 1 {
		return [][2]float64{{0, 0}}
	}
	out := make([][2]float64, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		a := float64(i) * step
		out[i] = [2]float64{radiusMeters * math.Cos(a), radiusMeters * math.Sin(a)}
	}
	return out
}

// SpreadOverlapping moves markers that share a coordinate onto a circle of
// the given radius so each stays clickable.
func SpreadOverlapping(markers []models.MapEvent, radiusMeters float64) []models.MapEvent {
	groups := make(map[string][]int)
	for i, m := range markers {
		key := coordKey(m.Lat, m.Lng)
		groups[key] = append(groups[key], i)
	}

	out := make([]models.MapEvent, len(markers))
	copy(out, markers)
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		offsets := RadialOffsets(len(idx), radiusMeters)
		for j, i := range idx {
			dLat, dLng := MetersToDegrees(markers[i].Lat, offsets[j][0], offsets[j][1])
			out[i].Lat = markers[i].Lat + dLat
			out[i].Lng = markers[i].Lng + dLng
		}
	}
	return out
}

// GroupByCamera builds one group per event source with the people it saw,
// newest first. Groups are ordered by source.
func GroupByCamera(events []models.Event, base string) []models.CameraGroup {
	var order []string
	bySource := make(map[string][]*models.Event)
	for i := range events {
		key := events[i].Source.String()
		if key == "" {
			key = "Unknown"
		}
		if _, ok := bySource[key]; !ok {
			order = append(order, key)
		}
		bySource[key] = append(bySource[key], &events[i])
	}

	groups := make([]models.CameraGroup, 0, len(order))
	for _, source := range order {
		evs := bySource[source]

		lat, lng := DefaultCenter[0], DefaultCenter[1]
		for i := len(evs) - 1; i >= 0; i-- {
			if la, ln, ok := ExtractCoords(evs[i]); ok {
				lat, lng = la, ln
				break
			}
		}

		people := []models.Person{}
		for _, ev := range evs {
			for j := range ev.FaceDetections {
				people = append(people, newPerson(ev, &ev.FaceDetections[j], base))
			}
		}
		sort.SliceStable(people, func(a, b int) bool {
			return people[a].When > people[b].When
		})

		groups = append(groups, models.CameraGroup{
			Source:   source,
			Lat:      lat,
			Lng:      lng,
			People:   people,
			Location: evs[len(evs)-1].Location,
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Source < groups[b].Source
	})
	return groups
}

func newPerson(ev *models.Event, fd *models.FaceDetection, base string) models.Person {
	when := unixMillis(fd.DetectTime)
	if when == 0 {
		when = unixMillis(ev.CreateTime)
	}

	label := Dash
	if ev.TopMatch != nil && ev.TopMatch.Label != "" {
		label = ev.TopMatch.Label.String()
	} else if ev.UserData != "" {
		label = ev.UserData.String()
	}

	p := models.Person{
		When:    when,
		WhenStr: firstNonEmpty(fd.DetectTime, ev.CreateTime),
		Label:   label,
		Image:   PickEventImage(ev, fd, base),
		EventID: ev.EventID.String(),
		TrackID: firstNonEmpty(fd.TrackID.String(), ev.TrackID.String(), ev.EventID.String()),
	}
	if ev.TopMatch != nil && ev.TopMatch.Similarity.Finite() {
		s := ev.TopMatch.Similarity.Value
		p.Similarity = &s
	}
	return p
}

// LatestEventForTrackIDs returns the newest event (by create_time) whose
// track_id is one of trackIDs, or nil.
func LatestEventForTrackIDs(events []models.Event, trackIDs []string) *models.Event {
	wanted := make(map[string]struct{}, len(trackIDs))
	for _, id := range trackIDs {
		if id != "" {
			wanted[id] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var best *models.Event
	var bestTS int64
	for i := range events {
		ev := &events[i]
		if _, ok := wanted[ev.TrackID.String()]; !ok || ev.TrackID == "" {
			continue
		}
		ts := unixMillis(ev.CreateTime)
		if best == nil || ts > bestTS {
			best, bestTS = ev, ts
		}
	}
	return best
}
