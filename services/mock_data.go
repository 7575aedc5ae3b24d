package services

import (
	"embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"safecity-dashboard/be/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

//go:embed mockdata/*.json
var mockFS embed.FS

const mockEventCount = 25

// Pakistan bounding box used for generated coordinates.
const (
	mockMinLat = 24.8607
	mockMaxLat = 36.8776
	mockMinLng = 61.8719
	mockMaxLng = 77.8374
)

var (
	mockCities  = []string{"Islamabad", "Rawalpindi", "Lahore", "Karachi"}
	mockAreas   = []string{"Blue Area", "F-6", "G-9", "I-8", "Saddar", "Mall Road", "DHA", "Gulberg"}
	mockSources = []string{"Camera_01", "Camera_02", "Camera_03", "Camera_04", "Camera_05"}
	mockLabels  = []string{"Person", "Vehicle", "Suspicious Activity", "Unknown Object"}
)

// MockData serves canned upstream payloads. Events are generated once so
// repeated requests see a stable list.
type MockData struct {
	events []byte
}

func NewMockData(now time.Time, rng *rand.Rand) (*MockData, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x5afec17))
	}
	events, err := json.Marshal(generateMockEvents(now, rng))
	if err != nil {
		return nil, fmt.Errorf("marshal mock events: %w", err)
	}
	return &MockData{events: events}, nil
}

// Events returns {"events":[...],"total","page","page_size"}.
func (m *MockData) Events() []byte {
	return m.events
}

// Streams returns the {"streams":[...]} fixture.
func (m *MockData) Streams() []byte {
	return mustReadMock("mockdata/streams.json")
}

// LunaStreams mirrors the luna-streams path layout of the real service.
func (m *MockData) LunaStreams() []byte {
	return mustReadMock("mockdata/luna_streams.json")
}

// Dahua returns the camera inventory envelope ({"items":[...]}).
func (m *MockData) Dahua() []byte {
	return mustReadMock("mockdata/dahua.json")
}

// LiveRecordsDahua shares the inventory fixture.
func (m *MockData) LiveRecordsDahua() []byte {
	return mustReadMock("mockdata/dahua.json")
}

// Payload returns the fallback body for an upstream target.
func (m *MockData) Payload(target string) ([]byte, bool) {
	switch target {
	case TargetEvents:
		return m.Events(), true
	case TargetStreams:
		return m.Streams(), true
	case TargetDahua:
		return m.Dahua(), true
	}
	return nil, false
}

func mustReadMock(name string) []byte {
	data, err := mockFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded mock %s: %v", name, err))
	}
	return data
}

type mockRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type mockFaceDetection struct {
	SampleID   string  `json:"sample_id"`
	DetectTime string  `json:"detect_time"`
	DetectTS   *string `json:"detect_ts"`
	Detection  struct {
		Rect mockRect `json:"rect"`
	} `json:"detection"`
}

type mockEvent struct {
	EventID        string              `json:"event_id"`
	Source         string              `json:"source"`
	CreateTime     string              `json:"create_time"`
	ImageOrigin    string              `json:"image_origin"`
	FaceDetections []mockFaceDetection `json:"face_detections"`
	TopMatch       struct {
		Label      string  `json:"label"`
		Similarity float64 `json:"similarity"`
	} `json:"top_match"`
	Location struct {
		City        string `json:"city"`
		Area        string `json:"area"`
		GeoPosition struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geo_position"`
	} `json:"location"`
	UserData      string `json:"user_data"`
	DetectionTime string `json:"detection_time"`

	created time.Time
}

type mockEventPage struct {
	Events   []mockEvent `json:"events"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func generateMockEvents(now time.Time, rng *rand.Rand) mockEventPage {
	withinDay := func() time.Time {
		return now.Add(-time.Duration(rng.Float64() * float64(24*time.Hour)))
	}
	pick := func(list []string) string {
		return list[rng.IntN(len(list))]
	}

	events := make([]mockEvent, 0, mockEventCount)
	for i := 0; i < mockEventCount; i++ {
		city := pick(mockCities)

		var ev mockEvent
		ev.EventID = fmt.Sprintf("mock_event_%d", i+1)
		ev.Source = city + "_" + pick(mockSources)
		ev.created = withinDay()
		ev.CreateTime = ev.created.UTC().Format(time.RFC3339Nano)
		ev.ImageOrigin = fmt.Sprintf("/mock-images/person-%d.svg", i%10+1)

		var fd mockFaceDetection
		fd.SampleID = fmt.Sprintf("mock-sample-%d-%s", i+1, uuid.NewString()[:8])
		fd.DetectTime = withinDay().UTC().Format(time.RFC3339Nano)
		fd.Detection.Rect = mockRect{
			X:      rng.IntN(800) + 100,
			Y:      rng.IntN(600) + 100,
			Width:  rng.IntN(200) + 150,
			Height: rng.IntN(250) + 200,
		}
		ev.FaceDetections = []mockFaceDetection{fd}

		ev.TopMatch.Label = pick(mockLabels)
		ev.TopMatch.Similarity = 0.7 + rng.Float64()*0.3
		ev.Location.City = city
		ev.Location.Area = pick(mockAreas)
		ev.Location.GeoPosition.Latitude = mockMinLat + rng.Float64()*(mockMaxLat-mockMinLat)
		ev.Location.GeoPosition.Longitude = mockMinLng + rng.Float64()*(mockMaxLng-mockMinLng)
		ev.UserData = fmt.Sprintf("Mock detection %d", i+1)
		ev.DetectionTime = withinDay().UTC().Format(time.RFC3339Nano)

		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].created.After(events[j].created)
	})

	return mockEventPage{Events: events, Total: len(events), Page: 1, PageSize: len(events)}
}

// MockEventList decodes the generated events for in-process consumers.
func (m *MockData) MockEventList() []models.Event {
	events, err := DecodeEvents(m.events)
	if err != nil {
		return nil
	}
	return events
}
