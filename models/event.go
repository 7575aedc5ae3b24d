package models

import (
	"github.com/goccy/go-json"
)

// Event is a face-detection record from the upstream events service. Only
// the fields the dashboard reads are typed; the raw payload is kept and
// written back verbatim so pass-through consumers see every field.
type Event struct {
	EventID        FlexString      `json:"event_id,omitempty"`
	ID             FlexString      `json:"id,omitempty"`
	Source         FlexString      `json:"source,omitempty"`
	TrackID        FlexString      `json:"track_id,omitempty"`
	CreateTime     string          `json:"create_time,omitempty"`
	DetectTime     string          `json:"detect_time,omitempty"`
	DetectionTime  string          `json:"detection_time,omitempty"`
	CreatedAt      string          `json:"createdAt,omitempty"`
	Datetime       string          `json:"datetime,omitempty"`
	ImageOrigin    string          `json:"image_origin,omitempty"`
	Snapshot       string          `json:"snapshot,omitempty"`
	Image          string          `json:"image,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Img            string          `json:"img,omitempty"`
	Thumbnail      string          `json:"thumbnail,omitempty"`
	Photo          string          `json:"photo,omitempty"`
	UserData       FlexString      `json:"user_data,omitempty"`
	Name           FlexString      `json:"name,omitempty"`
	City           FlexString      `json:"city,omitempty"`
	Area           FlexString      `json:"area,omitempty"`
	Latitude       FlexFloat       `json:"latitude"`
	Longitude      FlexFloat       `json:"longitude"`
	FaceDetections []FaceDetection `json:"face_detections,omitempty"`
	TopMatch       *TopMatch       `json:"top_match,omitempty"`
	Location       *Location       `json:"location,omitempty"`

	raw json.RawMessage
}

type FaceDetection struct {
	SampleID    FlexString `json:"sample_id,omitempty"`
	TrackID     FlexString `json:"track_id,omitempty"`
	DetectTime  string     `json:"detect_time,omitempty"`
	ImageOrigin string     `json:"image_origin,omitempty"`
	Detection   *Detection `json:"detection,omitempty"`
}

type Detection struct {
	Rect Rect `json:"rect"`
}

type Rect struct {
	X      FlexFloat `json:"x"`
	Y      FlexFloat `json:"y"`
	Width  FlexFloat `json:"width"`
	Height FlexFloat `json:"height"`
}

type TopMatch struct {
	Label      FlexString `json:"label,omitempty"`
	Similarity FlexFloat  `json:"similarity"`
}

type Location struct {
	City        FlexString   `json:"city,omitempty"`
	Area        FlexString   `json:"area,omitempty"`
	District    FlexString   `json:"district,omitempty"`
	Street      FlexString   `json:"street,omitempty"`
	HouseNumber FlexString   `json:"house_number,omitempty"`
	GeoPosition *GeoPosition `json:"geo_position,omitempty"`
}

// GeoPosition accepts the spellings seen across upstream services.
type GeoPosition struct {
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
	Lat       FlexFloat `json:"lat"`
	Lng       FlexFloat `json:"lng"`
	Lon       FlexFloat `json:"lon"`
	X         FlexFloat `json:"x"`
	Y         FlexFloat `json:"y"`
}

// EventList is the envelope returned by the events API.
type EventList struct {
	Events []Event `json:"events"`
}

// Time and image fields arrive as numbers from some services; they are
// decoded leniently and kept as their text form.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	var a struct {
		alias
		CreateTime    FlexString `json:"create_time"`
		DetectTime    FlexString `json:"detect_time"`
		DetectionTime FlexString `json:"detection_time"`
		CreatedAt     FlexString `json:"createdAt"`
		Datetime      FlexString `json:"datetime"`
		ImageOrigin   FlexString `json:"image_origin"`
		Snapshot      FlexString `json:"snapshot"`
		Image         FlexString `json:"image"`
		ImageURL      FlexString `json:"image_url"`
		Img           FlexString `json:"img"`
		Thumbnail     FlexString `json:"thumbnail"`
		Photo         FlexString `json:"photo"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Event(a.alias)
	e.CreateTime = a.CreateTime.String()
	e.DetectTime = a.DetectTime.String()
	e.DetectionTime = a.DetectionTime.String()
	e.CreatedAt = a.CreatedAt.String()
	e.Datetime = a.Datetime.String()
	e.ImageOrigin = a.ImageOrigin.String()
	e.Snapshot = a.Snapshot.String()
	e.Image = a.Image.String()
	e.ImageURL = a.ImageURL.String()
	e.Img = a.Img.String()
	e.Thumbnail = a.Thumbnail.String()
	e.Photo = a.Photo.String()
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (fd *FaceDetection) UnmarshalJSON(data []byte) error {
	type alias FaceDetection
	var a struct {
		alias
		DetectTime  FlexString `json:"detect_time"`
		ImageOrigin FlexString `json:"image_origin"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*fd = FaceDetection(a.alias)
	fd.DetectTime = a.DetectTime.String()
	fd.ImageOrigin = a.ImageOrigin.String()
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	type alias Event
	return json.Marshal(alias(e))
}

// FirstFaceDetection returns the first face detection, or nil.
func (e *Event) FirstFaceDetection() *FaceDetection {
	if len(e.FaceDetections) == 0 {
		return nil
	}
	return &e.FaceDetections[0]
}
