package models

import (
	"github.com/goccy/go-json"
)

// DahuaCamera is an inventory entry from the Dahua camera service.
type DahuaCamera struct {
	ID          FlexString `json:"id"`
	CameraName  string     `json:"camera_name"`
	TrackID     string     `json:"track_id"`
	Lat         FlexFloat  `json:"lat"`
	Lon         FlexFloat  `json:"lon"`
	Active      FlexFloat  `json:"active"`
	City        FlexString `json:"city,omitempty"`
	Area        FlexString `json:"area,omitempty"`
	District    FlexString `json:"district,omitempty"`
	Street      FlexString `json:"street,omitempty"`
	HouseNumber FlexString `json:"house_number,omitempty"`
	UserData    FlexString `json:"user_data,omitempty"`
	Tags        string     `json:"tags,omitempty"`
	StreamID    string     `json:"stream_id,omitempty"`
	BaseURL     string     `json:"base_url,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty"`

	raw json.RawMessage
}

func (d *DahuaCamera) UnmarshalJSON(data []byte) error {
	type alias DahuaCamera
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = DahuaCamera(a)
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d DahuaCamera) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	type alias DahuaCamera
	return json.Marshal(alias(d))
}

// IsActive treats any non-zero "active" flag as active.
func (d *DahuaCamera) IsActive() bool {
	return d.Active.Valid && d.Active.Value != 0
}
