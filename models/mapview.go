package models

// MapEvent is an event reduced to what a map marker and its popup need.
type MapEvent struct {
	EventID         string   `json:"event_id"`
	Source          string   `json:"source"`
	TrackID         string   `json:"track_id,omitempty"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	Label           string   `json:"label"`
	Similarity      string   `json:"similarity"`
	When            string   `json:"when"`
	City            string   `json:"city"`
	Area            string   `json:"area"`
	Image           string   `json:"image,omitempty"`
	ImageCandidates []string `json:"image_candidates"`
	Timestamp       int64    `json:"timestamp"`
}

// Person is one face detection shown in a camera popup.
type Person struct {
	When       int64    `json:"when"`
	WhenStr    string   `json:"when_str,omitempty"`
	Label      string   `json:"label"`
	Similarity *float64 `json:"similarity"`
	Image      string   `json:"image,omitempty"`
	EventID    string   `json:"event_id,omitempty"`
	TrackID    string   `json:"track_id,omitempty"`
}

// CameraGroup aggregates the events of one camera (event source).
type CameraGroup struct {
	Source   string    `json:"source"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	People   []Person  `json:"people"`
	Location *Location `json:"location,omitempty"`
}

type StreamMarker struct {
	StreamID    string  `json:"stream_id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	City        string  `json:"city"`
	Area        string  `json:"area"`
	Autorestart string  `json:"autorestart,omitempty"`
}

type DahuaMarker struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	TrackID  string  `json:"track_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Active   bool    `json:"active"`
	City     string  `json:"city"`
	Area     string  `json:"area"`
	StreamID string  `json:"stream_id,omitempty"`
}

// Chart is a labelled series in the shape chart widgets consume.
type Chart struct {
	Labels          []string `json:"labels"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
}

type StreamStats struct {
	Total           int            `json:"total"`
	Active          int            `json:"active"`
	NewLast24h      int            `json:"new_last_24h"`
	WithLocation    int            `json:"with_location"`
	WithoutLocation int            `json:"without_location"`
	ByCity          Chart          `json:"by_city"`
	ByStatus        Chart          `json:"by_status"`
	RecentlyUpdated []StreamMarker `json:"recently_updated"`
}

// LiveStats summarises the live feed for the header cards.
type LiveStats struct {
	Cameras                  int      `json:"cameras"`
	Faces                    int      `json:"faces"`
	Areas                    int      `json:"areas"`
	Latest                   string   `json:"latest"`
	HighConfidenceDetections int      `json:"high_confidence_detections"`
	AverageSimilarity        float64  `json:"average_similarity"`
	ActiveCities             int      `json:"active_cities"`
	Cities                   []string `json:"cities"`
}
