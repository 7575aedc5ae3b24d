package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURI(t *testing.T) {
	assert.Equal(t, "http://h/a%20b/%C3%BC?x=1&y=@#f", EncodeURI("http://h/a b/ü?x=1&y=@#f"))
	assert.Equal(t, "already%25encoded", EncodeURI("already%encoded"))
}

func TestDecodeURI(t *testing.T) {
	got, err := DecodeURI("a%20b%2Fc%C3%BC")
	require.NoError(t, err)
	assert.Equal(t, "a b%2Fcü", got)

	_, err = DecodeURI("broken%2")
	assert.Error(t, err)
	_, err = DecodeURI("bad%zz")
	assert.Error(t, err)
}

func TestAddCacheBuster(t *testing.T) {
	assert.Equal(t, "http://h/x.jpg?_v=k", AddCacheBuster("http://h/x.jpg", "k"))
	assert.Equal(t, "http://h/x.jpg?a=1&_v=k", AddCacheBuster("http://h/x.jpg?a=1", "k"))
	assert.Equal(t, "http://h/x.jpg?_v=new", AddCacheBuster("http://h/x.jpg?_v=old", "new"))
}

func TestViaProxy(t *testing.T) {
	assert.Equal(t, "/api/image-proxy?url=http%3A%2F%2Fh%2Fa.jpg", ViaProxy("http://h/a.jpg"))
}

func TestImageCandidatesOrderAndDedup(t *testing.T) {
	ev := decodeEvent(t, `{"snapshot": "http://cdn/p.jpg", "image": "http://cdn/p.jpg"}`)

	got := ImageCandidates(&ev, nil, "http://api", "k")
	assert.Equal(t, []string{
		"/api/image-proxy?url=http%3A%2F%2Fcdn%2Fp.jpg&_v=k",
		"http://cdn/p.jpg?_v=k",
	}, got)
}

func TestImageCandidatesVariants(t *testing.T) {
	ev := decodeEvent(t, `{"image_url": "/img/user%40mail.jpg"}`)

	got := ImageCandidates(&ev, nil, "http://api", "k")
	assert.Contains(t, got, "http://api/img/user%40mail.jpg?_v=k")
	assert.Contains(t, got, "http://api/img/user@mail.jpg?_v=k")
	assert.Contains(t, got, "http://api/img/user%2540mail.jpg?_v=k")
}

func TestImageCandidatesMockImagesStayLocal(t *testing.T) {
	ev := decodeEvent(t, `{"event_id": "mock_event_1", "image_origin": "x"}`)
	withFace := decodeEvent(t, `{"face_detections": [{"image_origin": "/mock-images/person-1.svg"}]}`)
	fd := withFace.FirstFaceDetection()

	got := ImageCandidates(&ev, fd, "http://api", "k")
	assert.Equal(t, []string{"/mock-images/person-1.svg?_v=k"}, got)
}

func TestImageCandidatesUsesImageLikeSource(t *testing.T) {
	ev := decodeEvent(t, `{"source": "http://cam/last.png"}`)
	got := ImageCandidates(&ev, nil, "", "k")
	assert.Contains(t, got, "http://cam/last.png?_v=k")

	ev = decodeEvent(t, `{"source": "Camera_01"}`)
	assert.Empty(t, ImageCandidates(&ev, nil, "", "k"))
}

func TestPickEventImage(t *testing.T) {
	ev := decodeEvent(t, `{"thumbnail": "/t/a b.jpg", "face_detections": [{"image_origin": ""}]}`)
	assert.Equal(t, "http://api/t/a%20b.jpg", PickEventImage(&ev, ev.FirstFaceDetection(), "http://api"))

	ev = decodeEvent(t, `{}`)
	assert.Equal(t, "", PickEventImage(&ev, nil, "http://api"))
}
