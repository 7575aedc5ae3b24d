package services

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"safecity-dashboard/be/models"
)

const mockImagesDir = "/mock-images/"

var imagePathPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|bmp|webp|svg)(\?.*)?$`)

func looksLikeImagePath(p string) bool {
	return imagePathPattern.MatchString(strings.TrimSpace(p))
}

// ViaProxy routes an image URL through the local image proxy.
func ViaProxy(u string) string {
	return "/api/image-proxy?url=" + url.QueryEscape(u)
}

// AddCacheBuster sets the _v query parameter to key.
func AddCacheBuster(raw, key string) string {
	u, err := url.Parse(raw)
	if err != nil {
		sep := "?"
		if strings.Contains(raw, "?") {
			sep = "&"
		}
		return raw + sep + "_v=" + url.QueryEscape(key)
	}
	q := u.Query()
	if q.Has("_v") {
		q.Set("_v", key)
		u.RawQuery = q.Encode()
		return u.String()
	}
	if u.RawQuery != "" {
		u.RawQuery += "&"
	}
	u.RawQuery += "_v=" + url.QueryEscape(key)
	return u.String()
}

// absoluteImageURL prefixes relative paths with the events API base.
// Mock images stay local so the static server can answer them.
func absoluteImageURL(p, base string) string {
	if p == "" {
		return ""
	}
	if strings.Contains(p, mockImagesDir) {
		if strings.HasPrefix(p, "/") {
			return p
		}
		return "/" + p
	}
	if strings.HasPrefix(p, "http") {
		return p
	}
	return base + p
}

// ImageCandidates lists every URL worth trying for an event snapshot, in
// order: proxy first then direct, for the plain, encoded, decoded and
// %40-unescaped variants. Each candidate carries the cache-buster.
func ImageCandidates(ev *models.Event, fd *models.FaceDetection, base, cacheKey string) []string {
	var raw []string
	if fd != nil {
		raw = append(raw, fd.ImageOrigin)
	}
	raw = append(raw, ev.Snapshot, ev.Image, ev.ImageURL, ev.Img, ev.Thumbnail, ev.Photo)
	if src := ev.Source.String(); looksLikeImagePath(src) {
		raw = append(raw, src)
	}

	seen := make(map[string]struct{})
	out := []string{}
	push := func(s string) {
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if strings.Contains(r, mockImagesDir) {
			push(AddCacheBuster(absoluteImageURL(r, base), cacheKey))
			continue
		}

		full := absoluteImageURL(r, base)
		variants := []string{full, EncodeURI(full)}
		if decoded, err := DecodeURI(full); err == nil {
			variants = append(variants, decoded)
		}
		if strings.Contains(full, "%40") {
			variants = append(variants, strings.ReplaceAll(full, "%40", "@"))
		}

		for _, v := range variants {
			push(AddCacheBuster(ViaProxy(v), cacheKey))
			push(AddCacheBuster(v, cacheKey))
		}
	}
	return out
}

// PickEventImage returns the first image reference of a detection as an
// absolute, encoded URL.
func PickEventImage(ev *models.Event, fd *models.FaceDetection, base string) string {
	var fdImage string
	if fd != nil {
		fdImage = fd.ImageOrigin
	}
	src := ""
	if s := ev.Source.String(); looksLikeImagePath(s) {
		src = s
	}
	first := firstNonEmpty(fdImage, ev.Snapshot, ev.Image, ev.ImageURL, ev.Img, ev.Thumbnail, src)
	if first == "" {
		return ""
	}
	full := first
	if !strings.HasPrefix(full, "http") {
		full = base + full
	}
	return EncodeURI(full)
}

const uriKeep = ";,/?:@&=+$-_.!~*'()#"

const upperHex = "0123456789ABCDEF"

// EncodeURI percent-encodes everything except unreserved and reserved URI
// characters, so an already complete URL keeps its structure.
func EncodeURI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || strings.IndexByte(uriKeep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

var errMalformedURI = errors.New("malformed URI sequence")

const uriReserved = ";/?:@&=+$,#"

// DecodeURI reverses EncodeURI, leaving escapes of reserved characters
// untouched.
func DecodeURI(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", errMalformedURI
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", errMalformedURI
		}
		decoded := hi<<4 | lo
		if strings.IndexByte(uriReserved, decoded) >= 0 {
			b.WriteString(s[i : i+3])
		} else {
			b.WriteByte(decoded)
		}
		i += 2
	}
	return b.String(), nil
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
