// Package loader resolves image ids to decoded frames. Datasets are
// fetched once per URL through the dataset cache and every frame of a
// multi-frame object is decoded from the same cached dataset.
package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Image id schemes
const (
	SchemeWADOURI   = "wadouri"
	SchemeDICOMFile = "dicomfile"
)

// ErrInvalidImageID is returned for image ids that cannot be parsed
var ErrInvalidImageID = errors.New("invalid image id")

// ImageID is a parsed image id of the form scheme:url[?|&frame=N]
type ImageID struct {
	Scheme string
	// URL locates the dataset, with the frame parameter removed
	URL string
	// Frame is the zero-based frame index, 0 when absent
	Frame int
}

func (id ImageID) String() string {
	if id.Frame == 0 {
		return id.Scheme + ":" + id.URL
	}
	sep := "?"
	if strings.Contains(id.URL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s:%s%sframe=%d", id.Scheme, id.URL, sep, id.Frame)
}

// ParseImageID splits an image id into scheme, dataset URL and frame
func ParseImageID(s string) (ImageID, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || rest == "" {
		return ImageID{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidImageID, s)
	}
	id := ImageID{Scheme: scheme, URL: rest}

	i := frameParam(rest)
	if i < 0 {
		return id, nil
	}
	value := rest[i+len("frame="):]
	tail := ""
	if j := strings.IndexByte(value, '&'); j >= 0 {
		value, tail = value[:j], value[j+1:]
	}
	frame, err := strconv.Atoi(value)
	if err != nil || frame < 0 {
		return ImageID{}, fmt.Errorf("%w: frame %q in %q", ErrInvalidImageID, value, s)
	}
	id.Frame = frame

	// Drop "frame=N" together with one separator
	url := rest[:i-1]
	if tail != "" {
		url += rest[i-1:i] + tail
	}
	id.URL = url
	return id, nil
}

// frameParam returns the index of the last "frame=" that starts a query
// parameter, or -1
func frameParam(s string) int {
	for i := strings.LastIndex(s, "frame="); i > 0; i = strings.LastIndex(s[:i], "frame=") {
		if s[i-1] == '?' || s[i-1] == '&' {
			return i
		}
	}
	return -1
}
