package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cocosip/go-dicom-imageloader/cache"
	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixeldata"
	"github.com/google/go-cmp/cmp"
)

func TestParseImageID(t *testing.T) {
	tests := []struct {
		in   string
		want ImageID
	}{
		{"wadouri:http://host/x.dcm", ImageID{Scheme: "wadouri", URL: "http://host/x.dcm"}},
		{"wadouri:http://host/x.dcm?frame=2", ImageID{Scheme: "wadouri", URL: "http://host/x.dcm", Frame: 2}},
		{
			"wadouri:http://host/wado?requestType=WADO&frame=3&objectUID=1.2",
			ImageID{Scheme: "wadouri", URL: "http://host/wado?requestType=WADO&objectUID=1.2", Frame: 3},
		},
		{"wadouri:http://host/wado?frame=1&objectUID=1.2", ImageID{Scheme: "wadouri", URL: "http://host/wado?objectUID=1.2", Frame: 1}},
		{"dicomfile:/data/ct/keyframe=1.dcm", ImageID{Scheme: "dicomfile", URL: "/data/ct/keyframe=1.dcm"}},
		{"dicomfile:/data/mr.dcm?frame=0", ImageID{Scheme: "dicomfile", URL: "/data/mr.dcm"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImageID(tt.in)
			if err != nil {
				t.Fatalf("ParseImageID failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("image id mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseImageIDErrors(t *testing.T) {
	for _, in := range []string{"", "no-scheme", "wadouri:", ":http://x", "wadouri:http://x?frame=a", "wadouri:http://x?frame=-1"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseImageID(in); !errors.Is(err, ErrInvalidImageID) {
				t.Errorf("error = %v, want ErrInvalidImageID", err)
			}
		})
	}
}

func TestImageIDString(t *testing.T) {
	tests := []struct {
		id   ImageID
		want string
	}{
		{ImageID{Scheme: "wadouri", URL: "http://h/x"}, "wadouri:http://h/x"},
		{ImageID{Scheme: "wadouri", URL: "http://h/x", Frame: 4}, "wadouri:http://h/x?frame=4"},
		{ImageID{Scheme: "wadouri", URL: "http://h/x?a=b", Frame: 4}, "wadouri:http://h/x?a=b&frame=4"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func twoFrames() *pixeldata.Elements {
	return pixeldata.NewElements().
		SetString(pixeldata.TagTransferSyntaxUID, codec.ExplicitVRLittleEndian).
		SetUint16(pixeldata.TagRows, 1).
		SetUint16(pixeldata.TagColumns, 2).
		SetUint16(pixeldata.TagBitsAllocated, 8).
		SetString(pixeldata.TagNumberOfFrames, "2").
		SetPixelData(&pixeldata.PixelDataElement{Native: []byte{1, 2, 3, 4}})
}

func TestLoadImage(t *testing.T) {
	var calls atomic.Int32
	fetch := func(_ context.Context, url string) (pixeldata.ElementMap, error) {
		calls.Add(1)
		if url != "http://host/mf.dcm" {
			t.Errorf("fetch url = %q", url)
		}
		return twoFrames(), nil
	}
	l := New(WithFetcher(SchemeWADOURI, fetch))
	ctx := context.Background()

	ids := []string{"wadouri:http://host/mf.dcm", "wadouri:http://host/mf.dcm?frame=1"}
	want := [][]uint8{{1, 2}, {3, 4}}
	for i, id := range ids {
		f, err := l.LoadImage(ctx, id)
		if err != nil {
			t.Fatalf("LoadImage(%s): %v", id, err)
		}
		if diff := cmp.Diff(want[i], f.Samples.U8); diff != "" {
			t.Errorf("%s samples mismatch (-want +got):\n%s", id, diff)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	if diff := cmp.Diff(int64(4), l.Cache().Info().CacheSizeInBytes); diff != "" {
		t.Errorf("cache size mismatch (-want +got):\n%s", diff)
	}

	for _, id := range ids {
		if err := l.Release(id); err != nil {
			t.Fatalf("Release(%s): %v", id, err)
		}
	}
	if l.Cache().IsLoaded("http://host/mf.dcm") {
		t.Error("dataset still cached after every image was released")
	}
}

func TestLoadImageErrors(t *testing.T) {
	cause := errors.New("404")
	l := New(WithFetcher(SchemeWADOURI, func(context.Context, string) (pixeldata.ElementMap, error) {
		return nil, cause
	}))
	ctx := context.Background()

	if _, err := l.LoadImage(ctx, "wadouri:http://host/missing.dcm"); !errors.Is(err, codec.ErrUnderlyingFetchFailed) || !errors.Is(err, cause) {
		t.Errorf("fetch failure error = %v", err)
	}
	if _, err := l.LoadImage(ctx, "wadors:http://host/x"); !errors.Is(err, ErrInvalidImageID) {
		t.Errorf("unknown scheme error = %v", err)
	}
	if err := l.Release("bad"); !errors.Is(err, ErrInvalidImageID) {
		t.Errorf("Release error = %v", err)
	}

	l = New(WithFetcher(SchemeWADOURI, func(context.Context, string) (pixeldata.ElementMap, error) {
		return twoFrames(), nil
	}))
	if _, err := l.LoadImage(ctx, "wadouri:http://host/mf.dcm?frame=2"); !errors.Is(err, codec.ErrFrameOutOfRange) {
		t.Errorf("frame out of range error = %v", err)
	}
	if l.Cache().IsLoaded("http://host/mf.dcm") {
		t.Error("failed decode kept a reference to the dataset")
	}
}

func TestLoadImageDeadline(t *testing.T) {
	unloaded := make(chan string, 1)
	c := cache.NewManager(
		cache.WithSizeFunc(DatasetSize),
		cache.WithListener[pixeldata.ElementMap](func(ev cache.Event) {
			if ev.Type == cache.EventUnloaded {
				unloaded <- ev.Key
			}
		}),
	)
	release := make(chan struct{})
	l := New(WithCache(c), WithFetcher(SchemeWADOURI, func(context.Context, string) (pixeldata.ElementMap, error) {
		<-release
		return twoFrames(), nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.LoadImage(ctx, "wadouri:http://host/slow.dcm"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	close(release)

	select {
	case key := <-unloaded:
		if key != "http://host/slow.dcm" {
			t.Errorf("unloaded key = %q", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dataset of a timed out load was never released")
	}
	if diff := cmp.Diff(cache.Info{}, c.Info()); diff != "" {
		t.Errorf("cache info mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchFileMissing(t *testing.T) {
	if _, err := FetchFile(context.Background(), "/nonexistent/file.dcm"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
