package loader

import (
	"context"
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/cache"
	"github.com/cocosip/go-dicom-imageloader/pixeldata"
	"github.com/rs/zerolog"
)

// Loader decodes frames addressed by image id. Datasets stay cached until
// every LoadImage call for their URL has been matched by a Release.
type Loader struct {
	cache    *cache.Manager[pixeldata.ElementMap]
	decoder  *pixeldata.Decoder
	fetchers map[string]cache.FetchFunc[pixeldata.ElementMap]
	logger   zerolog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithDecoder sets the frame decoder
func WithDecoder(d *pixeldata.Decoder) Option {
	return func(l *Loader) {
		l.decoder = d
	}
}

// WithCache sets the dataset cache, for sharing one cache between loaders
func WithCache(m *cache.Manager[pixeldata.ElementMap]) Option {
	return func(l *Loader) {
		l.cache = m
	}
}

// WithFetcher registers the fetch function for an image id scheme
func WithFetcher(scheme string, fetch cache.FetchFunc[pixeldata.ElementMap]) Option {
	return func(l *Loader) {
		l.fetchers[scheme] = fetch
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader. The dicomfile scheme reads local files; other
// schemes need a fetcher registered with WithFetcher.
func New(opts ...Option) *Loader {
	l := &Loader{
		fetchers: map[string]cache.FetchFunc[pixeldata.ElementMap]{
			SchemeDICOMFile: FetchFile,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.decoder == nil {
		l.decoder = pixeldata.NewDecoder(pixeldata.WithLogger(l.logger))
	}
	if l.cache == nil {
		l.cache = cache.NewManager(
			cache.WithLogger[pixeldata.ElementMap](l.logger),
			cache.WithSizeFunc(DatasetSize),
		)
	}
	return l
}

// Cache returns the dataset cache
func (l *Loader) Cache() *cache.Manager[pixeldata.ElementMap] {
	return l.cache
}

// LoadImage fetches the dataset of imageID, or takes a reference to the
// cached one, and decodes the addressed frame. Every successful call must
// be matched by Release.
func (l *Loader) LoadImage(ctx context.Context, imageID string) (*pixeldata.ImageFrame, error) {
	id, err := ParseImageID(imageID)
	if err != nil {
		return nil, err
	}
	fetch, ok := l.fetchers[id.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no fetcher for scheme %q", ErrInvalidImageID, id.Scheme)
	}

	future := l.cache.Load(ctx, id.URL, fetch)
	ds, err := future.Wait(ctx)
	if err != nil {
		// Nobody will Release a failed call
		l.cache.Abandon(id.URL, future)
		return nil, err
	}
	frame, err := l.decoder.DecodeFrame(ds, id.Frame)
	if err != nil {
		l.cache.Unload(id.URL)
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	l.logger.Debug().
		Str("imageId", imageID).
		Int("rows", frame.Rows).
		Int("columns", frame.Columns).
		Msg("image loaded")
	return frame, nil
}

// Release drops the reference LoadImage took on the dataset of imageID
func (l *Loader) Release(imageID string) error {
	id, err := ParseImageID(imageID)
	if err != nil {
		return err
	}
	l.cache.Unload(id.URL)
	return nil
}

// FetchFile reads a DICOM file from the local file system
func FetchFile(_ context.Context, path string) (pixeldata.ElementMap, error) {
	e, err := pixeldata.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DatasetSize reports the pixel data size of a dataset
func DatasetSize(e pixeldata.ElementMap) int64 {
	if e == nil {
		return 0
	}
	pd, ok := e.PixelData()
	if !ok {
		return 0
	}
	n := int64(len(pd.Native))
	for _, f := range pd.Fragments {
		n += int64(len(f))
	}
	return n
}
