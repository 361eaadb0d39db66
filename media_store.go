package content

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultMaxUploadSize caps uploads at 10 MiB
const DefaultMaxUploadSize int64 = 10 << 20

// MetadataKeySource records which subsystem stored the asset
const MetadataKeySource = "source"

const (
	// DefaultBannerMediaFolder holds banner uploads below the root
	DefaultBannerMediaFolder = "banners"
	// DefaultKajianMediaFolder holds kajian uploads below the root
	DefaultKajianMediaFolder = "media/kajian"

	// publicMediaPrefix is the URL path the upload root is served under
	publicMediaPrefix = "/uploads"
)

// Upload carries the bytes and declared attributes of an incoming file
type Upload struct {
	Filename string
	Mime     string
	Size     int64
	Data     []byte
	AltText  string
}

// MediaStore validates, persists, and describes media assets. Uploaded
// files land under Subfolder below the storage root; every stored asset
// gets a media row with a public URL.
type MediaStore struct {
	storage       Storage
	media         MediaRepository
	subfolder     string
	baseURL       string
	maxUploadSize int64
	sourceTag     string
	logger        Logger
	now           func() time.Time
}

type MediaStoreOption func(*MediaStore)

func NewMediaStore(storage Storage, media MediaRepository, opts ...MediaStoreOption) *MediaStore {
	store := &MediaStore{
		storage:       storage,
		media:         media,
		maxUploadSize: DefaultMaxUploadSize,
		logger:        defLogger{},
		now:           time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store
}

// WithMediaSubfolder changes the directory uploads land in
func WithMediaSubfolder(subfolder string) MediaStoreOption {
	return func(s *MediaStore) {
		s.subfolder = strings.Trim(subfolder, "/")
	}
}

// WithMediaBaseURL prefixes generated asset URLs with an absolute base
func WithMediaBaseURL(baseURL string) MediaStoreOption {
	return func(s *MediaStore) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMaxUploadSize overrides the upload byte cap
func WithMaxUploadSize(max int64) MediaStoreOption {
	return func(s *MediaStore) {
		if max > 0 {
			s.maxUploadSize = max
		}
	}
}

// WithMediaSourceTag records the storing subsystem in asset metadata
func WithMediaSourceTag(tag string) MediaStoreOption {
	return func(s *MediaStore) {
		s.sourceTag = tag
	}
}

func WithMediaLogger(logger Logger) MediaStoreOption {
	return func(s *MediaStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// StoreUploadTx validates the upload, writes the file, and creates the
// media row inside the caller's transaction. Validation happens before
// any file or row exists, so a rejected upload leaves nothing behind.
func (s *MediaStore) StoreUploadTx(ctx context.Context, tx bun.IDB, up *Upload) (*Media, error) {
	if up == nil || len(up.Data) == 0 {
		return nil, errors.New("upload must not be empty", errors.CategoryValidation)
	}

	if !strings.HasPrefix(up.Mime, "image/") {
		return nil, ErrNotAnImage
	}

	size := up.Size
	if size == 0 {
		size = int64(len(up.Data))
	}
	if size > s.maxUploadSize {
		return nil, ErrAssetTooLarge
	}

	filename := s.uploadFilename(up.Filename)
	key := path.Join(s.subfolder, filename)

	if err := s.storage.Write(key, bytes.NewReader(up.Data)); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to store uploaded file")
	}

	record := &Media{
		ID:          uuid.New(),
		Filename:    filename,
		URL:         s.assetURL(filename),
		StoragePath: key,
		Mime:        up.Mime,
		Size:        &size,
		AltText:     up.AltText,
	}

	if width, height, ok := probeImageSize(up.Data); ok {
		record.Width = &width
		record.Height = &height
	}

	if s.sourceTag != "" {
		record.AddMetadata(MetadataKeySource, s.sourceTag)
	}

	created, err := s.media.CreateTx(ctx, tx, record)
	if err != nil {
		if unlinkErr := s.storage.Unlink(key); unlinkErr != nil {
			s.logger.Warn("MediaStore failed to unlink orphaned upload %s: %v", key, unlinkErr)
		}
		return nil, err
	}

	return created, nil
}

// RegisterExternalTx creates a media row pointing at an externally
// hosted image. No bytes are stored; deleting the row never touches
// the remote file.
func (s *MediaStore) RegisterExternalTx(ctx context.Context, tx bun.IDB, rawURL, altText string) (*Media, error) {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidAssetURL
	}

	record := &Media{
		ID:       uuid.New(),
		Filename: path.Base(parsed.Path),
		URL:      parsed.String(),
		AltText:  altText,
	}
	record.AddMetadata(MetadataKeyExternal, true)

	if s.sourceTag != "" {
		record.AddMetadata(MetadataKeySource, s.sourceTag)
	}

	return s.media.CreateTx(ctx, tx, record)
}

// DeletePhysical removes the stored file backing an asset. External
// references and rows without a storage path are left alone. Unlink
// failures are logged and swallowed so metadata cleanup can proceed.
func (s *MediaStore) DeletePhysical(record *Media) {
	if record == nil || record.IsExternal() || record.StoragePath == "" {
		return
	}

	if err := s.storage.Unlink(record.StoragePath); err != nil {
		s.logger.Warn("MediaStore failed to unlink %s: %v", record.StoragePath, err)
	}
}

// uploadFilename builds a collision resistant name from the original,
// prefixed with the current unix milliseconds.
func (s *MediaStore) uploadFilename(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	base = strings.ReplaceAll(base, " ", "_")

	return fmt.Sprintf("%d_%s", s.now().UnixMilli(), base)
}

func (s *MediaStore) assetURL(filename string) string {
	rel := publicMediaPrefix + "/" + path.Join(s.subfolder, filename)
	if s.baseURL == "" {
		return rel
	}
	return s.baseURL + rel
}

// probeImageSize decodes just the image header. Probing is best effort;
// an undecodable image still stores fine, without dimensions.
func probeImageSize(data []byte) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
