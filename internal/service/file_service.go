package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"file-portal/internal/domain"
	"file-portal/internal/storage"
)

var (
	// ErrNoFilePart indicates the upload form carried no file field.
	ErrNoFilePart = errors.New("no file part")
	// ErrNoSelectedFile indicates the file field was submitted without a filename.
	ErrNoSelectedFile = errors.New("no selected file")
	// ErrInvalidFilename indicates nothing usable was left after sanitising the filename.
	ErrInvalidFilename = errors.New("invalid file name")
)

// DefaultURLExpiry is the validity window of generated download links.
const DefaultURLExpiry = time.Hour

// Upload is a single file received from the upload form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileService exposes the portal operations over a single bucket.
type FileService interface {
	ListFiles(ctx context.Context) ([]domain.Object, error)
	Upload(ctx context.Context, upload Upload) (*domain.UploadResult, error)
	DownloadURL(ctx context.Context, filename string) (string, error)
}

// FileServiceConfig binds a FileService to its bucket.
type FileServiceConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
	Logger    *logrus.Logger
}

type fileService struct {
	cfg     FileServiceConfig
	storage storage.Service
}

func NewFileService(cfg FileServiceConfig, store storage.Service) FileService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = DefaultURLExpiry
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &fileService{
		cfg:     cfg,
		storage: store,
	}
}

func (s *fileService) ListFiles(ctx context.Context) ([]domain.Object, error) {
	prefix := ""
	if s.cfg.KeyPrefix != "" {
		prefix = s.cfg.KeyPrefix + "/"
	}

	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}
	for i := range objects {
		objects[i].Key = strings.TrimPrefix(objects[i].Key, prefix)
	}

	s.cfg.Logger.Debugf("bucket %s: %d objects found: %v", s.cfg.Bucket, len(objects), domain.Keys(objects))
	return objects, nil
}

// Upload stores the file under its sanitised name, replacing any object with the same key,
// and returns a fresh download link together with the updated listing.
func (s *fileService) Upload(ctx context.Context, upload Upload) (*domain.UploadResult, error) {
	if upload.Body == nil {
		return nil, ErrNoFilePart
	}
	if upload.Filename == "" {
		return nil, ErrNoSelectedFile
	}

	filename := SafeFilename(upload.Filename)
	if filename == "" {
		return nil, ErrInvalidFilename
	}

	log := s.cfg.Logger.WithFields(logrus.Fields{"bucket": s.cfg.Bucket, "key": s.key(filename)})
	err := s.storage.Upload(ctx, upload.Body, storage.UploadOptions{
		Bucket:      s.cfg.Bucket,
		Key:         s.key(filename),
		ContentType: upload.ContentType,
		Size:        upload.Size,
		ProgressCallback: func(done, total int64) {
			log.Debugf("upload progress %d/%d bytes", done, total)
		},
	})
	if err != nil {
		return nil, err
	}
	log.Infof("uploaded %q as %q", upload.Filename, filename)

	url, err := s.DownloadURL(ctx, filename)
	if err != nil {
		return nil, err
	}

	files, err := s.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.UploadResult{
		Filename: filename,
		URL:      url,
		Expiry:   s.cfg.URLExpiry,
		Files:    files,
	}, nil
}

// DownloadURL signs a GET link for filename as given. The name is neither sanitised
// nor checked for existence; a missing object surfaces when the link is followed.
func (s *fileService) DownloadURL(ctx context.Context, filename string) (string, error) {
	return s.storage.GetObjectURL(ctx, s.cfg.Bucket, s.key(filename), s.cfg.URLExpiry)
}

func (s *fileService) key(filename string) string {
	if s.cfg.KeyPrefix == "" {
		return filename
	}
	return s.cfg.KeyPrefix + "/" + filename
}
