package video

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"eralearn/internal/pkg/apperror"
)

// Service writes uploads into the storage root and answers lookups for the
// static server. It holds no per-request state.
type Service struct {
	root        *Root
	publicBase  string
	maxUploadMB int
	log         *zap.Logger
	now         func() time.Time
}

func NewService(root *Root, publicBase string, maxUploadMB int, log *zap.Logger) *Service {
	return &Service{
		root:        root,
		publicBase:  "/" + strings.Trim(publicBase, "/"),
		maxUploadMB: maxUploadMB,
		log:         log,
		now:         time.Now,
	}
}

func (s *Service) MaxUploadBytes() int64 {
	return int64(s.maxUploadMB) * 1024 * 1024
}

// TooLarge is the client-facing error for an oversized body.
func (s *Service) TooLarge() error {
	return apperror.Wrap(apperror.PayloadTooLarge, ErrFileTooLarge,
		"file exceeds the maximum upload size of %d MB", s.maxUploadMB)
}

// Store streams body into the storage root under a derived name.
// The declared content type is checked before any byte is written; bytes
// are staged in .tmp and only renamed into place once fully received.
func (s *Service) Store(ctx context.Context, originalName, declaredType string, body io.Reader) (*Result, error) {
	mimeType, canonical, ok := normalizeUploadType(declaredType)
	if !ok {
		return nil, apperror.Wrap(apperror.Validation, ErrInvalidMimeType,
			"unsupported file type %q, allowed: %s", mimeType, strings.Join(AllowedUploadTypes(), ", "))
	}

	fileName := DeriveFileName(originalName, s.now())
	tmp, err := s.root.CreateTemp(fileName)
	if err != nil {
		return nil, apperror.Internalf(err, "create staging file")
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				s.log.Warn("remove partial upload", zap.String("path", tmpPath), zap.Error(rmErr))
			}
		}
	}()

	hasher, _ := blake2b.New256(nil)
	limit := s.MaxUploadBytes()
	written, copyErr := io.Copy(io.MultiWriter(tmp, hasher), &io.LimitedReader{R: body, N: limit + 1})
	closeErr := tmp.Close()

	if copyErr != nil {
		var mbe *http.MaxBytesError
		if errors.As(copyErr, &mbe) {
			return nil, s.TooLarge()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperror.Internalf(ctxErr, "upload of %s aborted", fileName)
		}
		return nil, apperror.Internalf(copyErr, "write upload %s", fileName)
	}
	if written > limit {
		return nil, s.TooLarge()
	}
	if closeErr != nil {
		return nil, apperror.Internalf(closeErr, "flush upload %s", fileName)
	}
	if written == 0 {
		return nil, ErrEmptyFile
	}

	storagePath := s.root.StoragePath(fileName)
	if err := s.root.Commit(tmpPath, storagePath); err != nil {
		return nil, apperror.Internalf(err, "commit upload %s", fileName)
	}
	committed = true

	checksum := hex.EncodeToString(hasher.Sum(nil))
	meta := &Metadata{
		MimeType:     canonical,
		Size:         written,
		Checksum:     checksum,
		OriginalName: originalName,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.root.WriteMetadata(storagePath, meta); err != nil {
		// the video itself is stored; serving falls back to the extension
		s.log.Warn("write upload metadata", zap.String("storage_path", storagePath), zap.Error(err))
	}

	s.log.Info("video stored",
		zap.String("storage_path", storagePath),
		zap.Int64("size", written),
		zap.String("mimetype", mimeType),
	)

	return &Result{
		PublicURL:   s.PublicURL(storagePath),
		StoragePath: storagePath,
		FileName:    fileName,
		Size:        written,
		MimeType:    mimeType,
		Checksum:    checksum,
	}, nil
}

func (s *Service) PublicURL(storagePath string) string {
	return path.Join(s.publicBase, storagePath)
}

// Open resolves rel inside the storage root and opens it for serving.
// The returned content type is the stored upload type when a sidecar
// exists and the extension-derived type otherwise.
func (s *Service) Open(rel string) (*os.File, os.FileInfo, string, error) {
	abs, err := s.root.Resolve(rel)
	if err != nil {
		return nil, nil, "", err
	}

	f, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, "", ErrNotFound
	}
	if err != nil {
		return nil, nil, "", apperror.Internalf(err, "open media file")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, "", apperror.Internalf(err, "stat media file")
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, "", ErrNotFound
	}

	contentType := ContentTypeForName(info.Name())
	meta, err := s.root.ReadMetadata(strings.TrimPrefix(rel, "/"))
	if err != nil {
		s.log.Warn("read upload metadata", zap.String("path", rel), zap.Error(err))
	} else if meta != nil && meta.MimeType != "" {
		contentType = meta.MimeType
	}
	return f, info, contentType, nil
}

// Exists reports whether storagePath names a servable file.
func (s *Service) Exists(storagePath string) bool {
	f, _, _, err := s.Open(storagePath)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (s *Service) Health() *Health {
	count, err := s.root.CountVideos()
	if err != nil {
		s.log.Warn("count videos", zap.Error(err))
	}
	return &Health{
		Status:      "ok",
		Timestamp:   s.now().UTC(),
		VideosCount: count,
		Config: HealthConfig{
			VideoDir:        s.root.UploadDir(),
			PublicBase:      s.publicBase,
			MaxUploadSize:   s.MaxUploadBytes(),
			MaxUploadSizeMB: s.maxUploadMB,
			AllowedTypes:    AllowedUploadTypes(),
		},
	}
}
