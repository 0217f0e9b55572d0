package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/ids"
	"github.com/Nikocoro/prubas123/internal/media/sniffer"
	"github.com/Nikocoro/prubas123/internal/media/svg"
)

type PhotoUploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type UploadInput struct {
	File        io.Reader
	ContentType string
}

type PhotoService struct {
	store    PhotoUploader
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewPhotoService(store PhotoUploader, maxBytes int64, log zerolog.Logger) *PhotoService {
	return &PhotoService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log,
	}
}

// Upload validates an image by its content, strips active content from
// SVGs and stores it. The returned URL is what profiles reference as photo.
func (s *PhotoService) Upload(ctx context.Context, input UploadInput) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrStorageDisabled
	}
	if input.File == nil {
		return "", fmt.Errorf("%w: file required", ErrInvalidPhoto)
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidPhoto)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidPhoto, s.maxBytes)
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	result, err := sniffer.Detect(head)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPhoto, err)
	}

	declared := sniffer.DeclaredType(input.ContentType)
	if declared != "" && declared != "application/octet-stream" && declared != result.MIME {
		return "", fmt.Errorf("%w: declared %s, actual %s", ErrInvalidPhoto, declared, result.MIME)
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			if errors.Is(err, svg.ErrNotSVG) || errors.Is(err, svg.ErrMalformed) {
				return "", fmt.Errorf("%w: %w", ErrInvalidPhoto, err)
			}
			return "", fmt.Errorf("sanitize svg: %w", err)
		}
		data = clean
	}

	key := s.objectKey(result.Extension())
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("key", key).Int("size", len(data)).Str("format", string(result.Type)).Msg("photo stored")
	return url, nil
}

func (s *PhotoService) objectKey(ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}
