package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/postloom/postloom/configs"
)

type MediaService interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

type mediaService struct {
	cfg config.Config
	r2  *R2Storage
}

func NewMediaService(cfg config.Config, r2 *R2Storage) MediaService {
	return &mediaService{
		cfg: cfg,
		r2:  r2,
	}
}

// Extensions the platform adapters can actually deliver.
var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
}

// Upload sniffs and stores each file, returning its public URL. Media is
// uploaded ahead of post creation so posts only ever reference URLs.
func (s *mediaService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		err := errors.New("no files provided")
		slog.Info(err.Error())
		return nil, err
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}

		fileBytes, err := io.ReadAll(fileContent)
		fileContent.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return nil, fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedMediaTypes[fileType.Extension]; !ok {
			return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		id, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		key := fmt.Sprintf("media/%s.%s", id, fileType.Extension)

		if err := s.r2.Put(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
			return nil, fmt.Errorf("error uploading file: %w", err)
		}

		urls = append(urls, fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.R2.PublicURL, "/"), key))
	}

	return urls, nil
}
