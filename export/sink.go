package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dosada05/card-league/storage"
)

// Artifact describes a stored export.
type Artifact struct {
	Key         string `json:"key"`
	URL         string `json:"url,omitempty"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Sink persists an exported table as a downloadable spreadsheet.
type Sink interface {
	Put(ctx context.Context, tournamentID int, t Table) (*Artifact, error)
}

// UploaderSink stores workbooks through a storage.FileUploader.
type UploaderSink struct {
	uploader storage.FileUploader
	prefix   string
	newID    func() string
}

func NewUploaderSink(uploader storage.FileUploader, prefix string) *UploaderSink {
	if prefix == "" {
		prefix = "exports"
	}
	return &UploaderSink{
		uploader: uploader,
		prefix:   prefix,
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *UploaderSink) Put(ctx context.Context, tournamentID int, t Table) (*Artifact, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, t, DefaultSheet); err != nil {
		return nil, err
	}
	size := buf.Len()

	key := fmt.Sprintf("%s/tournament-%d/standings-%s.xlsx", s.prefix, tournamentID, s.newID())
	res, err := s.uploader.Upload(ctx, key, ContentTypeXLSX, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store export for tournament %d: %w", tournamentID, err)
	}
	return &Artifact{
		Key:         res.Key,
		URL:         res.Location,
		ETag:        res.ETag,
		ContentType: ContentTypeXLSX,
		Size:        size,
	}, nil
}
