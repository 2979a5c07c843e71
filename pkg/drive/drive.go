// Package drive uploads generated documents to Google Drive.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const fileURLFormat = "https://drive.google.com/file/d/%s/view"

var ErrAccessTokenRequired = errors.New("drive access token is required")

// File is an uploaded document.
type File struct {
	ID  string
	URL string
}

// Upload describes one document to store.
type Upload struct {
	Name     string
	MimeType string
	FolderID string
	Data     []byte
}

// Uploader stores files using a caller-supplied OAuth access token.
type Uploader struct {
	extra []option.ClientOption
}

// NewUploader returns an uploader. extra options are applied to every call.
func NewUploader(extra ...option.ClientOption) *Uploader {
	return &Uploader{extra: extra}
}

// Upload stores the file, inside FolderID when set, and returns its view URL.
func (u *Uploader) Upload(ctx context.Context, accessToken string, up Upload) (*File, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrAccessTokenRequired
	}
	if up.Name == "" || len(up.Data) == 0 {
		return nil, errors.New("file name and content are required")
	}

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})),
	}
	opts = append(opts, u.extra...)
	svc, err := driveapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	meta := &driveapi.File{Name: up.Name, MimeType: up.MimeType}
	if folder := strings.TrimSpace(up.FolderID); folder != "" {
		meta.Parents = []string{folder}
	}
	created, err := svc.Files.Create(meta).
		Media(bytes.NewReader(up.Data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", up.Name, err)
	}
	return &File{ID: created.Id, URL: FileURL(created.Id)}, nil
}

// FileURL is the browser view link for a file id.
func FileURL(id string) string {
	return fmt.Sprintf(fileURLFormat, id)
}
