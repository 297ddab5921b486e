// internal/services/file_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// FileService stores project files and enforces the preview rules when they
// are retrieved.
type FileService struct {
	repo   repository.Repository
	store  ObjectStore
	config *config.Config
}

// UploadInput is a file received from a client.
type UploadInput struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.ReadSeeker
	Duration     *int
	Metadata     map[string]interface{}
}

// FileDownload describes what to serve for a retrieval request.
type FileDownload struct {
	File      *models.File        `json:"file"`
	Rendition lifecycle.Rendition `json:"rendition"`
	URL       string              `json:"url,omitempty"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	Watermark bool                `json:"watermark"`
	TimeLimit *int                `json:"time_limit,omitempty"`

	LocalPath string `json:"-"`
}

func NewFileService(repo repository.Repository, store ObjectStore, config *config.Config) *FileService {
	return &FileService{
		repo:   repo,
		store:  store,
		config: config,
	}
}

// Upload stores an original file for the project. Owner only.
func (s *FileService) Upload(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, in *UploadInput) (*models.File, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) {
		return nil, errs.Forbidden("only the owning freelancer can upload files")
	}
	if lifecycle.IsTerminal(project.Status) {
		return nil, errs.PreconditionFailed("files cannot be added to a " + string(project.Status) + " project")
	}

	contentType, err := s.checkUpload(in)
	if err != nil {
		return nil, err
	}

	checksum, err := utils.Checksum(in.Body)
	if err != nil {
		return nil, err
	}

	key := objectKey(fmt.Sprintf("projects/%s/originals", projectID), in.OriginalName)
	if err := s.store.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, err
	}

	metadata := models.JSONB{}
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata["sha256"] = checksum

	file := &models.File{
		ProjectID:    projectID,
		Filename:     filepath.Base(key),
		OriginalName: filepath.Base(in.OriginalName),
		FileType:     models.FileTypeFromMime(contentType),
		MimeType:     contentType,
		FileSize:     in.Size,
		FilePath:     key,
		Duration:     in.Duration,
		Metadata:     metadata,
	}
	if err := s.repo.Files().Create(ctx, file); err != nil {
		DeleteAll(ctx, s.store, []string{key})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"file_id":    file.ID,
		"size":       file.FileSize,
	}).Info("File uploaded")

	return file, nil
}

// UploadPreview attaches a preview rendition (watermarked or trimmed) to an
// existing file, replacing any previous one. Owner only.
func (s *FileService) UploadPreview(ctx context.Context, r lifecycle.Requester, fileID uuid.UUID, in *UploadInput) (*models.File, error) {
	file, project, err := s.fileWithProject(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) {
		return nil, errs.Forbidden("only the owning freelancer can upload previews")
	}

	contentType, err := s.checkUpload(in)
	if err != nil {
		return nil, err
	}

	key := objectKey(fmt.Sprintf("projects/%s/previews", project.ID), in.OriginalName)
	if err := s.store.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, err
	}
	if err := s.repo.Files().SetPreviewPath(ctx, fileID, key); err != nil {
		DeleteAll(ctx, s.store, []string{key})
		return nil, err
	}
	if file.PreviewAvailable() {
		DeleteAll(ctx, s.store, []string{*file.PreviewPath})
	}

	file.PreviewPath = &key
	file.HasPreview = true
	return file, nil
}

// ListFiles returns the project's files to anyone with access to the project.
func (s *FileService) ListFiles(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) ([]models.File, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if lifecycle.ResolveAccess(project, r) == lifecycle.AccessNone {
		return nil, errs.Forbidden("you do not have access to this project")
	}

	files, err := s.repo.Files().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].HasPreview = files[i].PreviewAvailable()
	}
	return files, nil
}

// Retrieve resolves which rendition of a file the requester may fetch and
// where to fetch it. An empty want picks the best rendition allowed.
// Originals are never handed out below full access; original downloads by
// the client count against the project's download limit.
func (s *FileService) Retrieve(ctx context.Context, r lifecycle.Requester, fileID uuid.UUID, want lifecycle.Rendition) (*FileDownload, error) {
	file, project, err := s.fileWithProject(ctx, fileID)
	if err != nil {
		return nil, err
	}

	access := lifecycle.ResolveAccess(project, r)
	rendition, err := lifecycle.SelectRendition(access, file)
	if err != nil {
		return nil, err
	}

	switch want {
	case "", rendition:
	case lifecycle.RenditionOriginal:
		return nil, errs.Forbidden("the original file is available after payment")
	case lifecycle.RenditionPreview:
		if !file.PreviewAvailable() {
			return nil, errs.PreviewLocked("no preview rendition for this file")
		}
		rendition = lifecycle.RenditionPreview
	default:
		return nil, errs.Validation("unknown rendition " + string(want))
	}

	key := file.FilePath
	ttl := time.Duration(s.config.Storage.PresignTTLMins) * time.Minute
	if rendition == lifecycle.RenditionPreview {
		key = *file.PreviewPath
		ttl = time.Duration(s.config.Storage.PreviewTTLMins) * time.Minute
	}

	location, err := s.store.Locate(ctx, key, ttl)
	if err != nil {
		return nil, err
	}

	if rendition == lifecycle.RenditionOriginal && !r.Owns(project) {
		ok, err := s.repo.Files().IncrementDownloads(ctx, file.ID, project.PreviewSettings.DownloadLimit)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.LimitReached("download limit reached for this file")
		}
		file.DownloadCount++
	}

	file.HasPreview = file.PreviewAvailable()
	download := &FileDownload{
		File:      file,
		Rendition: rendition,
		URL:       location.URL,
		LocalPath: location.LocalPath,
	}
	if !location.ExpiresAt.IsZero() {
		download.ExpiresAt = &location.ExpiresAt
	}
	if access == lifecycle.AccessPreview {
		download.Watermark = project.PreviewSettings.Watermark
		if file.FileType.TimeBased() {
			download.TimeLimit = project.PreviewSettings.TimeLimit
		}
	}
	return download, nil
}

func (s *FileService) fileWithProject(ctx context.Context, fileID uuid.UUID) (*models.File, *models.Project, error) {
	file, err := s.repo.Files().Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.repo.Projects().Get(ctx, file.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return file, project, nil
}

// checkUpload validates size and MIME type and returns the content type to store.
func (s *FileService) checkUpload(in *UploadInput) (string, error) {
	if in == nil || in.Body == nil || in.OriginalName == "" {
		return "", errs.Validation("file is required")
	}
	if in.Size <= 0 {
		return "", errs.Validation("file is empty")
	}
	if in.Size > s.config.Storage.MaxUploadBytes() {
		return "", errs.Validation(fmt.Sprintf("file exceeds the %d MB limit", s.config.Storage.MaxUploadMB))
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(in.ContentType, ";")[0]))
	if contentType == "" || contentType == "application/octet-stream" {
		sniffed, err := sniffContentType(in.Body)
		if err != nil {
			return "", err
		}
		contentType = sniffed
	}

	if !s.mimeAllowed(contentType) {
		return "", errs.Validation("file type " + contentType + " is not allowed")
	}
	return contentType, nil
}

func (s *FileService) mimeAllowed(contentType string) bool {
	if len(s.config.Storage.AllowedMimeList) == 0 {
		return true
	}
	for _, allowed := range s.config.Storage.AllowedMimeList {
		if strings.HasSuffix(allowed, "/") && strings.HasPrefix(contentType, allowed) {
			return true
		}
		if contentType == allowed {
			return true
		}
	}
	return false
}

func sniffContentType(body io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(body, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}
	return strings.Split(http.DetectContentType(buf[:n]), ";")[0], nil
}
