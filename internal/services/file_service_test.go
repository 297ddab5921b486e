package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
)

func (s *ServiceTestSuite) TestUploadValidation() {
	project := s.createProject("100")

	_, err := s.files.Upload(s.ctx, s.client, project.ID, &UploadInput{
		OriginalName: "a.mp4", ContentType: "video/mp4", Size: 3, Body: bytes.NewReader([]byte("abc")),
	})
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.files.Upload(s.ctx, s.owner, project.ID, &UploadInput{
		OriginalName: "a.exe", ContentType: "application/x-msdownload", Size: 3, Body: bytes.NewReader([]byte("abc")),
	})
	s.ErrorIs(err, errs.ErrValidation)

	big := s.cfg.Storage.MaxUploadBytes() + 1
	_, err = s.files.Upload(s.ctx, s.owner, project.ID, &UploadInput{
		OriginalName: "a.mp4", ContentType: "video/mp4", Size: big, Body: bytes.NewReader([]byte("abc")),
	})
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *ServiceTestSuite) TestUploadSniffsMissingContentType() {
	project := s.createProject("100")
	pdf := []byte("%PDF-1.4\n%fake document body")

	file, err := s.files.Upload(s.ctx, s.owner, project.ID, &UploadInput{
		OriginalName: "Contract.PDF",
		Size:         int64(len(pdf)),
		Body:         bytes.NewReader(pdf),
	})
	s.Require().NoError(err)
	s.Equal(models.FileTypePDF, file.FileType)
	s.Equal("Contract.PDF", file.OriginalName)
	s.True(strings.HasSuffix(file.FilePath, ".pdf"))
	s.True(strings.HasPrefix(file.FilePath, "projects/"+project.ID.String()+"/originals/"))

	location, err := s.store.Locate(s.ctx, file.FilePath, 0)
	s.Require().NoError(err)
	stored, err := os.ReadFile(location.LocalPath)
	s.Require().NoError(err)
	s.Equal(pdf, stored)
}

func (s *ServiceTestSuite) TestPreviewAccessNeverServesOriginals() {
	project, video := s.publishedProject("100")
	bareImage := s.upload(project.ID, "still.png", "image/png")
	pdf := s.upload(project.ID, "storyboard.pdf", "application/pdf")
	s.uploadPreview(pdf.ID, "storyboard-preview.pdf", "application/pdf")

	download, err := s.files.Retrieve(s.ctx, s.client, video.ID, "")
	s.Require().NoError(err)
	s.Equal(lifecycle.RenditionPreview, download.Rendition)
	s.Equal(*video.PreviewPath, relativeKey(s, download.LocalPath))
	s.True(download.Watermark)

	_, err = s.files.Retrieve(s.ctx, s.client, video.ID, lifecycle.RenditionOriginal)
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.files.Retrieve(s.ctx, s.client, bareImage.ID, "")
	s.ErrorIs(err, errs.ErrPreviewLocked)

	_, err = s.files.Retrieve(s.ctx, s.client, pdf.ID, "")
	s.ErrorIs(err, errs.ErrPreviewLocked)

	_, err = s.files.Retrieve(s.ctx, s.stranger, video.ID, "")
	s.ErrorIs(err, errs.ErrForbidden)

	owner, err := s.files.Retrieve(s.ctx, s.owner, video.ID, "")
	s.Require().NoError(err)
	s.Equal(lifecycle.RenditionOriginal, owner.Rendition)
	s.False(owner.Watermark)

	stored, err := s.repo.Files().Get(s.ctx, video.ID)
	s.Require().NoError(err)
	s.Zero(stored.DownloadCount)
}

func (s *ServiceTestSuite) TestDraftFilesAreOwnerOnly() {
	project := s.createProject("100")
	file := s.upload(project.ID, "cut.mp4", "video/mp4")

	_, err := s.files.Retrieve(s.ctx, s.client, file.ID, "")
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.files.ListFiles(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	files, err := s.files.ListFiles(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Len(files, 1)
	s.False(files[0].HasPreview)
}

func (s *ServiceTestSuite) TestPaidClientGetsOriginalsWithinDownloadLimit() {
	project := s.createProject("100")
	limit := 1
	_, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{
		PreviewSettings: &models.PreviewSettings{Watermark: true, DownloadLimit: &limit},
	})
	s.Require().NoError(err)

	video := s.upload(project.ID, "cut.mp4", "video/mp4")
	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	project, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.pay(project, "pi_download")

	download, err := s.files.Retrieve(s.ctx, s.client, video.ID, "")
	s.Require().NoError(err)
	s.Equal(lifecycle.RenditionOriginal, download.Rendition)
	s.Equal(video.FilePath, relativeKey(s, download.LocalPath))
	s.Equal(1, download.File.DownloadCount)

	_, err = s.files.Retrieve(s.ctx, s.client, video.ID, lifecycle.RenditionOriginal)
	s.ErrorIs(err, errs.ErrLimitReached)

	// The owner is never limited.
	_, err = s.files.Retrieve(s.ctx, s.owner, video.ID, "")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestUploadPreviewReplacesOldRendition() {
	project := s.createProject("100")
	video := s.upload(project.ID, "cut.mp4", "video/mp4")
	first := s.uploadPreview(video.ID, "v1.mp4", "video/mp4")
	oldKey := *first.PreviewPath

	second := s.uploadPreview(video.ID, "v2.mp4", "video/mp4")
	s.NotEqual(oldKey, *second.PreviewPath)

	_, err := s.store.Locate(s.ctx, oldKey, 0)
	s.Error(err)
	_, err = s.store.Locate(s.ctx, *second.PreviewPath, 0)
	s.NoError(err)
}

func relativeKey(s *ServiceTestSuite, localPath string) string {
	root := s.cfg.Storage.LocalDir + string(os.PathSeparator)
	return strings.ReplaceAll(strings.TrimPrefix(localPath, root), string(os.PathSeparator), "/")
}

func (s *ServiceTestSuite) TestMissingOriginalKeepsDownloadAllowance() {
	project := s.createProject("100")
	limit := 1
	_, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{
		PreviewSettings: &models.PreviewSettings{Watermark: true, DownloadLimit: &limit},
	})
	s.Require().NoError(err)

	video := s.upload(project.ID, "cut.mp4", "video/mp4")
	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	project, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.pay(project, "pi_missing")

	stored := filepath.Join(s.cfg.Storage.LocalDir, filepath.FromSlash(video.FilePath))
	data, err := os.ReadFile(stored)
	s.Require().NoError(err)
	s.Require().NoError(os.Remove(stored))

	_, err = s.files.Retrieve(s.ctx, s.client, video.ID, "")
	s.Error(err)
	file, err := s.repo.Files().Get(s.ctx, video.ID)
	s.Require().NoError(err)
	s.Equal(0, file.DownloadCount)

	s.Require().NoError(os.WriteFile(stored, data, 0o600))
	download, err := s.files.Retrieve(s.ctx, s.client, video.ID, "")
	s.Require().NoError(err)
	s.Equal(lifecycle.RenditionOriginal, download.Rendition)
	s.Equal(1, download.File.DownloadCount)
}
