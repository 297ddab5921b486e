// internal/handlers/file.go
package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/i18n"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type FileHandler struct {
	fileService *services.FileService
	maxUpload   int64
}

func NewFileHandler(fileService *services.FileService, maxUploadMB int) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUpload:   int64(maxUploadMB) << 20,
	}
}

// readUpload pulls the "file" part out of a multipart request. The caller
// closes the returned file.
func (h *FileHandler) readUpload(c *gin.Context) (*services.UploadInput, multipart.File, bool) {
	lang := utils.GetLangFromContext(c)

	// Leave room for the other form fields.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileRequired), err.Error())
		return nil, nil, false
	}
	if fileHeader.Size > h.maxUpload {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge), nil)
		return nil, nil, false
	}

	input := &services.UploadInput{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
	}

	if raw := c.PostForm("duration"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil || duration < 0 {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "duration"), nil)
			return nil, nil, false
		}
		input.Duration = &duration
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileRequired), err.Error())
		return nil, nil, false
	}
	input.Body = file
	return input, file, true
}

// POST /projects/:id/files
func (h *FileHandler) Upload(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	input, file, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	created, err := h.fileService.Upload(c.Request.Context(), requesterFromContext(c), projectID, input)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyFileUploaded),
		"file":    created,
	})
}

// POST /files/:id/preview
func (h *FileHandler) UploadPreview(c *gin.Context) {
	fileID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	input, file, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	updated, err := h.fileService.UploadPreview(c.Request.Context(), requesterFromContext(c), fileID, input)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessMessageResponse(c, updated, i18n.KeyFileUploaded)
}

// GET /projects/:id/files
func (h *FileHandler) ListFiles(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListFiles(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, files)
}

// GET /files/:id?rendition=preview|original
//
// S3-backed files answer with a presigned URL; files on local disk are
// streamed directly.
func (h *FileHandler) Retrieve(c *gin.Context) {
	fileID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	want := lifecycle.Rendition(c.Query("rendition"))
	download, err := h.fileService.Retrieve(c.Request.Context(), requesterFromContext(c), fileID, want)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if download.LocalPath == "" {
		utils.SuccessResponse(c, download)
		return
	}

	c.Header("X-Rendition", string(download.Rendition))
	if download.Watermark {
		c.Header("X-Preview-Watermark", "true")
	}
	if download.TimeLimit != nil {
		c.Header("X-Preview-Time-Limit", strconv.Itoa(*download.TimeLimit))
	}

	if download.Rendition == lifecycle.RenditionOriginal {
		c.FileAttachment(download.LocalPath, download.File.OriginalName)
		return
	}
	c.File(download.LocalPath)
}
