package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/grade-assist/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// allowedTypes is populated from config at startup; empty means allow all.
var allowedTypes map[string]struct{}

// deletionAllowed is populated from config at startup.
var deletionAllowed = true

// SetFileDeletionAllowed toggles the delete endpoint from config.
func SetFileDeletionAllowed(allowed bool) {
	deletionAllowed = allowed
}

// SetAllowedFileTypes installs the upload extension allowlist from config,
// e.g. ".pdf,.docx,.txt".
func SetAllowedFileTypes(csv string) {
	if strings.TrimSpace(csv) == "" {
		allowedTypes = nil
		return
	}
	allowedTypes = make(map[string]struct{})
	for _, ext := range strings.Split(csv, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			allowedTypes[ext] = struct{}{}
		}
	}
}

func extensionAllowed(name string) bool {
	if allowedTypes == nil {
		return true
	}
	_, ok := allowedTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// HandleUploadFile accepts a submission file as multipart form data and
// saves it to storage.
func (h *Handler) HandleUploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RespondWithError(c, NewBadRequestError("missing file", err))
	}

	if !extensionAllowed(fileHeader.Filename) {
		return RespondWithError(c, NewBadRequestError("file type not allowed", nil))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to read upload", err))
	}
	defer src.Close()

	info, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to save file", err))
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleRecentFiles returns a list of recently uploaded submission files.
func (h *Handler) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(50)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list files", err))
	}
	if files == nil {
		files = []*models.FileInfo{}
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *Handler) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("file", id))
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDownloadFile streams a stored submission back under its display
// name, so graders can open the file they are assigning.
func (h *Handler) HandleDownloadFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("file", id))
	}
	path, err := h.store.GetFilePath(id)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("file", id))
	}
	return c.Attachment(path, info.Name)
}

// HandleDeleteFile removes a file from storage.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	if !deletionAllowed {
		return RespondWithError(c, NewForbiddenError("file deletion is disabled"))
	}
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return RespondWithError(c, NewNotFoundError("file", id))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the name of a file. Renames matter here: the
// filename is the matching engine's only signal.
func (h *Handler) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.Name == "" {
		return RespondWithError(c, NewValidationError("name"))
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return RespondWithError(c, NewNotFoundError("file", id))
	}

	return c.JSON(http.StatusOK, info)
}
