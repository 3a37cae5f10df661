package api

import (
	"net/http"

	"github.com/grade-assist/backend/internal/roster"
	"github.com/labstack/echo/v4"
)

// HandleUploadRoster accepts a roster CSV as multipart form data and
// replaces the active roster. Bad rows are reported but do not fail the
// upload.
func (h *Handler) HandleUploadRoster(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RespondWithError(c, NewBadRequestError("missing roster file", err))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to read roster file", err))
	}
	defer src.Close()

	students, rowErrors, err := roster.ParseCSV(src)
	if err != nil {
		return RespondWithError(c, NewBadRequestError("invalid roster CSV", err))
	}
	if len(students) == 0 {
		return RespondWithError(c, NewBadRequestError("roster contains no usable students", nil))
	}

	h.roster.Replace(students, fileHeader.Filename)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"count":     len(students),
		"source":    fileHeader.Filename,
		"rowErrors": rowErrors,
	})
}

// HandleGetRoster returns the active roster.
func (h *Handler) HandleGetRoster(c echo.Context) error {
	students := h.roster.Students()
	count, source, uploadedAt := h.roster.Info()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"students":   students,
		"count":      count,
		"source":     source,
		"uploadedAt": uploadedAt,
	})
}

// HandleClearRoster removes the active roster.
func (h *Handler) HandleClearRoster(c echo.Context) error {
	h.roster.Clear()
	return c.NoContent(http.StatusNoContent)
}
