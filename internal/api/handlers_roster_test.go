package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func multipartUpload(field, filename, content string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile(field, filename)
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestHandleUploadRoster(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler()

	csv := "Student,ID,SIS User ID,Email\n" +
		"\"Doe, Jane\",101,jd101,jane@example.edu\n" +
		"\"Smith, Alex\",102,as102,alex@example.edu\n"
	body, contentType := multipartUpload("file", "canvas_export.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/roster/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleUploadRoster(c)) {
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(2), resp["count"])
		assert.Equal(t, "canvas_export.csv", resp["source"])
	}

	students := h.roster.Students()
	assert.Len(t, students, 2)
}

func TestHandleUploadRosterMissingFile(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/roster/upload", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.HandleUploadRoster(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUploadRosterNoUsableStudents(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler()

	body, contentType := multipartUpload("file", "empty.csv", "Student,ID\n")
	req := httptest.NewRequest(http.MethodPost, "/api/roster/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.HandleUploadRoster(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no usable students")
}

func TestHandleGetAndClearRoster(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler()
	loadRoster(h)

	req := httptest.NewRequest(http.MethodGet, "/api/roster", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.HandleGetRoster(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["count"])

	// Clear
	req = httptest.NewRequest(http.MethodDelete, "/api/roster", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	assert.NoError(t, h.HandleClearRoster(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, h.roster.Students())
}
