package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/grade-assist/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MatchRequest is the synchronous matching request body. Pointer slices
// distinguish a missing field from an empty batch.
type MatchRequest struct {
	Files    *[]models.FileRef     `json:"files"`
	Students *[]models.StudentInfo `json:"students"`
}

// MatchResponse is the synchronous matching response body.
type MatchResponse struct {
	Success bool                 `json:"success"`
	Matches []models.MatchResult `json:"matches"`
	Stats   models.MatchStats    `json:"stats"`
}

// HandleMatch runs the reconciliation engine synchronously over the request
// body. Shape validation happens here, before the engine runs; the engine
// itself never raises on messy names.
func (h *Handler) HandleMatch(c echo.Context) error {
	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid JSON body", err))
	}
	if req.Files == nil {
		return RespondWithError(c, NewValidationError("files"))
	}
	if req.Students == nil {
		return RespondWithError(c, NewValidationError("students"))
	}

	matches, stats := h.engine.Match(*req.Files, *req.Students)

	return c.JSON(http.StatusOK, MatchResponse{
		Success: true,
		Matches: matches,
		Stats:   stats,
	})
}

// HandleStartRun starts an asynchronous match run over previously uploaded
// files, resolved against the active roster.
// Accepts {"fileIds": ["id1", ...]}; an empty list means all recent files.
func (h *Handler) HandleStartRun(c echo.Context) error {
	var req struct {
		FileIDs []string `json:"fileIds"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	students := h.roster.Students()
	if len(students) == 0 {
		return RespondWithError(c, NewBadRequestError("no roster loaded", nil))
	}

	var files []models.FileRef
	if len(req.FileIDs) > 0 {
		for _, fid := range req.FileIDs {
			info, err := h.store.Get(fid)
			if err != nil {
				return RespondWithError(c, NewNotFoundError("file", fid))
			}
			files = append(files, models.FileRef{ID: info.ID, Name: info.Name})
		}
	} else {
		infos, err := h.store.List(500)
		if err != nil {
			return RespondWithError(c, NewInternalError("failed to list files", err))
		}
		for _, info := range infos {
			files = append(files, models.FileRef{ID: info.ID, Name: info.Name})
		}
	}

	if len(files) == 0 {
		return RespondWithError(c, NewBadRequestError("no files to match", nil))
	}

	run := h.runs.StartRun(files, students)
	return c.JSON(http.StatusAccepted, run)
}

// HandleRunStatus returns the status of a match run.
func (h *Handler) HandleRunStatus(c echo.Context) error {
	id := c.Param("runId")
	run, ok := h.runs.GetRun(id)
	if !ok {
		return RespondWithError(c, NewNotFoundError("run", id))
	}
	// Touch run to prevent cleanup while being viewed
	h.runs.TouchRun(id)
	return c.JSON(http.StatusOK, run)
}

// HandleRunResults returns the resolved matches of a completed run. File
// statuses in storage are updated as a side effect so the files list
// reflects the outcome.
func (h *Handler) HandleRunResults(c echo.Context) error {
	id := c.Param("runId")
	results, stats, ok := h.runs.GetResults(id)
	if !ok {
		return RespondWithError(c, NewNotFoundError("completed run", id))
	}
	h.runs.TouchRun(id)

	for _, r := range results {
		if r.MatchedStudent != nil {
			h.store.SetStatus(r.FileID, "matched")
		} else {
			h.store.SetStatus(r.FileID, "unmatched")
		}
	}

	return c.JSON(http.StatusOK, MatchResponse{
		Success: true,
		Matches: results,
		Stats:   *stats,
	})
}

// HandleRunResultsMsgpack returns run results in MessagePack format for
// large batches where JSON payload size matters.
func (h *Handler) HandleRunResultsMsgpack(c echo.Context) error {
	id := c.Param("runId")
	results, stats, ok := h.runs.GetResults(id)
	if !ok {
		return RespondWithError(c, NewNotFoundError("completed run", id))
	}
	h.runs.TouchRun(id)

	data, err := msgpack.Marshal(map[string]interface{}{
		"matches": results,
		"stats":   stats,
	})
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode msgpack", err))
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleRunProgressStream streams run progress via SSE until the run
// finishes, so the UI gets completion without polling.
func (h *Handler) HandleRunProgressStream(c echo.Context) error {
	id := c.Param("runId")

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	run, ok := h.runs.GetRun(id)
	if !ok {
		data, _ := json.Marshal(map[string]string{"error": "run not found"})
		fmt.Fprintf(c.Response(), "data: %s\n\n", data)
		c.Response().Flush()
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		data, _ := json.Marshal(run)
		fmt.Fprintf(c.Response(), "data: %s\n\n", data)
		c.Response().Flush()

		if run.Status == models.RunStatusComplete || run.Status == models.RunStatusError {
			return nil
		}

		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
		}

		run, ok = h.runs.GetRun(id)
		if !ok {
			return nil
		}
	}
}

// HandleRecentReports returns recently archived run summaries.
func (h *Handler) HandleRecentReports(c echo.Context) error {
	if h.reports == nil {
		return RespondWithError(c, NewNotFoundError("report archive", "disabled"))
	}

	summaries, err := h.reports.RecentRuns(20)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list reports", err))
	}
	return c.JSON(http.StatusOK, summaries)
}

// HandleGetReport returns one archived run with its per-file verdicts.
func (h *Handler) HandleGetReport(c echo.Context) error {
	if h.reports == nil {
		return RespondWithError(c, NewNotFoundError("report archive", "disabled"))
	}

	id := c.Param("runId")
	summary, matches, ok, err := h.reports.GetRun(id)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to load report", err))
	}
	if !ok {
		return RespondWithError(c, NewNotFoundError("report", id))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"run":     summary,
		"matches": matches,
	})
}
