package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

const (
	imageFormField = "image"

	// multipart bodies carry the image plus a few short text fields
	maxCreateBodySize = model.MaxImageSize + 1<<20
	maxStatusBodySize = 64 << 10
)

// IssueHandler serves the issue endpoints
type IssueHandler struct {
	uc interfaces.Issue
}

// NewIssueHandler creates a new IssueHandler
func NewIssueHandler(uc interfaces.Issue) *IssueHandler {
	return &IssueHandler{uc: uc}
}

// HandleCreate reports a new issue from a multipart form or a JSON body
func (h *IssueHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := parseCreateIssue(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	issue, err := h.uc.Create(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, issue)
}

func parseCreateIssue(w http.ResponseWriter, r *http.Request) (*model.CreateIssueInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var input model.CreateIssueInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return nil, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation))
		}
		return &input, nil
	}

	if err := r.ParseMultipartForm(maxCreateBodySize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, goerr.New("image exceeds 5MB limit", goerr.T(model.ErrTagValidation))
		}
		return nil, goerr.Wrap(err, "invalid multipart form", goerr.T(model.ErrTagValidation))
	}

	input := &model.CreateIssueInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    types.Category(r.FormValue("category")),
	}

	if raw := r.FormValue("location"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Location); err != nil {
			return nil, goerr.Wrap(err, "location must be a JSON object", goerr.T(model.ErrTagValidation))
		}
	} else {
		input.Location = model.IssueLocation{
			Building: r.FormValue("building"),
			Floor:    r.FormValue("floor"),
			Room:     r.FormValue("room"),
		}
	}

	file, header, err := r.FormFile(imageFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, nil
	case err != nil:
		return nil, goerr.Wrap(err, "failed to read image", goerr.T(model.ErrTagValidation))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, model.MaxImageSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image", goerr.T(model.ErrTagValidation))
	}

	input.Image = &model.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return input, nil
}

func browseParams(r *http.Request) interfaces.BrowseParams {
	q := r.URL.Query()
	return interfaces.BrowseParams{
		Status:   types.Status(strings.TrimSpace(q.Get("status"))),
		Category: types.Category(strings.TrimSpace(q.Get("category"))),
		Severity: types.Severity(strings.TrimSpace(q.Get("severity"))),
		Building: strings.TrimSpace(q.Get("building")),
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     q.Get("sort"),
	}
}

// HandleListAll is the operator view
func (h *IssueHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	issues, err := h.uc.ListAll(r.Context(), browseParams(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issues)
}

// HandleBrowse is the public view
func (h *IssueHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	issues, err := h.uc.Browse(r.Context(), browseParams(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issues)
}

// HandleListMine lists the requester's issues
func (h *IssueHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	issues, err := h.uc.ListMine(r.Context(), r.URL.Query().Get("sort"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issues)
}

// HandleGet returns one issue
func (h *IssueHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	issue, err := h.uc.Get(r.Context(), types.IssueID(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issue)
}

// HandleUpdateStatus applies an operator status update
func (h *IssueHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatusBodySize)

	var update model.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
		return
	}

	issue, err := h.uc.UpdateStatus(r.Context(), types.IssueID(chi.URLParam(r, "id")), update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issue)
}

// HandleDelete deletes an issue
func (h *IssueHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), types.IssueID(chi.URLParam(r, "id"))); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Issue deleted successfully"})
}

// HandleUpvote toggles the requester's upvote
func (h *IssueHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	result, err := h.uc.ToggleUpvote(r.Context(), types.IssueID(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// HandleAnalytics returns the analytics summary
func (h *IssueHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.Analytics(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
