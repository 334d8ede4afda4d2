// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/repository"
	service "github.com/Qwealzy/roots-of-sentient/internal/app"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
)

// Multipart parsing limits. The request body is capped slightly above the
// avatar limit so the form fields still fit; the avatar itself is enforced
// against the exact limit downstream.
const (
	maxMultipartMemory = 8 << 20
	formOverheadBytes  = 1 << 20
)

// WordsHandler handles the /words resource.
type WordsHandler struct {
	deps Dependencies
}

// NewWordsHandler creates a new words handler.
func NewWordsHandler(deps Dependencies) *WordsHandler {
	return &WordsHandler{deps: deps}
}

// HandleWords dispatches /words requests by method.
func (h *WordsHandler) HandleWords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleContribute(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleList handles GET /words requests.
func (h *WordsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	words, err := h.deps.ListWords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrListFailed)
		return
	}
	if words == nil {
		words = []Word{}
	}
	writeJSON(w, http.StatusOK, wordsResponse{Words: words})
}

// handleContribute handles POST /words multipart requests.
func (h *WordsHandler) handleContribute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.DefaultMaxAvatarBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, service.ErrAvatarTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, ErrBadMultipart)
		return
	}

	in := service.Contribution{
		Term:        r.FormValue("term"),
		DisplayName: r.FormValue("username"),
		OwnerToken:  r.FormValue("clientToken"),
	}

	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		in.Avatar = file
		in.AvatarSize = header.Size
		in.AvatarContentType = header.Header.Get("Content-Type")
		in.AvatarFilename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// avatar is optional
	default:
		writeError(w, http.StatusBadRequest, ErrBadMultipart)
		return
	}

	created, err := h.deps.Contribute(r.Context(), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, wordResponse{Word: created})
}

// handleDelete handles DELETE /words?id=&clientToken= requests.
func (h *WordsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("clientToken")
	if id == "" || token == "" {
		writeError(w, http.StatusBadRequest, ErrMissingParams)
		return
	}
	if err := h.deps.DeleteWord(r.Context(), id, token); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// statusFor maps service errors onto the HTTP error taxonomy: bad input is
// 400, ownership failures 403, unknown ids 404, conflicts (duplicate term,
// second word per visitor, full structure) 409, oversized avatars 413, and
// everything else 500.
func statusFor(err error) int {
	var verr *word.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateTerm),
		errors.Is(err, service.ErrVisitorHasWord),
		errors.Is(err, ring.ErrRingFull):
		return http.StatusConflict
	case errors.Is(err, service.ErrAvatarTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
