// internal/web/programs.go
//
// Program/event CRUD.  The public listing is served straight from the
// service's cached payload with CDN-friendly cache headers; everything
// mutating sits behind requireAdmin at the router.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/najeorg/naje-backend/internal/program"
)

// listingCacheControl lets the CDN serve briefly stale listings while it
// revalidates, keeping the origin quiet on traffic spikes.
const listingCacheControl = "public, max-age=5, s-maxage=30, stale-while-revalidate=120"

var validate = validator.New()

func (s *Server) handleProgramList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := program.ListFilter{
		Search:   q.Get("search"),
		Type:     q.Get("type"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	payload, err := s.programs.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", listingCacheControl)
	w.Write(payload)
}

func (s *Server) handleProgramGet(w http.ResponseWriter, r *http.Request) {
	id, ok := programID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	p, err := s.programs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, program.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProgramCreate(w http.ResponseWriter, r *http.Request) {
	var in program.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	if msg, ok := validateInput(in); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := s.programs.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleProgramUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := programID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	var patch program.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := validate.Struct(patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type")
		return
	}

	if err := s.programs.Update(r.Context(), id, patch); err != nil {
		if errors.Is(err, program.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleProgramDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := programID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err := s.programs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, program.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// programID parses the id route parameter; a malformed id is
// indistinguishable from an unknown one for the caller.
func programID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// validateInput maps validator failures onto the API's terse error
// vocabulary: absent required fields collapse to "Missing fields",
// anything else names the offending field.
func validateInput(in program.Input) (string, bool) {
	err := validate.Struct(in)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if verrs[0].Tag() == "required" {
			return "Missing fields", false
		}
		return "Invalid " + strings.ToLower(verrs[0].Field()), false
	}
	return "Missing fields", false
}
