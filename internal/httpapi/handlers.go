package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"product_feedback/internal/form"
	"product_feedback/internal/model"
	"product_feedback/internal/query"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filterAndSort reads ?brand=&productType=&sort=&order=.
func filterAndSort(r *http.Request) (query.Filter, query.Sort) {
	q := r.URL.Query()
	f := query.Filter{
		Brand:       query.ParseFilterValue(q.Get("brand")),
		ProductType: query.ParseFilterValue(q.Get("productType")),
	}
	o := query.Sort{
		Key:       query.ParseSortKey(q.Get("sort")),
		Direction: query.ParseDirection(q.Get("order")),
	}
	return f, o
}

// GET /feedback
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	f, o := filterAndSort(r)
	items, err := s.svc.Query(r.Context(), f, o)
	if err != nil {
		s.log.Error("query feedback", "error", err)
		_ = writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	_ = jsonResponse(w, http.StatusOK, items)
}

// POST /feedback
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req form.Feedback
	if err := readJSON(w, r, &req); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := req.Draft()
	if err != nil {
		var ferr *form.Error
		if errors.As(err, &ferr) {
			_ = writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{
				Error:  "validation failed",
				Fields: ferr.Fields,
			})
			return
		}
		s.log.Error("validate feedback", "error", err)
		_ = writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	item, err := s.svc.Add(r.Context(), draft)
	if err != nil {
		s.log.Error("add feedback", "error", err)
		_ = writeJSONError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}
	_ = jsonResponse(w, http.StatusCreated, item)
}

// GET /feedback/brands/{brand}
func (s *Server) handleByBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := brandParam(r)
	if err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "invalid brand")
		return
	}
	items, err := s.svc.ByBrand(r.Context(), brand)
	if err != nil {
		s.log.Error("list feedback by brand", "brand", brand, "error", err)
		_ = writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []model.Feedback{}
	}
	_ = jsonResponse(w, http.StatusOK, items)
}

// brandParam returns the decoded {brand} segment. chi matches on RawPath
// when it is set, so the parameter is still escaped in that case.
func brandParam(r *http.Request) (string, error) {
	brand := chi.URLParam(r, "brand")
	if r.URL.RawPath == "" {
		return brand, nil
	}
	return url.PathUnescape(brand)
}

// GET /insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	f, o := filterAndSort(r)
	sum, err := s.svc.Summary(r.Context(), f, o)
	if err != nil {
		s.log.Error("build summary", "error", err)
		_ = writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	_ = jsonResponse(w, http.StatusOK, sum)
}
