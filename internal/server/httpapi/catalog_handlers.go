package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/services"
	"github.com/gorilla/mux"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondPage(s, w, r, list, func(c models.Category) categoryJSON { return categoryJSON(c) })
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	c, err := s.svc.Catalog.CreateCategory(r.Context(), models.Category(req))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, categoryJSON(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Catalog.DeleteCategory(r.Context(), mux.Vars(r)["slug"]); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Catalog.ListGenres(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondPage(s, w, r, list, func(g models.Genre) genreJSON { return genreJSON(g) })
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var req genreJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	g, err := s.svc.Catalog.CreateGenre(r.Context(), models.Genre(req))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, genreJSON(g))
}

func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Catalog.DeleteGenre(r.Context(), mux.Vars(r)["slug"]); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// titleFilter narrows the title list by exact genre slug, category slug,
// year and name.
type titleFilter struct {
	genre    string
	category string
	name     string
	year     int
}

func parseTitleFilter(r *http.Request) (titleFilter, error) {
	q := r.URL.Query()
	f := titleFilter{genre: q.Get("genre"), category: q.Get("category"), name: q.Get("name")}
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return f, common.NewFieldError("year", "Enter a number.", common.ErrorValidation)
		}
		f.year = y
	}
	return f, nil
}

func (f titleFilter) match(t *models.Title) bool {
	if f.name != "" && t.Name != f.name {
		return false
	}
	if f.year != 0 && t.Year != f.year {
		return false
	}
	if f.category != "" && (t.Category == nil || t.Category.Slug != f.category) {
		return false
	}
	if f.genre != "" {
		for _, g := range t.Genres {
			if g.Slug == f.genre {
				return true
			}
		}
		return false
	}
	return true
}

func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request) {
	f, err := parseTitleFilter(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	list, err := s.svc.Catalog.ListTitles(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	filtered := make([]*models.Title, 0, len(list))
	for _, t := range list {
		if f.match(t) {
			filtered = append(filtered, t)
		}
	}
	respondPage(s, w, r, filtered, toTitleJSON)
}

func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "title_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	t, err := s.svc.Catalog.GetTitle(r.Context(), id)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toTitleJSON(t))
}

func (s *Server) handleCreateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleInputJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	t, err := s.svc.Catalog.CreateTitle(r.Context(), services.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toTitleJSON(t))
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "title_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var req titlePatchJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	t, err := s.svc.Catalog.UpdateTitle(r.Context(), id, services.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toTitleJSON(t))
}

func (s *Server) handleDeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "title_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	if err := s.svc.Catalog.DeleteTitle(r.Context(), id); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
