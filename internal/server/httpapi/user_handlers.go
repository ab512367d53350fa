package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/gorilla/mux"
)

// handleListUsers lists users, optionally narrowed by a username substring
// in the "search" query parameter.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("search"); q != "" {
		filtered := list[:0]
		for _, u := range list {
			if strings.Contains(u.UserName, q) {
				filtered = append(filtered, u)
			}
		}
		list = filtered
	}
	respondPage(s, w, r, list, toUserJSON)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	user, err := s.svc.Users.Create(r.Context(), &models.User{
		UserName:  req.UserName,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toUserJSON(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.Get(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserJSON(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userPatchJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	user, err := s.svc.Users.Update(r.Context(), mux.Vars(r)["username"], req.patch())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserJSON(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Delete(r.Context(), mux.Vars(r)["username"]); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, toUserJSON(actorFrom(r.Context()).User))
}

// handleUpdateMe edits the caller's own profile. The role stays read-only.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req userPatchJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	user, err := s.svc.Users.UpdateMe(r.Context(), actorFrom(r.Context()).User, req.patch())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserJSON(user))
}
