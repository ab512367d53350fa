package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/yamdb/internal/server/services"
	"github.com/gorilla/mux"
)

// reviewPath resolves the title and review ids of the route. The review id
// is zero on collection routes.
func reviewPath(r *http.Request) (titleID, reviewID int64, err error) {
	if titleID, err = pathID(r, "title_id"); err != nil {
		return 0, 0, err
	}
	if _, ok := mux.Vars(r)["review_id"]; ok {
		if reviewID, err = pathID(r, "review_id"); err != nil {
			return 0, 0, err
		}
	}
	return titleID, reviewID, nil
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, _, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	list, err := s.svc.Reviews.ListReviews(r.Context(), titleID)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondPage(s, w, r, list, toReviewJSON)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	rv, err := s.svc.Reviews.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toReviewJSON(rv))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, _, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var req reviewInputJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	rv, err := s.svc.Reviews.CreateReview(r.Context(), actorFrom(r.Context()), titleID, req.Text, req.Score)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toReviewJSON(rv))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var req reviewPatchJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	rv, err := s.svc.Reviews.UpdateReview(r.Context(), actorFrom(r.Context()), titleID, reviewID,
		services.ReviewPatch{Text: req.Text, Score: req.Score})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toReviewJSON(rv))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	if err := s.svc.Reviews.DeleteReview(r.Context(), actorFrom(r.Context()), titleID, reviewID); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	list, err := s.svc.Reviews.ListComments(r.Context(), titleID, reviewID)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondPage(s, w, r, list, toCommentJSON)
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	id, err := pathID(r, "comment_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	c, err := s.svc.Reviews.GetComment(r.Context(), titleID, reviewID, id)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toCommentJSON(c))
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var req commentInputJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var text string
	if req.Text != nil {
		text = *req.Text
	}

	c, err := s.svc.Reviews.CreateComment(r.Context(), actorFrom(r.Context()), titleID, reviewID, text)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toCommentJSON(c))
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	id, err := pathID(r, "comment_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	var req commentInputJSON
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	c, err := s.svc.Reviews.UpdateComment(r.Context(), actorFrom(r.Context()), titleID, reviewID, id, req.Text)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toCommentJSON(c))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := reviewPath(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	id, err := pathID(r, "comment_id")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	if err := s.svc.Reviews.DeleteComment(r.Context(), actorFrom(r.Context()), titleID, reviewID, id); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
