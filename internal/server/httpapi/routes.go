package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/yamdb/internal/server/permissions"
	"github.com/gorilla/mux"
)

// addRoute registers handler for method and route under the API prefix. A
// non-empty resource puts the view-level permission check in front of the
// handler. Routes live on the root router so that a path known under another
// method answers 405 rather than 404.
func (s *Server) addRoute(method, route string, handler http.HandlerFunc, res permissions.Resource) {
	if res != "" {
		handler = s.guard(res, handler)
	}
	s.router.StrictSlash(true).HandleFunc(apiPrefix+route, handler).Methods(method)
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.StrictSlash(true)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	// Middleware is executed in the order it is registered in.
	s.router.Use(closeBodyMiddleware)
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.authenticateMiddleware)

	// Signup
	s.addRoute(http.MethodPost, "/auth/signup/", s.handleSignup, "")
	s.addRoute(http.MethodPost, "/auth/token/", s.handleToken, "")

	// Users. /users/me/ must be registered before /users/{username}/.
	s.addRoute(http.MethodGet, "/users/me/", s.handleGetMe, permissions.Me)
	s.addRoute(http.MethodPatch, "/users/me/", s.handleUpdateMe, permissions.Me)
	// Any other method on /users/me/ must not reach /users/{username}/.
	s.router.HandleFunc(apiPrefix+"/users/me/", s.handleMethodNotAllowed)
	s.addRoute(http.MethodGet, "/users/", s.handleListUsers, permissions.Users)
	s.addRoute(http.MethodPost, "/users/", s.handleCreateUser, permissions.Users)
	s.addRoute(http.MethodGet, "/users/{username}/", s.handleGetUser, permissions.Users)
	s.addRoute(http.MethodPatch, "/users/{username}/", s.handleUpdateUser, permissions.Users)
	s.addRoute(http.MethodDelete, "/users/{username}/", s.handleDeleteUser, permissions.Users)

	// Catalog
	s.addRoute(http.MethodGet, "/categories/", s.handleListCategories, permissions.Categories)
	s.addRoute(http.MethodPost, "/categories/", s.handleCreateCategory, permissions.Categories)
	s.addRoute(http.MethodDelete, "/categories/{slug}/", s.handleDeleteCategory, permissions.Categories)
	s.addRoute(http.MethodGet, "/genres/", s.handleListGenres, permissions.Genres)
	s.addRoute(http.MethodPost, "/genres/", s.handleCreateGenre, permissions.Genres)
	s.addRoute(http.MethodDelete, "/genres/{slug}/", s.handleDeleteGenre, permissions.Genres)
	s.addRoute(http.MethodGet, "/titles/", s.handleListTitles, permissions.Titles)
	s.addRoute(http.MethodPost, "/titles/", s.handleCreateTitle, permissions.Titles)
	s.addRoute(http.MethodGet, "/titles/{title_id:[0-9]+}/", s.handleGetTitle, permissions.Titles)
	s.addRoute(http.MethodPatch, "/titles/{title_id:[0-9]+}/", s.handleUpdateTitle, permissions.Titles)
	s.addRoute(http.MethodDelete, "/titles/{title_id:[0-9]+}/", s.handleDeleteTitle, permissions.Titles)

	// Reviews
	reviews := "/titles/{title_id:[0-9]+}/reviews/"
	review := reviews + "{review_id:[0-9]+}/"
	s.addRoute(http.MethodGet, reviews, s.handleListReviews, permissions.Reviews)
	s.addRoute(http.MethodPost, reviews, s.handleCreateReview, permissions.Reviews)
	s.addRoute(http.MethodGet, review, s.handleGetReview, permissions.Reviews)
	s.addRoute(http.MethodPatch, review, s.handleUpdateReview, permissions.Reviews)
	s.addRoute(http.MethodDelete, review, s.handleDeleteReview, permissions.Reviews)

	// Comments
	comments := review + "comments/"
	comment := comments + "{comment_id:[0-9]+}/"
	s.addRoute(http.MethodGet, comments, s.handleListComments, permissions.Comments)
	s.addRoute(http.MethodPost, comments, s.handleCreateComment, permissions.Comments)
	s.addRoute(http.MethodGet, comment, s.handleGetComment, permissions.Comments)
	s.addRoute(http.MethodPatch, comment, s.handleUpdateComment, permissions.Comments)
	s.addRoute(http.MethodDelete, comment, s.handleDeleteComment, permissions.Comments)
}
