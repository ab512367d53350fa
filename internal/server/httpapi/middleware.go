package httpapi

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/permissions"
)

type ctxKey int

const actorKey ctxKey = iota

// actorFrom returns the request's actor, anonymous when none was attached.
func actorFrom(ctx context.Context) permissions.Actor {
	if a, ok := ctx.Value(actorKey).(permissions.Actor); ok {
		return a
	}
	return permissions.Anonymous()
}

func withActor(ctx context.Context, a permissions.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// remoteAddr returns the client address, preferring the proxy header.
func remoteAddr(r *http.Request) string {
	if via := r.Header.Get("X-Forwarded-For"); via != "" {
		return strings.TrimSpace(strings.Split(via, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func closeBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, reqBodySizeLimit)
		next.ServeHTTP(w, r)
		r.Body.Close()
	})
}

// recoverMiddleware recovers from any panics by logging the panic and
// returning a 500 response.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(r.Context(), "panic while serving request",
					"remote", remoteAddr(r), "method", r.Method, "url", r.URL.String(),
					"panic", p, "stack", string(debug.Stack()))
				respondWithJSON(w, http.StatusInternalServerError, detail(msgInternal))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info(r.Context(), "request",
			"remote", remoteAddr(r), "method", r.Method, "url", r.URL.String(), "proto", r.Proto)
		next.ServeHTTP(w, r)
	})
}

// authenticateMiddleware resolves a bearer token to an actor. Requests
// without an Authorization header are anonymous; a header that does not
// carry a valid token is rejected outright.
func (s *Server) authenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), permissions.Anonymous())))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
			s.respondWithError(w, r, common.ErrInvalidToken)
			return
		}

		user, err := s.svc.Auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.respondWithError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), permissions.Actor{User: user})))
	})
}

// guard runs the view-level permission check before handler.
func (s *Server) guard(res permissions.Resource, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.evaluator.CheckView(actorFrom(r.Context()), res, r.Method); err != nil {
			s.respondWithError(w, r, err)
			return
		}
		handler(w, r)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug(r.Context(), "invalid route",
		"remote", remoteAddr(r), "method", r.Method, "url", r.URL.String())
	respondWithJSON(w, http.StatusNotFound, detail(msgNotFound))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusMethodNotAllowed, detail(`Method "`+r.Method+`" not allowed.`))
}
