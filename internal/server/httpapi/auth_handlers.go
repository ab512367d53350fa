package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/yamdb/internal/common"
)

const msgRequired = "This field is required."

// handleSignup registers (or recognises) an identity and mails it a fresh
// confirmation code.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	user, err := s.svc.Auth.RequestSignup(r.Context(), req.UserName, req.Email)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, signupReply{UserName: user.UserName, Email: user.Email})
}

// handleToken exchanges a confirmation code for an access token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	if req.UserName == "" {
		s.respondWithError(w, r, common.NewFieldError("username", msgRequired, common.ErrorValidation))
		return
	}
	if req.ConfirmationCode == "" {
		s.respondWithError(w, r, common.NewFieldError(fieldConfirmation, msgRequired, common.ErrorValidation))
		return
	}

	cred, err := s.svc.Auth.ConfirmSignup(r.Context(), req.UserName, req.ConfirmationCode)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenReply{Token: cred.Token})
}
