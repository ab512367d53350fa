package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/gorilla/mux"
)

const (
	msgNotFound       = "Not found."
	msgInternal       = "Internal server error."
	msgInvalidToken   = "Given token not valid for any token type."
	msgNotProvided    = "Authentication credentials were not provided."
	msgPermission     = "You do not have permission to perform this action."
	msgInvalidCode    = "Invalid confirmation code."
	msgMalformedBody  = "JSON parse error."
	msgInvalidPage    = "Invalid page."
	fieldNonField     = "non_field_errors"
	fieldConfirmation = "confirmation_code"
)

type detailReply struct {
	Detail string `json:"detail"`
}

func detail(msg string) detailReply { return detailReply{Detail: msg} }

// fieldReply is the per-field error body: {"field": ["message"]}.
type fieldReply map[string][]string

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	if payload == nil {
		w.WriteHeader(code)
		return
	}
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// errorReply maps err to a status and a response body. Forbidden turns into
// 401 for anonymous callers.
func errorReply(err error, anonymous bool) (int, any) {
	var fe *common.FieldError
	hasField := errors.As(err, &fe)

	switch {
	case errors.Is(err, errInvalidPage):
		return http.StatusNotFound, detail(msgInvalidPage)
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, detail(msgNotFound)
	case errors.Is(err, common.ErrInvalidCode):
		return http.StatusBadRequest, fieldReply{fieldConfirmation: {msgInvalidCode}}
	case errors.Is(err, common.ErrInvalidIdentity),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorValidation):
		if hasField {
			return http.StatusBadRequest, fieldReply{fe.Field: {fe.Message}}
		}
		return http.StatusBadRequest, fieldReply{fieldNonField: {err.Error()}}
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, detail(msgInvalidToken)
	case errors.Is(err, common.ErrForbidden):
		if anonymous {
			return http.StatusUnauthorized, detail(msgNotProvided)
		}
		return http.StatusForbidden, detail(msgPermission)
	default:
		return http.StatusInternalServerError, detail(msgInternal)
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := errorReply(err, !actorFrom(r.Context()).Authenticated())
	if code == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method, "url", r.URL.String(), "error", err)
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	respondWithJSON(w, code, body)
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewFieldError(fieldNonField, msgMalformedBody, fmt.Errorf("%w: %v", common.ErrorValidation, err))
	}
	return nil
}

// pathID parses a numeric route variable. Routes constrain these to digits,
// so a parse failure only happens on overflow and reads as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, common.ErrorNotFound
	}
	return id, nil
}
