package services

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/yamdb/internal/common"
)

const (
	maxUserNameLength = 150
	maxEmailLength    = 254
	maxNameLength     = 256
	maxSlugLength     = 50
)

const (
	msgRequired      = "This field is required."
	msgUserNameChars = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUserNameMe    = `Username "me" is not allowed.`
	msgEmail         = "Enter a valid email address."
	msgSlug          = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
)

var (
	userNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func tooLong(n int) string {
	return "Ensure this field has no more than " + strconv.Itoa(n) + " characters."
}

func invalidField(field, message string) error {
	return common.NewFieldError(field, message, common.ErrInvalidIdentity)
}

// validateUserName enforces the username shape and the reserved "me" alias.
func validateUserName(userName string) error {
	switch {
	case userName == "":
		return invalidField("username", msgRequired)
	case utf8.RuneCountInString(userName) > maxUserNameLength:
		return invalidField("username", tooLong(maxUserNameLength))
	case !userNamePattern.MatchString(userName):
		return invalidField("username", msgUserNameChars)
	case strings.EqualFold(userName, common.ReservedUserName):
		return invalidField("username", msgUserNameMe)
	}
	return nil
}

// normalizeEmail validates a bare address and lower-cases its domain part.
func normalizeEmail(email string) (string, error) {
	if email == "" {
		return "", invalidField("email", msgRequired)
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return "", invalidField("email", tooLong(maxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalidField("email", msgEmail)
	}
	at := strings.LastIndex(email, "@")
	return email[:at] + "@" + strings.ToLower(email[at+1:]), nil
}

// validateNamed checks the name/slug pair of categories and genres.
func validateNamed(name, slug string) error {
	switch {
	case name == "":
		return common.NewFieldError("name", msgRequired, common.ErrorValidation)
	case utf8.RuneCountInString(name) > maxNameLength:
		return common.NewFieldError("name", tooLong(maxNameLength), common.ErrorValidation)
	case slug == "":
		return common.NewFieldError("slug", msgRequired, common.ErrorValidation)
	case len(slug) > maxSlugLength:
		return common.NewFieldError("slug", tooLong(maxSlugLength), common.ErrorValidation)
	case !slugPattern.MatchString(slug):
		return common.NewFieldError("slug", msgSlug, common.ErrorValidation)
	}
	return nil
}
