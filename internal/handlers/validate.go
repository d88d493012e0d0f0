package handlers

import (
	"mime"
	"net/http"
	"net/mail"
	"unicode/utf8"
)

const minPasswordLen = 8
const maxPasswordLen = 72
const maxEmailLen = 255
const maxNameLen = 100

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func validEmail(email string) bool {
	if email == "" || len(email) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validName принимает nil: имя и фамилия необязательны.
func validName(name *string) bool {
	return name == nil || utf8.RuneCountInString(*name) <= maxNameLen
}

func validPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	return n >= minPasswordLen && n <= maxPasswordLen
}
