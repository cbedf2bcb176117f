package response

import "net/http"

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(code int, message string) Error {
	return Error{
		Success: false,
		Code:    code,
		Extras:  message,
	}
}

// BadRequest is an Error with status 400.
func BadRequest(message string) Error {
	return NewError(http.StatusBadRequest, message)
}
