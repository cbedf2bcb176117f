package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// SuccessResponse returns a JSON response with a success message with no type limitation
func SuccessResponse(c *gin.Context, extras any) {
	c.JSON(
		http.StatusOK,
		NewResponse(
			true,
			http.StatusOK,
			extras,
		))
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			map[string]any{
				"message": message,
			},
		))
}

// AbortWithError writes err as an error envelope. An Error keeps its own
// code; anything else is reported as an internal error.
func AbortWithError(c *gin.Context, err error) {
	var e Error
	if errors.As(err, &e) {
		ErrorResponse(c, e.Code, e.Extras)
		c.Abort()
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, err.Error())
	c.Abort()
}
