package response

import (
	"github.com/gin-gonic/gin"

	"brandcatalog/internal/app"
)

const (
	CodeBadRequest         = 40000
	CodeValidation         = 40001
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeForbidden          = 40300
	CodeInvalidToken       = 40301
	CodeNotFound           = 40400
	CodeRouteNotFound      = 40401
	CodeConflict           = 40900
	CodeTooManyRequests    = 42900
	CodeInternalServer     = 50000
)

type ErrorBody struct {
	Error   string           `json:"error"`
	Code    int              `json:"code"`
	Details []app.FieldError `json:"details,omitempty"`
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Error: message,
		Code:  code,
	})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{
		Error: message,
		Code:  code,
	})
}

func Validation(c *gin.Context, verr *app.ValidationError) {
	c.JSON(400, ErrorBody{
		Error:   "validation failed",
		Code:    CodeValidation,
		Details: verr.Fields,
	})
}
