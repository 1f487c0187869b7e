// Package response writes JSON error bodies for the HTTP API.
//
// Successful responses are written as the bare payload; errors always use
// the {code, message} body derived from an Errno.
package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/validator"
)

// Error is the body of every error response.
type Error struct {
	// Code is the business error code.
	Code int `json:"code"`
	// Message is a human-readable message.
	Message string `json:"message"`
}

// Err creates an error body from an Errno in the given language.
func Err(e *errors.Errno, lang string) *Error {
	return &Error{Code: e.Code, Message: e.Message(lang)}
}

// Lang 根据 Accept-Language 选择错误消息语言，默认英语。
func Lang(c *gin.Context) string {
	accept := strings.ToLower(strings.TrimSpace(c.GetHeader("Accept-Language")))
	if strings.HasPrefix(accept, "fr") {
		return "fr"
	}
	return "en"
}

// OK writes data with status 200.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Fail writes the errno as an error body and aborts the chain.
func Fail(c *gin.Context, e *errors.Errno) {
	c.AbortWithStatusJSON(e.HTTPStatus(), Err(e, Lang(c)))
}

// FailWithError converts err to an Errno (ErrInternal when it is not one) and writes it.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}

// FailWithValidation writes a 400 carrying the first translated validation message.
func FailWithValidation(c *gin.Context, verr *validator.ValidationErrors) {
	Fail(c, errors.ErrValidationFailed.WithMessages(verr.First(), verr.First()))
}
