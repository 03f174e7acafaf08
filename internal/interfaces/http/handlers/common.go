// Package handlers implements the gin HTTP handlers for the molsearch API.
// Every response travels in the common.APIResponse envelope; application
// errors are translated to HTTP status codes through the shared error-code
// mapping.
package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/interfaces/http/middleware"
	"github.com/turtacn/molsearch/pkg/errors"
	"github.com/turtacn/molsearch/pkg/types/common"
)

// respondOK writes a 200 success envelope.
func respondOK(c *gin.Context, data interface{}) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(http.StatusOK, resp)
}

// respondError translates an application error into an HTTP response. The
// status code comes from the error-code mapping; unknown errors collapse to a
// 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := errors.DefaultMessageForCode(code)
	var detail string
	var ae *errors.AppError
	if goerrors.As(err, &ae) {
		message = ae.Message
		detail = ae.Detail
	}

	resp := common.NewErrorResponse(string(code), message)
	if detail != "" && errors.IsClientError(code) {
		resp.Error.Details = map[string]interface{}{"detail": detail}
	}
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}

// respondBindError writes a 400 for a request that failed binding or
// validation at the edge.
func respondBindError(c *gin.Context, err error) {
	resp := common.NewErrorResponse(string(errors.ErrCodeValidation), "invalid request body")
	if err != nil {
		resp.Error.Details = map[string]interface{}{"detail": err.Error()}
	}
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}
