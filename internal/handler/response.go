package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response for newly started jobs.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondDomainError maps err through MapDomainError and sends it.
func RespondDomainError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	RespondError(c, status, code, msg)
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrFolderNotFound):
		return http.StatusNotFound, "FOLDER_NOT_FOUND", "folder does not exist"
	case errors.Is(err, domain.ErrNoPDFFiles):
		return http.StatusBadRequest, "NO_PDF_FILES", "no PDF files found in folder"
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, "JOB_NOT_FOUND", "job not found"
	case errors.Is(err, domain.ErrJobAlreadyDone):
		return http.StatusConflict, "JOB_ALREADY_DONE", "job already finished"
	case errors.Is(err, domain.ErrNothingToDownload):
		return http.StatusNotFound, "NOTHING_TO_DOWNLOAD", "no redacted files to download; run redaction first"
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "EMPTY_DOCUMENT", "document has no pages"
	case errors.Is(err, domain.ErrMalformedOutput):
		return http.StatusBadGateway, "MALFORMED_OUTPUT", "extraction output could not be parsed"
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway, "EXTERNAL_SERVICE", "external service call failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}
