package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/apierr"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{apperr.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{apperr.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{apperr.ErrInvalidCredential, http.StatusBadRequest, "invalid_credentials"},
	{apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrConflict, http.StatusConflict, "conflict"},
	{apperr.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{apperr.ErrConfiguration, http.StatusInternalServerError, "configuration_error"},
	{apperr.ErrUpstreamUnavailable, http.StatusBadGateway, "upstream_unavailable"},
	{apperr.ErrUpstream, http.StatusBadGateway, "upstream_error"},
}

// StatusFor maps a service error to its HTTP status and code. Unclassified
// errors are 500 and their text is not exposed.
func StatusFor(err error) (int, string, error) {
	if ae, ok := apierr.As(err); ok {
		return ae.Status, ae.Code, ae
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.kind) {
			return m.status, m.code, err
		}
	}
	return http.StatusInternalServerError, "internal_error", errors.New("internal server error")
}

func RespondServiceError(c *gin.Context, err error) {
	status, code, visible := StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, status, code, visible)
}
