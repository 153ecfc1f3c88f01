package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/apierr"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperr.New(apperr.ErrForbidden, "skill belongs to another user"), 403, "forbidden", "skill belongs to another user"},
		{fmt.Errorf("wrapped: %w", apperr.New(apperr.ErrNotFound, "task not found")), 404, "not_found", "wrapped: task not found"},
		{apperr.New(apperr.ErrConflict, "That username is already taken."), 409, "conflict", "That username is already taken."},
		{apierr.New(429, "quota_exceeded", errors.New("API quota exceeded. Please try again later.")), 429, "quota_exceeded", "API quota exceeded. Please try again later."},
		{errors.New("pq: connection reset"), 500, "internal_error", "internal server error"},
	}
	for _, tc := range cases {
		status, code, visible := StatusFor(tc.err)
		if status != tc.status || code != tc.code || visible.Error() != tc.msg {
			t.Fatalf("StatusFor(%v): got=(%d %s %q) want=(%d %s %q)", tc.err, status, code, visible, tc.status, tc.code, tc.msg)
		}
	}
}

func TestRespondServiceErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/skills", nil)

	RespondServiceError(c, apperr.New(apperr.ErrUnauthenticated, "Unauthorized"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Unauthorized" || body.Code != "unauthorized" {
		t.Fatalf("body: got=%+v", body)
	}
}
