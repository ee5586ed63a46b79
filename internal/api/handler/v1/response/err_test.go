package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technest/technest-api/internal/service"
)

func TestFromServiceErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		resource   string
		wantStatus int
		wantCode   string
	}{
		{name: "unauthenticated", err: service.ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantCode: "unauthenticated"},
		{name: "event not found", err: service.ErrNotFound, resource: "event", wantStatus: http.StatusNotFound, wantCode: "event_not_found"},
		{name: "forbidden", err: service.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "forbidden"},
		{name: "self interest", err: service.ErrSelfInterestForbidden, wantStatus: http.StatusBadRequest, wantCode: "self_interest_forbidden"},
		{name: "capacity", err: service.ErrCapacityExceeded, wantStatus: http.StatusBadRequest, wantCode: "capacity_exceeded"},
		{name: "invalid status", err: service.ErrInvalidStatus, wantStatus: http.StatusBadRequest, wantCode: "invalid_status"},
		{name: "organizer missing", err: service.ErrOrganizerNotFound, wantStatus: http.StatusNotFound, wantCode: "organizer_not_found"},
		{name: "duplicate email", err: fmt.Errorf("wrapped -> %w", service.ErrUserEmailExists), wantStatus: http.StatusConflict, wantCode: "email_exists"},
		{name: "credentials", err: service.ErrWrongCredentials, wantStatus: http.StatusUnauthorized, wantCode: "wrong_credentials"},
		{name: "internal", err: &service.InternalError{Op: "s.repo.Upsert", Err: errors.New("conn reset")}, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromServiceErr(tt.err, tt.resource)
			assert.Equal(t, tt.wantStatus, e.HTTPStatusCode)
			assert.Equal(t, tt.wantCode, e.Code)
		})
	}
}

func TestFromServiceErr_ValidationFields(t *testing.T) {
	err := service.ValidationError{Fields: validation.Errors{"title": errors.New("cannot be blank")}}

	e := FromServiceErr(err, "event")
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatusCode)
	assert.Equal(t, map[string]string{"title": "cannot be blank"}, e.Fields)
}

func TestRenderErr_Localized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		acceptLanguage string
		want           string
	}{
		{acceptLanguage: "", want: "This event has reached its maximum capacity."},
		{acceptLanguage: "en-US,en;q=0.9", want: "This event has reached its maximum capacity."},
		{acceptLanguage: "pt-BR,pt;q=0.9,en;q=0.8", want: "Este evento já atingiu a capacidade máxima."},
		{acceptLanguage: "pt", want: "Este evento já atingiu a capacidade máxima."},
		{acceptLanguage: "de-DE", want: "This event has reached its maximum capacity."},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(rec)
			ctx.Request = httptest.NewRequest(http.MethodPost, "/api/v1/events/interest", nil)
			ctx.Request.Header.Set("Accept-Language", tt.acceptLanguage)

			RenderErr(ctx, FromServiceErr(service.ErrCapacityExceeded, ""))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["error"])
			assert.Equal(t, "capacity_exceeded", body["code"])
			assert.True(t, ctx.IsAborted())
		})
	}
}

func TestRenderErr_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RenderErr(ctx, ErrInternalServerError(errors.New("pq: password authentication failed")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")
}
