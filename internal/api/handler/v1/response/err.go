package response

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/technest/technest-api/internal/service"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`
	key            string

	StatusText string            `json:"status"`
	Code       string            `json:"code"`
	ErrorText  string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}
	return e.Err.Error()
}

// RenderErr localizes the message for the request's Accept-Language, logs server
// side failures and aborts the request with the error body.
func RenderErr(ctx *gin.Context, e *Err) {
	printer := printerFor(ctx.GetHeader("Accept-Language"))
	e.ErrorText = printer.Sprintf(e.key)

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(err error, status int, key string) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		key:            key,
		StatusText:     http.StatusText(status),
		Code:           key,
	}
}

func ErrBadRequest(err error) *Err {
	e := newErr(err, http.StatusBadRequest, keyBadRequest)
	e.Fields = fieldErrors(err)
	return e
}

func ErrUnauthenticated(err error) *Err {
	return newErr(err, http.StatusUnauthorized, keyUnauthenticated)
}

func ErrWrongCredentials(err error) *Err {
	return newErr(err, http.StatusUnauthorized, keyWrongCredentials)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(err, http.StatusForbidden, keyForbidden)
}

// ErrNotFound reports that no resource matched field=value.
func ErrNotFound(resource, field string, value any) *Err {
	e := newErr(service.ErrNotFound, http.StatusNotFound, keyNotFound)
	e.Fields = map[string]string{field: stringify(value)}
	if resource != "" {
		e.key = resource + "_" + keyNotFound
		e.Code = e.key
	}
	return e
}

func ErrConflict(err error, key string) *Err {
	return newErr(err, http.StatusConflict, key)
}

func ErrInternalServerError(err error) *Err {
	return newErr(err, http.StatusInternalServerError, keyInternal)
}

// FromServiceErr picks the HTTP status and message for an error returned by the
// service layer. resource names what a NotFound refers to.
func FromServiceErr(err error, resource string) *Err {
	var verr service.ValidationError

	switch {
	case errors.As(err, &verr):
		e := newErr(err, http.StatusBadRequest, keyValidationFailed)
		e.Fields = fieldErrors(verr.Fields)
		return e
	case errors.Is(err, service.ErrUnauthenticated):
		return ErrUnauthenticated(err)
	case errors.Is(err, service.ErrNotFound):
		e := newErr(err, http.StatusNotFound, keyNotFound)
		if resource != "" {
			e.key = resource + "_" + keyNotFound
			e.Code = e.key
		}
		return e
	case errors.Is(err, service.ErrForbidden):
		return ErrPermissionDenied(err)
	case errors.Is(err, service.ErrSelfInterestForbidden):
		return newErr(err, http.StatusBadRequest, keySelfInterest)
	case errors.Is(err, service.ErrCapacityExceeded):
		return newErr(err, http.StatusBadRequest, keyCapacityExceeded)
	case errors.Is(err, service.ErrInvalidStatus):
		return newErr(err, http.StatusBadRequest, keyInvalidStatus)
	case errors.Is(err, service.ErrOrganizerNotFound):
		return newErr(err, http.StatusNotFound, keyOrganizerNotFound)
	case errors.Is(err, service.ErrUserEmailExists):
		return ErrConflict(err, keyEmailExists)
	case errors.Is(err, service.ErrWrongCredentials):
		return ErrWrongCredentials(err)
	}

	return ErrInternalServerError(err)
}
