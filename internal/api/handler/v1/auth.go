package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technest/technest-api/internal/api/handler/v1/request"
	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/api/middleware"
	"github.com/technest/technest-api/internal/config"
	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/pkg/jwthelper"
)

var errNoSession = errors.New("no session to end")

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	FederatedLogin(ctx context.Context, fu domain.FederatedUser) (domain.User, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type AuthHandler struct {
	conf    *config.APIConfig
	svc     AuthService
	revoker TokenRevoker
}

// NewAuthHandler builds the handler. With a nil revoker logout only tells the
// client to drop its token.
func NewAuthHandler(conf *config.APIConfig, svc AuthService, revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{
		conf:    conf,
		svc:     svc,
		revoker: revoker,
	}
}

// HandleRegister godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, ""))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	h.renderSession(ctx, user)
}

// HandleLogout godoc
// @Summary      Revoke the current session token
// @Tags         auth
// @Produce      json
// @Success      200      {object}   response.MessageResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/logout [post]
// @Security BearerAuth
func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	claims := middleware.Claims(ctx)
	if claims == nil {
		response.RenderErr(ctx, response.ErrUnauthenticated(errNoSession))
		return
	}

	if h.revoker != nil && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(ctx.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			err = fmt.Errorf("v1.HandleLogout -> h.revoker.Revoke -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "Logged out"})
}

// renderSession issues a token bound to the caller's user agent.
func (h *AuthHandler) renderSession(ctx *gin.Context, user domain.User) {
	token, err := jwthelper.GenerateToken(
		[]byte(h.conf.JWTSigningKey), user.ID, string(user.Role), ctx.Request.UserAgent(), h.conf.JWTTTL,
	)
	if err != nil {
		err = fmt.Errorf("v1.renderSession -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}
