package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/technest/technest-api/internal/api/handler/v1/request"
	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/api/middleware"
	"github.com/technest/technest-api/internal/domain"
)

type UserService interface {
	GetProfile(ctx context.Context, identity *domain.Identity) (domain.Profile, error)
	UpdateProfile(ctx context.Context, identity *domain.Identity, name string) (domain.User, error)
	MyEvents(ctx context.Context, identity *domain.Identity) (domain.UserEvents, error)
	DeleteUser(ctx context.Context, identity *domain.Identity, userID string) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetProfile godoc
// @Summary      Get the caller's profile
// @Tags         user
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /user/profile [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetProfile(ctx *gin.Context) {
	profile, err := h.svc.GetProfile(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleGetProfile -> h.svc.GetProfile -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// HandleUpdateProfile godoc
// @Summary      Change the caller's name
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        input  body      request.UpdateProfileRequest  true  "new name"
// @Success      200    {object}  domain.User
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /user/profile [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	var req request.UpdateProfileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.UpdateProfile(ctx.Request.Context(), middleware.Identity(ctx), req.Name)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateProfile -> h.svc.UpdateProfile -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleMyEvents godoc
// @Summary      List the caller's organized events and interests
// @Tags         user
// @Produce      json
// @Success      200  {object}  domain.UserEvents
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /user/events [get]
// @Security BearerAuth
func (h *UserHandler) HandleMyEvents(ctx *gin.Context) {
	events, err := h.svc.MyEvents(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleMyEvents -> h.svc.MyEvents -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleDeleteUser godoc
// @Summary      Delete a user with their events and interests
// @Tags         admin
// @Produce      json
// @Param        userID  path      string  true  "user id"
// @Success      200     {object}  response.MessageResponse
// @Failure      401     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /admin/users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	userID := ctx.Param("userID")

	if err := h.svc.DeleteUser(ctx.Request.Context(), middleware.Identity(ctx), userID); err != nil {
		err = fmt.Errorf("v1.HandleDeleteUser -> h.svc.DeleteUser -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "User deleted"})
}
