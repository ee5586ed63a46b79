package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/technest/technest-api/internal/api/handler/v1/request"
	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/api/middleware"
	"github.com/technest/technest-api/internal/domain"
)

var (
	errMissingEventID    = errors.New("eventId is required")
	errMissingInterestID = errors.New("id is required")
)

type InterestService interface {
	ExpressInterest(ctx context.Context, identity *domain.Identity, eventID, status string) (domain.InterestOutcome, error)
	WithdrawInterest(ctx context.Context, identity *domain.Identity, target domain.InterestRef) error
}

type InterestHandler struct {
	svc InterestService
}

func NewInterestHandler(svc InterestService) *InterestHandler {
	return &InterestHandler{
		svc: svc,
	}
}

// HandleInterest godoc
// @Summary      Record or withdraw interest in an event
// @Description  Status defaults to INTERESTED. With action "remove" the interest is withdrawn instead.
// @Tags         interests
// @Accept       json
// @Produce      json
// @Param        input  body      request.InterestRequest  true  "interest"
// @Success      200    {object}  response.InterestResponse
// @Success      201    {object}  response.InterestResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events/interest [post]
// @Security BearerAuth
func (h *InterestHandler) HandleInterest(ctx *gin.Context) {
	var req request.InterestRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if req.Action == request.ActionRemove {
		h.withdraw(ctx, domain.InterestRef{EventID: req.EventID})
		return
	}

	outcome, err := h.svc.ExpressInterest(ctx.Request.Context(), middleware.Identity(ctx), req.EventID, req.Status)
	if err != nil {
		err = fmt.Errorf("v1.HandleInterest -> h.svc.ExpressInterest -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	status, message := http.StatusOK, "Interest updated"
	if outcome.Created {
		status, message = http.StatusCreated, "Interest registered"
	}

	ctx.JSON(status, response.InterestResponse{
		Message:  message,
		Interest: outcome.Interest,
		Event:    response.EventTitle{Title: outcome.EventTitle},
	})
}

// HandleWithdrawInterest godoc
// @Summary      Withdraw interest in an event
// @Tags         interests
// @Produce      json
// @Param        eventId  query     string  true  "event id"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/interest [delete]
// @Security BearerAuth
func (h *InterestHandler) HandleWithdrawInterest(ctx *gin.Context) {
	eventID := ctx.Query("eventId")
	if eventID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingEventID))
		return
	}

	h.withdraw(ctx, domain.InterestRef{EventID: eventID})
}

// HandleRemoveMyInterest godoc
// @Summary      Remove one of the caller's interests by its id
// @Tags         user
// @Produce      json
// @Param        id   query     string  true  "interest id"
// @Success      200  {object}  response.MessageResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /user/events/interest [delete]
// @Security BearerAuth
func (h *InterestHandler) HandleRemoveMyInterest(ctx *gin.Context) {
	id := ctx.Query("id")
	if id == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingInterestID))
		return
	}

	h.withdraw(ctx, domain.InterestRef{InterestID: id})
}

func (h *InterestHandler) withdraw(ctx *gin.Context, target domain.InterestRef) {
	if err := h.svc.WithdrawInterest(ctx.Request.Context(), middleware.Identity(ctx), target); err != nil {
		err = fmt.Errorf("v1.withdraw -> h.svc.WithdrawInterest -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "interest"))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "Interest removed"})
}
