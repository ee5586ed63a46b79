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

type EventService interface {
	CreateEvent(ctx context.Context, identity *domain.Identity, draft domain.EventDraft) (domain.Event, error)
	UpdateEvent(ctx context.Context, identity *domain.Identity, eventID string, patch domain.EventPatch) (domain.Event, error)
	DeleteEvent(ctx context.Context, identity *domain.Identity, eventID string) error
	ListEvents(ctx context.Context, filter domain.EventFilter) (domain.EventPage, error)
	GetEventBySlug(ctx context.Context, identity *domain.Identity, slug string) (domain.Event, error)
	EventIDForSlug(ctx context.Context, slug string) (string, error)
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// HandleListEvents godoc
// @Summary      List upcoming published events
// @Tags         events
// @Produce      json
// @Param        page      query  int     false  "page, starting at 1"
// @Param        limit     query  int     false  "events per page, at most 50"
// @Param        search    query  string  false  "matches title or description"
// @Param        category  query  string  false  "category slug"
// @Param        format    query  string  false  "online or in-person"
// @Param        date      query  string  false  "today, tomorrow, this-week or this-month"
// @Success      200  {object}  domain.EventPage
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	var query request.ListEventsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := query.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	page, err := h.svc.ListEvents(ctx.Request.Context(), query.ToFilter())
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// HandleGetEvent godoc
// @Summary      Get an event by slug
// @Description  Signed-in callers also get their own interest in the event.
// @Tags         events
// @Produce      json
// @Param        slug  path      string  true  "event slug"
// @Success      200   {object}  domain.Event
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{slug} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	slug := ctx.Param("slug")

	event, err := h.svc.GetEventBySlug(ctx.Request.Context(), middleware.Identity(ctx), slug)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEventBySlug -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "event details"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), middleware.Identity(ctx), req.ToDraft())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Only the organizer or an admin may update. Absent fields are kept.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        slug   path      string                      true  "event slug"
// @Param        input  body      request.UpdateEventRequest  true  "fields to change"
// @Success      200    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events/{slug} [put]
// @Security BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	eventID, respErr := h.eventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), middleware.Identity(ctx), eventID, req.ToPatch())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Only the organizer or an admin may delete. Interests go with it.
// @Tags         events
// @Produce      json
// @Param        slug  path      string  true  "event slug"
// @Success      200   {object}  response.MessageResponse
// @Failure      401   {object}  response.Err
// @Failure      403   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{slug} [delete]
// @Security BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, respErr := h.eventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), middleware.Identity(ctx), eventID); err != nil {
		err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "event"))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "Event deleted"})
}

func (h *EventHandler) eventID(ctx *gin.Context) (string, *response.Err) {
	id, err := h.svc.EventIDForSlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		err = fmt.Errorf("v1.eventID -> h.svc.EventIDForSlug -> %w", err)
		return "", response.FromServiceErr(err, "event")
	}

	return id, nil
}
