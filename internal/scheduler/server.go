package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/api/respond"
	"github.com/mox-desktop/moxnotify/internal/model"
)

// Handler exposes the scheduler RPC surface: the streaming Notify
// endpoint plus the unary lifecycle and viewport calls.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(s *Service, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Router wires the scheduler endpoints.
func Router(h *Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")

	api.GET("/notify", h.Notify)
	api.POST("/notification_closed", h.NotificationClosed)
	api.POST("/action_invoked", h.ActionInvoked)
	api.GET("/viewport", h.GetViewport)
	api.DELETE("/viewport", h.ForgetViewport)
	api.POST("/view", h.View)
	api.POST("/pause", h.Pause)

	return e
}

// Notify upgrades the connection and streams notifications, closes and
// viewport updates to the viewer until it goes away.
func (h *Handler) Notify(c *ginext.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to accept viewer session")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := c.Request.Context()

	var req model.ClientNotifyRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to read viewer registration")
		return
	}
	if req.MaxVisible <= 0 {
		req.MaxVisible = 5
	}

	clientID := req.ClientID
	if clientID == "" {
		// Peer-derived ids do not survive reconnects; viewers that want
		// stable state pass their own token.
		clientID = c.Request.RemoteAddr
	}

	zlog.Logger.Info().Str("client", clientID).Int("max_visible", req.MaxVisible).Bool("history", req.History).Msg("viewer connected")

	state := h.service.store.Load(ctx, clientID, req.MaxVisible)
	state.Range.MaxVisible = req.MaxVisible

	session := newViewerSession(clientID, req.History, state)
	h.service.register(session)
	session.run(ctx, h.service, conn)

	h.service.saveState(ctx, session)
	zlog.Logger.Info().Str("client", clientID).Msg("viewer disconnected")
}

type notificationClosedRequest struct {
	ID     uint32 `json:"id" validate:"required"`
	UUID   string `json:"uuid" validate:"required"`
	Reason uint32 `json:"reason"`
}

func (h *Handler) NotificationClosed(c *ginext.Context) {
	var req notificationClosedRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	ev := model.NotificationClosed{ID: req.ID, UUID: req.UUID, Reason: model.NormalizeReason(req.Reason)}
	if err := h.service.NotificationClosed(c.Request.Context(), ev); err != nil {
		zlog.Logger.Error().Err(err).Uint32("id", req.ID).Msg("failed to record notification close")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "recorded")
}

type actionInvokedRequest struct {
	ID              uint32 `json:"id" validate:"required"`
	UUID            string `json:"uuid" validate:"required"`
	ActionKey       string `json:"action_key" validate:"required"`
	ActivationToken string `json:"activation_token"`
}

func (h *Handler) ActionInvoked(c *ginext.Context) {
	var req actionInvokedRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	ev := model.ActionInvoked{ID: req.ID, UUID: req.UUID, ActionKey: req.ActionKey, ActivationToken: req.ActivationToken}
	if err := h.service.ActionInvoked(c.Request.Context(), ev); err != nil {
		zlog.Logger.Error().Err(err).Uint32("id", req.ID).Msg("failed to record action")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "recorded")
}

func (h *Handler) GetViewport(c *ginext.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing client_id"))
		return
	}

	state, err := h.service.Viewport(clientID)
	if err != nil {
		if errors.Is(err, ErrUnknownViewer) {
			respond.Fail(c.Writer, http.StatusNotFound, err)
			return
		}
		zlog.Logger.Error().Err(err).Str("client", clientID).Msg("failed to load viewport")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, state)
}

// ForgetViewport discards the saved view state for a client id.
func (h *Handler) ForgetViewport(c *ginext.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing client_id"))
		return
	}

	h.service.Forget(c.Request.Context(), clientID)
	respond.OK(c.Writer, "forgotten")
}

type viewRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	ViewOp
}

func (h *Handler) View(c *ginext.Context) {
	var req viewRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	if err := h.service.ViewOp(req.ClientID, req.ViewOp); err != nil {
		if errors.Is(err, ErrUnknownViewer) {
			respond.Fail(c.Writer, http.StatusNotFound, err)
			return
		}
		respond.Fail(c.Writer, http.StatusServiceUnavailable, err)
		return
	}

	respond.OK(c.Writer, "queued")
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (h *Handler) Pause(c *ginext.Context) {
	var req pauseRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	h.service.SetPaused(req.Paused)
	respond.OK(c.Writer, "ok")
}
