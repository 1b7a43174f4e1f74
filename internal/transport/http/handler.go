package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cwrk-planet/watch-party/internal/domain"
	httpmw "github.com/cwrk-planet/watch-party/internal/transport/http/middleware"
	"github.com/cwrk-planet/watch-party/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type RoomService interface {
	CreateRoom(ctx context.Context, creatorID domain.UserID) (*domain.RoomDetail, error)
	GetActiveRoom(ctx context.Context, code string) (*domain.RoomDetail, error)
	JoinRoom(ctx context.Context, code string, userID domain.UserID) (*domain.RoomDetail, error)
	CloseRoom(ctx context.Context, code string, requesterID domain.UserID) error
}

type Handler struct {
	roomSvc RoomService
}

func NewHandler(roomSvc RoomService) *Handler {
	return &Handler{roomSvc: roomSvc}
}

// POST /api/watch-party
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	p, _ := httpmw.PrincipalFromCtx(r.Context())

	d, err := h.roomSvc.CreateRoom(r.Context(), p.UserID)
	if err != nil {
		h.fail(w, r, "CreateRoom", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, toRoomResponse(d))
}

// GET /api/watch-party/{roomCode}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	d, err := h.roomSvc.GetActiveRoom(r.Context(), roomCode(r))
	if err != nil {
		h.fail(w, r, "GetRoom", err)
		return
	}
	httputil.JSON(w, http.StatusOK, toRoomResponse(d))
}

// POST /api/watch-party/{roomCode}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	p, _ := httpmw.PrincipalFromCtx(r.Context())

	d, err := h.roomSvc.JoinRoom(r.Context(), roomCode(r), p.UserID)
	if err != nil {
		h.fail(w, r, "JoinRoom", err)
		return
	}
	httputil.JSON(w, http.StatusOK, toRoomResponse(d))
}

// DELETE /api/watch-party/{roomCode}
func (h *Handler) CloseRoom(w http.ResponseWriter, r *http.Request) {
	p, _ := httpmw.PrincipalFromCtx(r.Context())

	if err := h.roomSvc.CloseRoom(r.Context(), roomCode(r), p.UserID); err != nil {
		h.fail(w, r, "CloseRoom", err)
		return
	}
	httputil.Message(w, http.StatusOK, "Watch party closed")
}

func roomCode(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "roomCode"))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("handler."+op, httputil.RequestIDAttr(r.Context()), slog.Any("err", err))
	} else {
		slog.Debug("handler."+op, httputil.RequestIDAttr(r.Context()), slog.Any("err", err))
	}
	httputil.Error(w, status, msg)
}

// statusFor is the single place domain errors become HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound, "Watch party not found or inactive"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Only the creator can close the watch party"
	case errors.Is(err, domain.ErrRoomCodeExhausted):
		return http.StatusInternalServerError, "Failed to generate room code"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
