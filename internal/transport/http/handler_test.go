package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/errs"
	transporthttp "github.com/cwrk-planet/watch-party/internal/transport/http"
	"github.com/cwrk-planet/watch-party/internal/transport/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRoomService struct{ mock.Mock }

func (m *mockRoomService) CreateRoom(ctx context.Context, creatorID domain.UserID) (*domain.RoomDetail, error) {
	args := m.Called(ctx, creatorID)
	d, _ := args.Get(0).(*domain.RoomDetail)
	return d, args.Error(1)
}

func (m *mockRoomService) GetActiveRoom(ctx context.Context, code string) (*domain.RoomDetail, error) {
	args := m.Called(ctx, code)
	d, _ := args.Get(0).(*domain.RoomDetail)
	return d, args.Error(1)
}

func (m *mockRoomService) JoinRoom(ctx context.Context, code string, userID domain.UserID) (*domain.RoomDetail, error) {
	args := m.Called(ctx, code, userID)
	d, _ := args.Get(0).(*domain.RoomDetail)
	return d, args.Error(1)
}

func (m *mockRoomService) CloseRoom(ctx context.Context, code string, requesterID domain.UserID) error {
	return m.Called(ctx, code, requesterID).Error(0)
}

// tokenVerifier accepts tokens of the form "user-<id>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(token string) (domain.Principal, error) {
	var id int64
	if _, err := fmt.Sscanf(token, "user-%d", &id); err != nil {
		return domain.Principal{}, errs.ErrInvalidToken
	}
	return domain.Principal{UserID: domain.UserID(id), Email: fmt.Sprintf("u%d@example.com", id)}, nil
}

func newTestRouter(svc *mockRoomService) http.Handler {
	registry, hub := ws.NewRegistry(), ws.NewHub()
	gw := ws.NewGateway(ws.GatewayConfig{}, tokenVerifier{}, registry, hub, ws.NewProtocol(registry, hub, nil, nil))
	return transporthttp.NewRouter(
		transporthttp.RouterConfig{AllowedOrigins: []string{"*"}},
		transporthttp.NewHandler(svc),
		tokenVerifier{},
		gw,
	)
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleDetail() *domain.RoomDetail {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	name := "Alice"
	alice := domain.UserSummary{ID: 1, Email: "alice@example.com", DisplayName: &name}
	return &domain.RoomDetail{
		Room: domain.Room{
			ID:        "5b0c5d7e-0000-4000-8000-000000000001",
			RoomCode:  "0A1B2C3D",
			IsActive:  true,
			CreatorID: 1,
			CreatedAt: created,
			Creator:   alice,
		},
		Members: []domain.Member{{ID: 10, UserID: 1, JoinedAt: created, User: alice}},
	}
}

func TestCreateRoom(t *testing.T) {
	svc := &mockRoomService{}
	svc.On("CreateRoom", mock.Anything, domain.UserID(1)).Return(sampleDetail(), nil)

	rec := do(t, newTestRouter(svc), http.MethodPost, "/api/watch-party", "user-1")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"id": "5b0c5d7e-0000-4000-8000-000000000001",
		"roomCode": "0A1B2C3D",
		"isActive": true,
		"createdAt": "2026-03-01T12:00:00Z",
		"creator": {"id": 1, "email": "alice@example.com", "displayName": "Alice"},
		"members": [{"id": 10, "joinedAt": "2026-03-01T12:00:00Z", "user": {"id": 1, "email": "alice@example.com", "displayName": "Alice"}}],
		"currentVideoId": null
	}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	svc.AssertExpectations(t)
}

func TestAuthRequired(t *testing.T) {
	svc := &mockRoomService{}
	router := newTestRouter(svc)

	tests := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/api/watch-party", ""},
		{http.MethodPost, "/api/watch-party", "garbage"},
		{http.MethodPost, "/api/watch-party/0A1B2C3D/join", ""},
		{http.MethodDelete, "/api/watch-party/0A1B2C3D", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
	svc.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestGetRoom_IsPublic(t *testing.T) {
	svc := &mockRoomService{}
	svc.On("GetActiveRoom", mock.Anything, "0A1B2C3D").Return(sampleDetail(), nil)

	rec := do(t, newTestRouter(svc), http.MethodGet, "/api/watch-party/0A1B2C3D", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"roomCode":"0A1B2C3D"`)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing room", domain.ErrRoomNotFound, http.StatusNotFound, "Watch party not found or inactive"},
		{"unknown user", fmt.Errorf("userRepo.Get: %w", domain.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"codes exhausted", domain.ErrRoomCodeExhausted, http.StatusInternalServerError, "Failed to generate room code"},
		{"anything else", errors.New("pool closed"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRoomService{}
			svc.On("JoinRoom", mock.Anything, "0A1B2C3D", domain.UserID(2)).Return(nil, tt.err)

			rec := do(t, newTestRouter(svc), http.MethodPost, "/api/watch-party/0A1B2C3D/join", "user-2")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), rec.Body.String())
		})
	}
}

func TestCloseRoom(t *testing.T) {
	t.Run("creator", func(t *testing.T) {
		svc := &mockRoomService{}
		svc.On("CloseRoom", mock.Anything, "0A1B2C3D", domain.UserID(1)).Return(nil)

		rec := do(t, newTestRouter(svc), http.MethodDelete, "/api/watch-party/0A1B2C3D", "user-1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Watch party closed"}`, rec.Body.String())
	})

	t.Run("not the creator", func(t *testing.T) {
		svc := &mockRoomService{}
		svc.On("CloseRoom", mock.Anything, "0A1B2C3D", domain.UserID(2)).Return(domain.ErrForbidden)

		rec := do(t, newTestRouter(svc), http.MethodDelete, "/api/watch-party/0A1B2C3D", "user-2")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Only the creator can close the watch party"}`, rec.Body.String())
	})
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(&mockRoomService{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}
