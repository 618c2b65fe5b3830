package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/internal/fruits"
	"github.com/iump/fruittree-backend/internal/pets"
	"github.com/iump/fruittree-backend/internal/rewards"
	"github.com/iump/fruittree-backend/internal/users"
	pkgAuth "github.com/iump/fruittree-backend/pkg/auth"
	"github.com/iump/fruittree-backend/pkg/config"
	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBasket struct {
	returned uuid.UUID
}

func (s *stubBasket) Place(_ context.Context, _ uuid.UUID, color enums.FruitColor, pos basket.Position) (basket.PlacementRecord, error) {
	return basket.PlacementRecord{ID: uuid.New(), Color: color, Position: pos}, nil
}

func (s *stubBasket) Return(_ context.Context, _ uuid.UUID, placementID uuid.UUID) (enums.FruitColor, error) {
	s.returned = placementID
	return enums.FruitColorGreen, nil
}

func (s *stubBasket) Snapshot(context.Context, uuid.UUID) (basket.Snapshot, error) {
	return basket.Snapshot{}, nil
}

func (s *stubBasket) Credit(context.Context, uuid.UUID, enums.FruitColor, basket.CreditFunc) (bool, error) {
	return true, nil
}

type stubPets struct{}

func (stubPets) ApplyAndGet(_ context.Context, _ uuid.UUID, now time.Time) (pets.PetStateDTO, error) {
	return pets.PetStateDTO{Hunger: 100, Thirst: 100, LastUpdate: now}, nil
}

func (stubPets) Update(_ context.Context, _ uuid.UUID, _ pets.UpdateInput, now time.Time) (pets.PetStateDTO, error) {
	return pets.PetStateDTO{Hunger: 100, Thirst: 100, LastUpdate: now}, nil
}

type stubRewards struct{}

func (stubRewards) IssueReward(context.Context, rewards.IssueInput) (rewards.IssueResult, error) {
	return rewards.IssueResult{Issued: true}, nil
}

func (stubRewards) History(context.Context, uuid.UUID, string, int) (rewards.HistoryPage, error) {
	return rewards.HistoryPage{Items: []rewards.AwardDTO{}}, nil
}

type stubUsers struct{}

func (stubUsers) Provision(_ context.Context, id uuid.UUID, name string) (users.ProvisionResult, error) {
	return users.ProvisionResult{Account: users.AccountDTO{ID: id, DisplayName: name}, Created: true}, nil
}

func (stubUsers) Get(context.Context, uuid.UUID) (users.AccountDTO, error) {
	return users.AccountDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "fruittree"},
	}
}

func newTestRouter(t *testing.T, b *stubBasket) http.Handler {
	t.Helper()
	return NewRouter(
		testConfig(),
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		nil,
		nil,
		nil,
		fruits.Default(),
		b,
		stubPets{},
		stubRewards{},
		stubUsers{},
		promhttp.Handler(),
	)
}

func bearer(t *testing.T, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t, &stubBasket{})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/public/ping", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/fruits", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/metrics", "", "").Code)
}

func TestPrivateRoutesRejectMissingJWT(t *testing.T) {
	h := newTestRouter(t, &stubBasket{})
	for _, path := range []string{"/api/v1/basket", "/api/v1/pet", "/api/v1/rewards", "/api/v1/ping"} {
		assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, path, "", "").Code, path)
	}
}

func TestPrivateRoutesSucceedWithJWT(t *testing.T) {
	h := newTestRouter(t, &stubBasket{})
	auth := bearer(t, enums.RoleStudent)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/basket", auth, "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/pet", auth, "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPatch, "/api/v1/pet", auth, `{"hunger":50}`).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/rewards", auth, "").Code)
	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/api/v1/basket/placements", auth, `{"color":"green","position":[0,1,2]}`).Code)
}

func TestReturnRoutesPlacementID(t *testing.T) {
	b := &stubBasket{}
	h := newTestRouter(t, b)
	id := uuid.New()

	resp := serve(h, http.MethodDelete, "/api/v1/basket/placements/"+id.String(), bearer(t, enums.RoleStudent), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, b.returned)
}

func TestAdminRewardsRequireTeacherOrAdmin(t *testing.T) {
	h := newTestRouter(t, &stubBasket{})
	body := `{"user_id":"` + uuid.NewString() + `","color":"gold","reason":"perfect attendance"}`

	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPost, "/api/v1/admin/rewards", bearer(t, enums.RoleStudent), body).Code)
	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/api/v1/admin/rewards", bearer(t, enums.RoleTeacher), body).Code)
	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/api/v1/admin/rewards", bearer(t, enums.RoleAdmin), body).Code)
}

func TestAdminAccountsRequireAdmin(t *testing.T) {
	h := newTestRouter(t, &stubBasket{})
	body := `{"id":"` + uuid.NewString() + `","display_name":"Ana"}`

	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPost, "/api/v1/admin/accounts", bearer(t, enums.RoleTeacher), body).Code)
	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/api/v1/admin/accounts", bearer(t, enums.RoleAdmin), body).Code)
}
