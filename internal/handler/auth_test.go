package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
	"github.com/iliyamo/parking-spot-reservation/internal/utils"
)

type fakeUsers struct {
	byID map[uint64]repository.User
}

func (f *fakeUsers) Create(context.Context, string, string, string, string, int) (uint64, error) {
	return 0, errors.New("not used")
}

func (f *fakeUsers) GetByUsername(context.Context, string) (repository.User, error) {
	return repository.User{}, errors.New("not used")
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (repository.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return repository.User{}, errors.New("no such user")
	}
	return u, nil
}

// fakeTokens keeps active token hashes in a map and can be made to fail
// revocations.
type fakeTokens struct {
	active    map[string]uint64
	revokeErr error
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.active[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := f.active[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if _, ok := f.active[hash]; !ok {
		return repository.ErrTokenInvalid
	}
	delete(f.active, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, uid := range f.active {
		if uid == userID {
			delete(f.active, h)
		}
	}
	return nil
}

func newAuthFixture(tokens *fakeTokens) *AuthHandler {
	return NewAuthHandler(
		config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4},
		&fakeUsers{byID: map[uint64]repository.User{7: {ID: 7, Username: "asha", Email: "asha@example.com", Role: "user"}}},
		tokens,
	)
}

func postRefresh(h *AuthHandler, raw string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	body := `{"refresh_token":"` + raw + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Refresh(e.NewContext(req, rec))
}

func TestRefreshRotatesToken(t *testing.T) {
	tokens := &fakeTokens{active: map[string]uint64{}}
	h := newAuthFixture(tokens)

	raw := "old-refresh-token"
	tokens.active[utils.HashRefreshRaw(raw)] = 7

	rec, err := postRefresh(h, raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Refresh.Token)

	// old token is gone, exactly the new one remains
	_, ok := tokens.active[utils.HashRefreshRaw(raw)]
	assert.False(t, ok, "rotated token must be revoked")
	assert.Len(t, tokens.active, 1)
	_, ok = tokens.active[utils.HashRefreshRaw(resp.Refresh.Token)]
	assert.True(t, ok)
}

func TestRefreshFailsWhenRevokeFails(t *testing.T) {
	tokens := &fakeTokens{active: map[string]uint64{}, revokeErr: errors.New("db down")}
	h := newAuthFixture(tokens)

	raw := "old-refresh-token"
	tokens.active[utils.HashRefreshRaw(raw)] = 7

	rec, err := postRefresh(h, raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// no new token issued while the old one could not be revoked
	assert.Len(t, tokens.active, 1)
}

func TestRefreshLostRaceReadsAsInvalid(t *testing.T) {
	tokens := &fakeTokens{active: map[string]uint64{}, revokeErr: repository.ErrTokenInvalid}
	h := newAuthFixture(tokens)

	raw := "old-refresh-token"
	tokens.active[utils.HashRefreshRaw(raw)] = 7

	rec, err := postRefresh(h, raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, tokens.active, 1)
}
