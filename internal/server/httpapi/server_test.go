package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"github.com/dmitrijs2005/viewtube/internal/dbx"
	"github.com/dmitrijs2005/viewtube/internal/logging"
	"github.com/dmitrijs2005/viewtube/internal/server/auth"
	"github.com/dmitrijs2005/viewtube/internal/server/config"
	"github.com/dmitrijs2005/viewtube/internal/server/models"
	"github.com/dmitrijs2005/viewtube/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/viewtube/internal/server/services"
	"github.com/dmitrijs2005/viewtube/internal/server/storage"
)

const testOrigin = "https://app.example.com"

// memRepo is a minimal in-memory accounts.Repository for endpoint tests.
// Setting getErr makes GetByID fail, simulating a store outage.
type memRepo struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*models.Account
	getErr error
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*models.Account{}} }

func (m *memRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Username == a.Username || e.Email == a.Email {
			return nil, common.ErrorConflict
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("acc-%d", m.seq)
	a.CreatedAt = time.Now()
	clone := *a
	m.byID[a.ID] = &clone
	return a, nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *memRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Username == identifier || a.Email == identifier {
			clone := *a
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if token == nil {
		a.RefreshToken = nil
	} else {
		v := *token
		a.RefreshToken = &v
	}
	return nil
}

func (m *memRepo) UpdatePassword(ctx context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *memRepo) UpdateDetails(ctx context.Context, id string, fullName, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if fullName != "" {
		a.FullName = fullName
	}
	if email != "" {
		a.Email = email
	}
	clone := *a
	return &clone, nil
}

func (m *memRepo) UpdateAvatarURL(ctx context.Context, id string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.AvatarURL = url
	return nil
}

func (m *memRepo) UpdateCoverImageURL(ctx context.Context, id string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.CoverImageURL = url
	return nil
}

func (m *memRepo) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	a, err := m.GetByIdentifier(ctx, username)
	if err != nil {
		return nil, err
	}
	return &models.ChannelProfile{Username: a.Username, FullName: a.FullName, Email: a.Email, SubscriberCount: 3}, nil
}

func (m *memRepo) WatchHistory(ctx context.Context, accountID string) ([]*models.WatchEvent, error) {
	return []*models.WatchEvent{{VideoID: "v1", Title: "First", WatchedAt: time.Now()}}, nil
}

type memMedia struct{ seq int }

func (m *memMedia) Upload(ctx context.Context, upload storage.Upload) (string, error) {
	m.seq++
	return fmt.Sprintf("https://cdn.test/media/%d", m.seq), nil
}

func (m *memMedia) Delete(ctx context.Context, url string) error { return nil }

type testEnv struct {
	server   *Server
	handler  http.Handler
	sessions *services.SessionService
	codec    *auth.TokenCodec
	repo     *memRepo
	mock     sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	codec := auth.NewTokenCodec([]byte("access-secret"), []byte("refresh-secret"), time.Minute, time.Hour)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := newMemRepo()
	repoFor := func(dbx.DBTX) accounts.Repository { return repo }
	sessions := services.NewSessionService(db, repoFor, &memMedia{}, codec, logger)

	cfg := &config.Config{EndpointAddr: "localhost:0", CORSAllowedOrigin: testOrigin}
	srv := NewServer(cfg, logger, sessions, codec)

	return &testEnv{
		server:   srv,
		handler:  srv.Handler(),
		sessions: sessions,
		codec:    codec,
		repo:     repo,
		mock:     mock,
	}
}

func (e *testEnv) registerAndLogin(t *testing.T) *services.LoginResult {
	t.Helper()
	_, err := e.sessions.Register(context.Background(), services.RegisterInput{
		Username: "alice",
		FullName: "Alice Doe",
		Email:    "a@x.com",
		Password: "P@ss1",
		Avatar:   &storage.Upload{FileName: "a.png", ContentType: "image/png", Body: bytes.NewReader([]byte("x"))},
	})
	require.NoError(t, err)

	result, err := e.sessions.Login(context.Background(), "alice", "P@ss1")
	require.NoError(t, err)
	return result
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func decodeErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- register ---

func multipartRegisterBody(t *testing.T, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("fullName", "Alice Doe"))
	require.NoError(t, mw.WriteField("email", "a@x.com"))
	require.NoError(t, mw.WriteField("password", "P@ss1"))
	if withAvatar {
		fw, err := mw.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRegisterEndpoint(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartRegisterBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)

	w := e.do(req)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "User created successfully", env.Message)

	var view models.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "alice", view.Username)
	assert.NotEmpty(t, view.AvatarURL)
}

func TestRegisterEndpoint_MissingAvatar(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartRegisterBody(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)

	w := e.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeErrorEnvelope(t, w)
	assert.False(t, env.Success)
	assert.NotNil(t, env.Errors)
}

// --- login ---

func TestLoginEndpoint_SetsSecureCookies(t *testing.T) {
	e := newTestEnv(t)
	e.registerAndLogin(t)

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": "P@ss1"}))
	require.Equal(t, http.StatusOK, w.Code)

	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c := cookieByName(t, w, name)
		assert.True(t, c.HttpOnly, "%s must be httpOnly", name)
		assert.True(t, c.Secure, "%s must be secure", name)
		assert.NotEmpty(t, c.Value)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, cookieByName(t, w, accessTokenCookie).Value, data.AccessToken)
	assert.Equal(t, cookieByName(t, w, refreshTokenCookie).Value, data.RefreshToken)
}

func TestLoginEndpoint_ByEmailField(t *testing.T) {
	e := newTestEnv(t)
	e.registerAndLogin(t)

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"email": "a@x.com", "password": "P@ss1"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.registerAndLogin(t)

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": "wrong"}))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeErrorEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

func TestLoginEndpoint_UnknownUser(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "nobody", "password": "pw"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- auth guard ---

func TestGuard_MissingToken(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeErrorEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestGuard_GarbageToken(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := e.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuard_ExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	e.registerAndLogin(t)

	// Same secrets, already-expired validity.
	expiredCodec := auth.NewTokenCodec([]byte("access-secret"), []byte("refresh-secret"), -time.Minute, -time.Minute)
	token, err := expiredCodec.SignAccess("acc-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := e.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuard_RefreshTokenRejectedAsAccess(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Tokens.RefreshToken)
	w := e.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuard_SubjectGone(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	e.repo.mu.Lock()
	for id := range e.repo.byID {
		delete(e.repo.byID, id)
	}
	e.repo.mu.Unlock()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Tokens.AccessToken)
	w := e.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuard_StoreOutageIsNotACredentialFailure(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	e.repo.mu.Lock()
	e.repo.getErr = fmt.Errorf("%w: connection refused", common.ErrorUpstreamUnavailable)
	e.repo.mu.Unlock()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Tokens.AccessToken)
	w := e.do(req)

	// A valid token against an unreachable store is a 503, not a 401.
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decodeErrorEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusServiceUnavailable, env.StatusCode)
}

func TestMe_WithCookie(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var view models.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "alice", view.Username)

	// The envelope never carries credential material.
	lower := strings.ToLower(string(env.Data))
	assert.NotContains(t, lower, "password")
	assert.NotContains(t, lower, "refresh")
}

func TestMe_WithBearerHeader(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Tokens.AccessToken)
	w := e.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- refresh ---

func TestRefreshEndpoint_FromCookie(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: login.Tokens.RefreshToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	rotated := cookieByName(t, w, refreshTokenCookie)
	assert.NotEqual(t, login.Tokens.RefreshToken, rotated.Value)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestRefreshEndpoint_FromBody(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/refresh-token",
		map[string]string{"refreshToken": login.Tokens.RefreshToken}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshEndpoint_Replay(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()

	first := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	first.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: login.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, e.do(first).Code)

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: login.Tokens.RefreshToken})
	w := e.do(replay)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint_Missing(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- logout ---

func TestLogoutEndpoint_ClearsCookies(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c := cookieByName(t, w, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0, "%s must be expired", name)
	}

	// The stored refresh token is gone: the old one no longer refreshes.
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
	refresh := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refresh.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, e.do(refresh).Code)
}

// --- profile endpoints ---

func TestChangePasswordEndpoint(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := jsonRequest(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "P@ss1", "newPassword": "New#1"})
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, e.do(req).Code)

	w := e.do(jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": "New#1"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateDetailsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := jsonRequest(http.MethodPatch, "/api/v1/users/update-details",
		map[string]string{"fullName": "Alice Updated"})
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var view models.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Alice Updated", view.FullName)
}

func TestUpdateAvatarEndpoint(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "new.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/update-avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChannelEndpoint(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var profile models.ChannelProfile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(3), profile.SubscriberCount)
}

func TestWatchHistoryEndpoint(t *testing.T) {
	e := newTestEnv(t)
	login := e.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/watch-history", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: login.Tokens.AccessToken})
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var history []models.WatchEvent
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "v1", history[0].VideoID)
}

// --- cors ---

func TestCORS_AllowedOrigin(t *testing.T) {
	e := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "x", "password": "y"})
	req.Header.Set("Origin", testOrigin)
	w := e.do(req)

	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	e := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "x", "password": "y"})
	req.Header.Set("Origin", "https://evil.example.com")
	w := e.do(req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set("Origin", testOrigin)
	w := e.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}
