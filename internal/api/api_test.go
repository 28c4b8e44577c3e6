package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpgroster-go/internal/api"
	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/api/response"
	"github.com/mcoot/rpgroster-go/internal/factory"
	"github.com/mcoot/rpgroster-go/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		CharacterService: app.CharacterService,
		Clock:            app.Clock,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// envelope decodes a success envelope with data of type T
type envelope[T any] struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	Data         T                    `json:"data"`
	Pagination   *response.Pagination `json:"pagination"`
	DeletedCount *int                 `json:"deletedCount"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	assert.False(t, resp.Success)
	return resp
}

func (ts *testServer) register(t *testing.T, username, email string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.AuthData](t, rr).Data.Token
}

func (ts *testServer) createCharacter(t *testing.T, token string, body map[string]any) response.Character {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/characters", body, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Character](t, rr).Data
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Data.Status)
}

func TestBanner(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var banner response.Banner
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &banner))
	assert.Equal(t, "/api/characters", banner.Endpoints["characters"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.request(http.MethodGet, "/health", nil, "")
	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rpgroster_http_requests_total")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "Alice@X.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	registered := decode[response.AuthData](t, rr)
	assert.True(t, registered.Success)
	assert.NotEmpty(t, registered.Data.Token)
	assert.Equal(t, "alice@x.com", registered.Data.User.Email)
	assert.NotContains(t, rr.Body.String(), "secret1")

	// Login with the normalized email
	rr = ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.AuthData](t, rr)
	assert.Equal(t, registered.Data.User.ID, loggedIn.Data.User.ID)

	// Wrong password
	rr = ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "nope-nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)
}

func TestRegisterConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@x.com")

	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2", "email": "alice@x.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeEmailExists, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "other@x.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, decodeError(t, rr).Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"username": "alice", "email": "alice@x.com"}},
		{"bad email", map[string]string{"username": "alice", "email": "alice", "password": "secret1"}},
		{"short password", map[string]string{"username": "alice", "email": "alice@x.com", "password": "abc"}},
		{"short username", map[string]string{"username": "al", "email": "alice@x.com", "password": "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, apierr.CodeInvalidRequest, resp.Code)
	assert.Equal(t, "invalid request body", resp.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/characters"},
		{http.MethodPut, "/api/characters/c1"},
		{http.MethodDelete, "/api/characters/c1"},
		{http.MethodPost, "/api/characters/bulk-delete"},
		{http.MethodPost, "/api/characters/c1/level-up"},
		{http.MethodPost, "/api/characters/c1/add-experience"},
		{http.MethodPost, "/api/characters/battle"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := ts.request(route.method, route.path, map[string]any{}, "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)

			rr = ts.request(route.method, route.path, map[string]any{}, "not-a-jwt")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPatch, "/api/characters", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestCharacterCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")

	created := ts.createCharacter(t, token, map[string]any{
		"name":   "Mira",
		"class":  "mage",
		"rarity": "epic",
		"stats":  map[string]int{"health": 1, "attack": 2, "defense": 3, "speed": 4, "mana": 5},
		"skills": []string{"fireball"},
	})
	assert.Equal(t, response.Stats{Health: 1, Attack: 2, Defense: 3, Speed: 4, Mana: 5}, created.Stats)
	assert.Equal(t, "epic", created.Rarity)
	assert.NotEmpty(t, created.UserID)

	// Get is public
	rr := ts.request(http.MethodGet, "/api/characters/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Mira", decode[response.Character](t, rr).Data.Name)

	// Update
	rr = ts.request(http.MethodPut, "/api/characters/"+created.ID, map[string]any{
		"name":  "Mira the Wise",
		"stats": map[string]int{"mana": 99},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[response.Character](t, rr).Data
	assert.Equal(t, "Mira the Wise", updated.Name)
	assert.Equal(t, 99, updated.Stats.Mana)
	assert.Equal(t, 4, updated.Stats.Speed)
	assert.Equal(t, created.Version+1, updated.Version)

	// Invalid update
	rr = ts.request(http.MethodPut, "/api/characters/"+created.ID, map[string]any{"level": 0}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Delete returns the deleted character
	rr = ts.request(http.MethodDelete, "/api/characters/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[response.Character](t, rr).Data.ID)

	rr = ts.request(http.MethodGet, "/api/characters/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeCharacterNotFound, decodeError(t, rr).Code)
}

func TestCreateCharacterValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing class", map[string]any{"name": "Aria"}},
		{"unknown class", map[string]any{"name": "Aria", "class": "bard"}},
		{"short name", map[string]any{"name": "A", "class": "warrior"}},
		{"level out of range", map[string]any{"name": "Aria", "class": "warrior", "level": 101}},
		{"negative stat", map[string]any{"name": "Aria", "class": "warrior",
			"stats": map[string]int{"health": -1, "attack": 0, "defense": 0, "speed": 0, "mana": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/characters", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
		})
	}
}

func TestListCharactersPagination(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")

	classes := []string{"warrior", "mage", "archer", "assassin", "healer"}
	for i := range 12 {
		ts.createCharacter(t, token, map[string]any{
			"name":  fmt.Sprintf("Hero %02d", i),
			"class": classes[i%len(classes)],
			"level": i + 1,
		})
		ts.app.MockClock.Advance(1e9)
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		rr := ts.request(http.MethodGet, fmt.Sprintf("/api/characters?page=%d&limit=5&sortBy=level&sortOrder=asc", page), nil, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		env := decode[[]response.Character](t, rr)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, response.Pagination{CurrentPage: page, TotalPages: 3, TotalItems: 12, ItemsPerPage: 5}, *env.Pagination)
		for _, c := range env.Data {
			assert.False(t, seen[c.ID], "character %s appeared twice", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	// Filters
	rr := ts.request(http.MethodGet, "/api/characters?class=mage&minLevel=3", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	for _, c := range decode[[]response.Character](t, rr).Data {
		assert.Equal(t, "mage", c.Class)
		assert.GreaterOrEqual(t, c.Level, 3)
	}

	// Default order is newest first
	rr = ts.request(http.MethodGet, "/api/characters?limit=1", nil, "")
	assert.Equal(t, "Hero 11", decode[[]response.Character](t, rr).Data[0].Name)

	// Unknown sort field
	rr = ts.request(http.MethodGet, "/api/characters?sortBy=password", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListCharactersHugePagination(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")
	for i := range 5 {
		ts.createCharacter(t, token, map[string]any{"name": fmt.Sprintf("Hero %d", i), "class": "mage"})
	}

	for _, tt := range []struct {
		query string
		pages int
	}{
		{"page=4611686018427387904&limit=4", 2},
		{"page=3&limit=4611686018427387904", 1},
	} {
		rr := ts.request(http.MethodGet, "/api/characters?"+tt.query, nil, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		env := decode[[]response.Character](t, rr)
		assert.Empty(t, env.Data, tt.query)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, 5, env.Pagination.TotalItems)
		assert.Equal(t, tt.pages, env.Pagination.TotalPages)
	}

	rr := ts.request(http.MethodGet, "/api/characters?page=1&limit=9223372036854775807", nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode[[]response.Character](t, rr)
	assert.Len(t, env.Data, 5)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, response.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 5, ItemsPerPage: 9223372036854775807}, *env.Pagination)
}

func TestBulkDelete(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")

	a := ts.createCharacter(t, token, map[string]any{"name": "Aria", "class": "warrior"})
	b := ts.createCharacter(t, token, map[string]any{"name": "Bren", "class": "mage"})

	rr := ts.request(http.MethodPost, "/api/characters/bulk-delete", map[string]any{
		"ids": []string{a.ID, b.ID, "missing"},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode[any](t, rr)
	require.NotNil(t, env.DeletedCount)
	assert.Equal(t, 2, *env.DeletedCount)

	rr = ts.request(http.MethodPost, "/api/characters/bulk-delete", map[string]any{"ids": []string{}}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLevelUpAtMaxLevel(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")
	c := ts.createCharacter(t, token, map[string]any{"name": "Elder", "class": "healer", "level": 100})

	rr := ts.request(http.MethodPost, "/api/characters/"+c.ID+"/level-up", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeMaxLevel, decodeError(t, rr).Code)
}

func TestAddExperienceRejectsNonPositive(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")
	c := ts.createCharacter(t, token, map[string]any{"name": "Aria", "class": "warrior"})

	for _, amount := range []int{0, -10} {
		rr := ts.request(http.MethodPost, "/api/characters/"+c.ID+"/add-experience", map[string]int{"experience": amount}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestBattleRejectsSelf(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@x.com")
	c := ts.createCharacter(t, token, map[string]any{"name": "Aria", "class": "warrior"})

	rr := ts.request(http.MethodPost, "/api/characters/battle", map[string]string{"char1Id": c.ID, "char2Id": c.ID}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/characters/battle", map[string]string{"char1Id": c.ID, "char2Id": "missing"}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// Test: the documented end-to-end scenario
func TestEndToEndScenario(t *testing.T) {
	ts := newTestServer(t)

	// Register alice
	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	token := decode[response.AuthData](t, rr).Data.Token
	require.NotEmpty(t, token)

	// Duplicate email
	rr = ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2", "email": "alice@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// Warrior with class defaults
	aria := ts.createCharacter(t, token, map[string]any{"name": "Aria", "class": "warrior"})
	assert.Equal(t, response.Stats{Health: 150, Attack: 80, Defense: 90, Speed: 60, Mana: 30}, aria.Stats)
	assert.Equal(t, 1, aria.Level)
	assert.Equal(t, 0, aria.Experience)
	assert.Equal(t, "common", aria.Rarity)
	assert.True(t, aria.IsActive)

	// Level up
	rr = ts.request(http.MethodPost, "/api/characters/"+aria.ID+"/level-up", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	aria = decode[response.Character](t, rr).Data
	assert.Equal(t, 2, aria.Level)
	assert.Equal(t, response.Stats{Health: 165, Attack: 88, Defense: 99, Speed: 66, Mana: 33}, aria.Stats)

	// +250 xp at level 1 levels up exactly once
	bran := ts.createCharacter(t, token, map[string]any{"name": "Bran", "class": "warrior"})
	rr = ts.request(http.MethodPost, "/api/characters/"+bran.ID+"/add-experience", map[string]int{"experience": 250}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	bran = decode[response.Character](t, rr).Data
	assert.Equal(t, 2, bran.Level)
	assert.Equal(t, 0, bran.Experience)

	// Equal power: the second combatant wins
	rr = ts.request(http.MethodPost, "/api/characters/battle", map[string]string{
		"char1Id": aria.ID, "char2Id": bran.ID,
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	battle := decode[response.BattleData](t, rr).Data
	assert.Equal(t, bran.ID, battle.Winner.ID)
	assert.Equal(t, 100, battle.Winner.Experience)
	assert.Equal(t, aria.ID, battle.Loser.ID)

	// Leaderboard
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	board := decode[[]response.LeaderboardEntry](t, rr).Data
	require.Len(t, board, 1)
	assert.Equal(t, response.LeaderboardEntry{
		Rank: 1, CharacterID: bran.ID, Name: "Bran", Class: "warrior", Level: 2, Wins: 1, Losses: 0,
	}, board[0])
}

func TestDebugErrorsIncludeStack(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		CharacterService: app.CharacterService,
		Clock:            app.Clock,
		Debug:            true,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/characters/missing", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, decodeError(t, rr).Stack)
}
