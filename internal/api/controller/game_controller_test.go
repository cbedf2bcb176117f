package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe-history/internal/api/middleware"
	"ctchen222/tictactoe-history/internal/api/response"
	"ctchen222/tictactoe-history/internal/api/service"
	"ctchen222/tictactoe-history/internal/session"
	"ctchen222/tictactoe-history/internal/telemetry"
	"ctchen222/tictactoe-history/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSession = "s1"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, store session.Store) *gin.Engine {
	t.Helper()
	metrics, err := telemetry.NewMetrics(nil)
	require.NoError(t, err)
	gc := NewGameController(service.NewGameService(store, nil, metrics))

	r := gin.New()
	r.SetHTMLTemplate(view.Templates())
	r.Use(func(c *gin.Context) {
		middleware.SetSessionID(c, testSession)
		c.Next()
	})
	r.GET("/", gc.Page)
	r.POST("/squares/:index", gc.PlaySquare)
	r.POST("/history/:step", gc.JumpTo)
	r.GET("/api/game", gc.GetGame)
	r.POST("/api/game/squares/:index", gc.PlaySquareJSON)
	r.POST("/api/game/history/:step", gc.JumpToJSON)
	r.DELETE("/api/game", gc.ResetGame)
	return r
}

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Extras  json.RawMessage `json:"extras"`
}

func decodeGame(t *testing.T, w *httptest.ResponseRecorder) view.Game {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	var v view.Game
	require.NoError(t, json.Unmarshal(env.Extras, &v))
	return v
}

func TestGameController_Page(t *testing.T) {
	r := newRouter(t, session.NewMemoryStore(time.Hour))

	w := do(r, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "Go to game start")
	assert.Equal(t, 9, strings.Count(body, `class="square"`))
}

func TestGameController_FormPostsRedirect(t *testing.T) {
	r := newRouter(t, session.NewMemoryStore(time.Hour))

	for _, target := range []string{"/squares/4", "/squares/0", "/history/1", "/squares/oops"} {
		w := do(r, http.MethodPost, target)
		assert.Equal(t, http.StatusSeeOther, w.Code, target)
		assert.Equal(t, "/", w.Header().Get("Location"), target)
	}

	body := do(r, http.MethodGet, "/").Body.String()
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, "Go to move #2")
}

func TestGameController_JSON(t *testing.T) {
	r := newRouter(t, session.NewMemoryStore(time.Hour))

	w := do(r, http.MethodPost, "/api/game/squares/4")
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeGame(t, w)
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "X", v.Board.Rows[1][1].Value)
	assert.Equal(t, "O", v.Next)

	// occupied and out-of-range cells leave the game unchanged
	for _, target := range []string{"/api/game/squares/4", "/api/game/squares/12", "/api/game/history/7"} {
		w = do(r, http.MethodPost, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, 1, decodeGame(t, w).Step, target)
	}

	v = decodeGame(t, do(r, http.MethodPost, "/api/game/history/0"))
	assert.Equal(t, 0, v.Step)
	assert.Len(t, v.Moves, 2)
	assert.True(t, v.Moves[0].Current)

	v = decodeGame(t, do(r, http.MethodGet, "/api/game"))
	assert.Equal(t, "Next player: X", v.Status)

	v = decodeGame(t, do(r, http.MethodDelete, "/api/game"))
	assert.Len(t, v.Moves, 1)
}

func TestGameController_BadParams(t *testing.T) {
	r := newRouter(t, session.NewMemoryStore(time.Hour))

	for _, target := range []string{"/api/game/squares/x", "/api/game/history/1.5"} {
		w := do(r, http.MethodPost, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	}
}

func TestGameController_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := session.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), testSession).Return(nil, errors.New("connection refused")).AnyTimes()
	store.EXPECT().Update(gomock.Any(), testSession, gomock.Any()).Return(nil, errors.New("connection refused")).AnyTimes()
	r := newRouter(t, store)

	w := do(r, http.MethodGet, "/api/game")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/api/game/squares/0").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/squares/0").Code)
}
