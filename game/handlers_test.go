package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func serve(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h(ctx)
	return w
}

func TestStaticHandlers(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	h := NewGameHandler(newTestRegistry(t, RegistryOptions{}), nil, nil, nil)

	w := serve(h.AvatarsHandler, "/api/avatars")
	assert.Equal(t, http.StatusOK, w.Code)
	var avatars []Avatar
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avatars))
	assert.Len(t, avatars, 12)
	assert.Equal(t, Avatar{Id: 0, Name: "Turban", Color: "#ff6b2b"}, avatars[0])

	w = serve(h.ModesHandler, "/api/modes")
	assert.Equal(t, http.StatusOK, w.Code)
	var modes map[string]Mode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &modes))
	assert.Equal(t, 30, modes["speed"].TurnTime)
	assert.Equal(t, 4, modes["speed"].Rounds)
	assert.Equal(t, "Bollywood", modes["bollywood"].Label)

	w = serve(h.StatsHandler, "/api/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":0,"publicRooms":0,"players":0,"gamesStarted":0}`, w.Body.String())
}

func TestGalleryHandler(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	drawing := domain.Drawing{
		Word:       "Rangoli",
		DrawerName: "Aarav",
		Strokes:    []domain.Stroke{{Type: "fill", X: 0.5, Y: 0.5, Color: "#ff4f9a"}},
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name         string
		target       string
		setupMocks   func(g *MockGallery)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "default limit",
			target: "/api/gallery",
			setupMocks: func(g *MockGallery) {
				g.On("RecentDrawings", mock.Anything, GALLERY_DEFAULT_LIMIT).Return([]domain.Drawing{drawing}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"word":"Rangoli","drawerName":"Aarav","strokes":[{"type":"fill","x1":0,"y1":0,"x2":0,"y2":0,"x":0.5,"y":0.5,"color":"#ff4f9a"}],"createdAt":"2026-03-01T12:00:00Z"}]`,
		},
		{
			name:   "limit is capped",
			target: "/api/gallery?limit=500",
			setupMocks: func(g *MockGallery) {
				g.On("RecentDrawings", mock.Anything, GALLERY_MAX_LIMIT).Return([]domain.Drawing{}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "invalid limit",
			target:       "/api/gallery?limit=abc",
			setupMocks:   func(g *MockGallery) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid-limit"}`,
		},
		{
			name:         "negative limit",
			target:       "/api/gallery?limit=-3",
			setupMocks:   func(g *MockGallery) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid-limit"}`,
		},
		{
			name:   "store failure degrades to empty",
			target: "/api/gallery?limit=5",
			setupMocks: func(g *MockGallery) {
				g.On("RecentDrawings", mock.Anything, 5).Return([]domain.Drawing(nil), assert.AnError).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gallery := &MockGallery{}
			tc.setupMocks(gallery)
			h := NewGameHandler(nil, gallery, nil, nil)

			w := serve(h.GalleryHandler, tc.target)

			assert.Equal(t, tc.expectedCode, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
			gallery.AssertExpectations(t)
		})
	}

	t.Run("no store configured", func(t *testing.T) {
		t.Parallel()
		h := NewGameHandler(nil, nil, nil, nil)
		w := serve(h.GalleryHandler, "/api/gallery")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestLeaderboardHandler(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	t.Run("top scores", func(t *testing.T) {
		t.Parallel()
		scores := &MockScores{}
		entries := []domain.ScoreEntry{
			{DisplayName: "Bela", Score: 1200, Mode: "speed", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		}
		scores.On("TopScores", mock.Anything, LEADERBOARD_LIMIT).Return(entries, nil).Once()
		h := NewGameHandler(nil, nil, scores, nil)

		w := serve(h.LeaderboardHandler, "/api/leaderboard")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"displayName":"Bela","score":1200,"mode":"speed","createdAt":"2026-03-01T00:00:00Z"}]`, w.Body.String())
		scores.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		scores := &MockScores{}
		scores.On("TopScores", mock.Anything, LEADERBOARD_LIMIT).Return([]domain.ScoreEntry(nil), assert.AnError).Once()
		h := NewGameHandler(nil, nil, scores, nil)

		w := serve(h.LeaderboardHandler, "/api/leaderboard")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("no store configured", func(t *testing.T) {
		t.Parallel()
		h := NewGameHandler(nil, nil, nil, nil)
		w := serve(h.LeaderboardHandler, "/api/leaderboard")
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestWebsocketHandler_Integration(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tickerCreator := &MockPeriodicTickerChannelCreator{}
	tickerCreator.On("Create", PING_INTERVAL).Return(make(chan time.Time))
	reg := newTestRegistry(t, RegistryOptions{})
	h := NewGameHandler(reg, nil, nil, tickerCreator)

	router := gin.New()
	router.GET("/ws", h.WebsocketHandler)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"createRoom","data":{"playerName":"Aarav","avatarId":2,"mode":"food"}}`))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Event string `json:"event"`
		Data  struct {
			Code    string       `json:"code"`
			Mode    string       `json:"mode"`
			Players []PlayerInfo `json:"players"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EVENT_ROOM_CREATED, ev.Event)
	assert.Equal(t, "food", ev.Data.Mode)
	require.Len(t, ev.Data.Players, 1)
	assert.Equal(t, "Aarav", ev.Data.Players[0].Name)
	assert.Equal(t, 2, ev.Data.Players[0].AvatarId)
	require.Eventually(t, func() bool { return reg.Stats().Players == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return reg.Stats().Rooms == 0 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, h.Wait(ctx))
}
