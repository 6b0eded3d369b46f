package game

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	GALLERY_DEFAULT_LIMIT = 24
	GALLERY_MAX_LIMIT     = 50
	LEADERBOARD_LIMIT     = 20
	READ_TIMEOUT          = 3 * time.Second
)

type GameHandler struct {
	registry      *Registry
	gallery       GalleryReader
	leaderboard   LeaderboardReader
	tickerCreator PeriodicTickerChannelCreator
	upgrader      websocket.Upgrader
	pumps         sync.WaitGroup
}

// NewGameHandler wires the HTTP surface. gallery and leaderboard may be nil
// when no store is configured.
func NewGameHandler(registry *Registry, gallery GalleryReader, leaderboard LeaderboardReader, tickerCreator PeriodicTickerChannelCreator) *GameHandler {
	return &GameHandler{
		registry:      registry,
		gallery:       gallery,
		leaderboard:   leaderboard,
		tickerCreator: tickerCreator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the server middleware before this runs.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *GameHandler) WebsocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	socket := NewWebsocketConnection(conn)
	player := NewPlayer(uuid.NewString())
	log.Debug().Str("player", player.id).Str("ip", ctx.ClientIP()).Msg("player connected")

	h.pumps.Go(func() { player.WritePump(socket, h.tickerCreator.Create(PING_INTERVAL)) })
	h.pumps.Go(func() { player.ReadPump(socket, h.registry) })
}

func (h *GameHandler) AvatarsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, Avatars())
}

func (h *GameHandler) ModesHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, Modes())
}

func (h *GameHandler) StatsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.registry.Stats())
}

func (h *GameHandler) GalleryHandler(ctx *gin.Context) {
	limit := GALLERY_DEFAULT_LIMIT
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-limit"})
			return
		}
		limit = min(n, GALLERY_MAX_LIMIT)
	}
	if h.gallery == nil {
		ctx.JSON(http.StatusOK, []any{})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), READ_TIMEOUT)
	defer cancel()
	drawings, err := h.gallery.RecentDrawings(reqCtx, limit)
	if err != nil {
		log.Warn().Err(err).Msg("gallery read failed")
		ctx.JSON(http.StatusOK, []any{})
		return
	}
	ctx.JSON(http.StatusOK, drawings)
}

func (h *GameHandler) LeaderboardHandler(ctx *gin.Context) {
	if h.leaderboard == nil {
		ctx.JSON(http.StatusOK, []any{})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), READ_TIMEOUT)
	defer cancel()
	scores, err := h.leaderboard.TopScores(reqCtx, LEADERBOARD_LIMIT)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard read failed")
		ctx.JSON(http.StatusOK, []any{})
		return
	}
	ctx.JSON(http.StatusOK, scores)
}

// Wait blocks until every connection pump returned or ctx expires.
func (h *GameHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
