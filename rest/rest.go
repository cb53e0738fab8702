package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"pokerlens.com/tracker/stats"
	"pokerlens.com/tracker/store"
	"pokerlens.com/tracker/tracker"
)

var restLogger = log.With().Str("logger_name", "rest::rest").Logger()

//
// APP error definition
//
type appError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type playerNoteRequest struct {
	PlayerName string `json:"playerName" binding:"required"`
	Note       string `json:"note"`
}

// Server exposes the HUD's read API: live table status, player stats,
// and player notes.
type Server struct {
	manager    *tracker.Manager
	aggregator *stats.Aggregator
	store      *store.Store
}

func NewServer(manager *tracker.Manager, aggregator *stats.Aggregator, handStore *store.Store) *Server {
	return &Server{
		manager:    manager,
		aggregator: aggregator,
		store:      handStore,
	}
}

// Run blocks serving the REST API.
func (s *Server) Run(addr string) error {
	r := gin.Default()

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/tables", s.tables)
	r.GET("/player-stats", s.playerStats)
	r.GET("/player-notes", s.getPlayerNote)
	r.POST("/player-notes", s.setPlayerNote)
	r.POST("/rebuild-stats", s.rebuildStats)

	return r.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) tables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.manager.ActiveTables()})
}

func (s *Server) playerStats(c *gin.Context) {
	playerName := c.Query("player")
	if playerName == "" {
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: "player query parameter is required",
		})
		return
	}

	playerStats, err := s.aggregator.GetPlayerStats(c.Request.Context(), playerName)
	if err != nil {
		restLogger.Error().Msgf("Unable to load stats for player [%s]: %v", playerName, err)
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to load player stats",
		})
		return
	}
	c.JSON(http.StatusOK, playerStats)
}

func (s *Server) getPlayerNote(c *gin.Context) {
	playerName := c.Query("player")
	if playerName == "" {
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: "player query parameter is required",
		})
		return
	}

	player, err := s.store.GetPlayer(c.Request.Context(), playerName)
	if err != nil {
		c.IndentedJSON(http.StatusNotFound, appError{
			Code:    http.StatusNotFound,
			Message: "Player not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"playerName": player.Name, "note": player.Notes})
}

func (s *Server) setPlayerNote(c *gin.Context) {
	var request playerNoteRequest
	err := c.BindJSON(&request)
	if err != nil {
		restLogger.Error().Msgf("Failed to parse player note request: %v", err)
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	err = s.store.SetPlayerNote(c.Request.Context(), request.PlayerName, request.Note)
	if err != nil {
		restLogger.Error().Msgf("Unable to save note for player [%s]: %v", request.PlayerName, err)
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to save player note",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) rebuildStats(c *gin.Context) {
	playerName := c.Query("player")
	if playerName == "" {
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: "player query parameter is required",
		})
		return
	}

	err := s.aggregator.Rebuild(c.Request.Context(), playerName)
	if err != nil {
		restLogger.Error().Msgf("Unable to rebuild stats for player [%s]: %v", playerName, err)
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to rebuild player stats",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
