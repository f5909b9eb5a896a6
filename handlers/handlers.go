package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"courtside/metrics"
	"courtside/roster"
	"courtside/stats"
	"courtside/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	statCareer    = "career"
	statSeasonAvg = "season_avg"
)

type StatsFetcher interface {
	TeamOffRating(ctx context.Context, teamID int, season string) (float64, error)
	PlayerSeasonAverages(ctx context.Context, playerID int, season string) (*stats.PlayerAverages, error)
	PlayerCareerAverages(ctx context.Context, playerID int) (*stats.PlayerAverages, error)
}

type Handler struct {
	teams   *roster.Table
	players *roster.Table
	stats   StatsFetcher
	logger  *zap.Logger
}

func NewHandler(teams, players *roster.Table, fetcher StatsFetcher, logger *zap.Logger) *Handler {
	return &Handler{
		teams:   teams,
		players: players,
		stats:   fetcher,
		logger:  logger,
	}
}

// NewServer wires the handler into an echo instance with request ids,
// request logging, panic recovery, validation and the JSON error handler.
func NewServer(h *Handler, logMiddleware echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(h.logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if logMiddleware != nil {
		e.Use(logMiddleware)
	}
	e.Use(middleware.Recover())

	e.POST("/nba-stats", h.TeamStats)
	e.POST("/nba-player", h.PlayerStats)
	e.POST("/nba-compare", h.ComparePlayers)
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return e
}

type TeamStatsRequest struct {
	Team   string `json:"team" validate:"required"`
	Season string `json:"season" validate:"required"`
}

type TeamStatsResponse struct {
	Team   string  `json:"team"`
	Season string  `json:"season"`
	OffRtg float64 `json:"off_rtg"`
}

type PlayerStatsRequest struct {
	Name     string  `json:"name" validate:"required"`
	Season   *string `json:"season"`
	StatType string  `json:"stat_type"`
}

type PlayerStatsResponse struct {
	Player   string                `json:"player"`
	Season   *string               `json:"season"`
	StatType string                `json:"stat_type"`
	Stats    *stats.PlayerAverages `json:"stats"`
}

type CompareRequest struct {
	Players  []string         `json:"players" validate:"len=2,dive,required"`
	Season   *string          `json:"season"`
	StatType OptionalStatType `json:"stat_type"`
}

// OptionalStatType tells an absent stat_type apart from an explicit one.
// An explicit null is present with an empty value, which no stat type matches.
type OptionalStatType struct {
	Value string
	Set   bool
}

func (o *OptionalStatType) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type Comparison struct {
	Name   string                `json:"name"`
	Season *string               `json:"season"`
	Stats  *stats.PlayerAverages `json:"stats"`
}

type CompareResponse struct {
	Comparison []Comparison `json:"comparison"`
}

func (h *Handler) TeamStats(c echo.Context) error {
	var req TeamStatsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return invalid("team and season are required", err)
	}

	team, err := h.resolve(h.teams, req.Team)
	if err != nil {
		return err
	}

	offRtg, err := h.stats.TeamOffRating(c.Request().Context(), team.ID, req.Season)
	if err != nil {
		h.logger.Warn("team offensive rating",
			zap.Int("team_id", team.ID), zap.String("season", req.Season), zap.Error(err))
		return upstreamFailure("failed to load offensive rating", err)
	}

	return c.JSON(http.StatusOK, TeamStatsResponse{
		Team:   team.FullName,
		Season: req.Season,
		OffRtg: offRtg,
	})
}

func (h *Handler) PlayerStats(c echo.Context) error {
	var req PlayerStatsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return invalid("name is required", err)
	}

	player, err := h.resolve(h.players, req.Name)
	if err != nil {
		return err
	}

	avg, err := h.playerAverages(c.Request().Context(), player, req.StatType, req.Season)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PlayerStatsResponse{
		Player:   player.FullName,
		Season:   req.Season,
		StatType: req.StatType,
		Stats:    avg,
	})
}

// ComparePlayers runs the player pipeline for both names in order and stops
// at the first failure, so a bad first name never costs an upstream call.
func (h *Handler) ComparePlayers(c echo.Context) error {
	var req CompareRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return invalid("players must be a list of exactly two player names", err)
	}
	statType := statCareer
	if req.StatType.Set {
		statType = req.StatType.Value
	}

	results := make([]Comparison, 0, len(req.Players))
	for _, name := range req.Players {
		player, err := h.resolve(h.players, name)
		if err != nil {
			return err
		}
		avg, err := h.playerAverages(c.Request().Context(), player, statType, req.Season)
		if err != nil {
			if e, ok := err.(*Error); ok && e.Kind == UpstreamFailure {
				e.Message = fmt.Sprintf("failed to load stats for player '%s'", name)
			}
			return err
		}
		results = append(results, Comparison{
			Name:   player.FullName,
			Season: req.Season,
			Stats:  avg,
		})
	}

	return c.JSON(http.StatusOK, CompareResponse{Comparison: results})
}

type healthResponse struct {
	Status  string `json:"status"`
	Teams   int    `json:"teams"`
	Players int    `json:"players"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Teams:   h.teams.Len(),
		Players: h.players.Len(),
	})
}

func (h *Handler) resolve(table *roster.Table, name string) (roster.Entry, error) {
	entry, err := table.Resolve(name)
	if err != nil {
		metrics.Resolutions.WithLabelValues(table.Kind(), "miss").Inc()
		return roster.Entry{}, notFound(fmt.Sprintf("%s '%s' not found", table.Kind(), name), err)
	}
	metrics.Resolutions.WithLabelValues(table.Kind(), "hit").Inc()
	return entry, nil
}

func (h *Handler) playerAverages(ctx context.Context, player roster.Entry, statType string, season *string) (*stats.PlayerAverages, error) {
	var (
		avg *stats.PlayerAverages
		err error
	)
	switch {
	case statType == statCareer:
		avg, err = h.stats.PlayerCareerAverages(ctx, player.ID)
	case statType == statSeasonAvg && season != nil && *season != "":
		if utils.IsInvalidSeason(*season) {
			return nil, invalid(fmt.Sprintf("season '%s' must look like 2019-20", *season), nil)
		}
		avg, err = h.stats.PlayerSeasonAverages(ctx, player.ID, *season)
	default:
		return nil, invalid("stat_type must be career, or season_avg with a season", nil)
	}
	if err != nil {
		h.logger.Warn("player averages",
			zap.Int("player_id", player.ID), zap.String("stat_type", statType), zap.Error(err))
		return nil, upstreamFailure("failed to load player stats", err)
	}
	return avg, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusUnsupportedMediaType {
			return he
		}
		return invalid("request body must be a JSON object", err)
	}
	return nil
}
