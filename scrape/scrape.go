package scrape

import (
	"context"
	"fmt"

	"courtside/db"
	"courtside/nba"
	"courtside/utils"

	"go.uber.org/zap"
)

type PlayerSource interface {
	CommonAllPlayers(ctx context.Context, season string, onlyCurrent bool) ([]nba.CommonAllPlayer, error)
}

type PlayerStore interface {
	InsertPlayers(players []db.Player) error
}

// SyncPlayers copies every player stats.nba.com lists as of season into
// store, keeping the upstream row order as each player's sequence number.
// Rows without an id or a display name are logged and skipped.
// It returns the number of players written.
func SyncPlayers(ctx context.Context, src PlayerSource, store PlayerStore, season string, logger *zap.Logger) (int, error) {
	if utils.IsInvalidSeason(season) {
		return 0, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}
	players, err := src.CommonAllPlayers(ctx, season, false)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	dbPlayers := make([]db.Player, 0, len(players))
	for i, p := range players {
		if p.PersonID != nil && p.DisplayFirstLast != nil {
			active := p.RosterStatus != nil && *p.RosterStatus == 1
			dbPlayers = append(dbPlayers, *db.NewPlayer(int(*p.PersonID), *p.DisplayFirstLast, active, i))
			continue
		}
		if p.PersonID == nil && p.DisplayFirstLast != nil {
			logger.Warn("player missing PERSON_ID", zap.String("name", *p.DisplayFirstLast))
		} else if p.PersonID != nil && p.DisplayFirstLast == nil {
			logger.Warn("player missing DISPLAY_FIRST_LAST", zap.Int("id", int(*p.PersonID)))
		} else {
			logger.Warn("player missing both PERSON_ID and DISPLAY_FIRST_LAST")
		}
	}
	if err := store.InsertPlayers(dbPlayers); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	logger.Info("roster synced", zap.String("season", season), zap.Int("players", len(dbPlayers)), zap.Int("skipped", len(players)-len(dbPlayers)))
	return len(dbPlayers), nil
}
