// Package stats pulls single facts out of stats.nba.com tables: a team's
// offensive rating for a season, and a player's per-season or career
// points, assists and rebounds.
package stats

import (
	"context"
	"errors"
	"fmt"

	"courtside/nba"
	"courtside/utils"

	"github.com/shopspring/decimal"
)

// ErrNoData means the upstream answered but had no row for the query.
var ErrNoData = errors.New("no data")

const (
	dashboardTable    = "OverallTeamDashboard"
	seasonTotalsTable = "SeasonTotalsRegularSeason"
	careerTotalsTable = "CareerTotalsRegularSeason"
)

type Upstream interface {
	TeamDashboard(ctx context.Context, teamID int, season string) (*nba.Response, error)
	PlayerCareer(ctx context.Context, playerID int) (*nba.Response, error)
}

type PlayerAverages struct {
	PTS float64 `json:"pts"`
	AST float64 `json:"ast"`
	REB float64 `json:"reb"`
}

type Fetcher struct {
	upstream Upstream
}

func NewFetcher(upstream Upstream) *Fetcher {
	return &Fetcher{upstream: upstream}
}

// SeasonID converts "YYYY-YY" to the upstream season id: "2" followed by
// the two-digit start and end years, so "2019-20" becomes "21920".
func SeasonID(season string) (string, error) {
	if utils.IsInvalidSeason(season) {
		return "", fmt.Errorf("invalid season %q, want YYYY-YY", season)
	}
	return "2" + season[2:4] + season[5:7], nil
}

func (f *Fetcher) TeamOffRating(ctx context.Context, teamID int, season string) (float64, error) {
	resp, err := f.upstream.TeamDashboard(ctx, teamID, season)
	if err != nil {
		return 0, err
	}
	rs, err := resp.ResultSet(dashboardTable, 0)
	if err != nil {
		return 0, err
	}
	if rs.Len() == 0 {
		return 0, fmt.Errorf("team %d %s dashboard: %w", teamID, season, ErrNoData)
	}
	off, err := rs.Float(0, "OFF_RATING")
	if err != nil {
		return 0, err
	}
	return round(off, 2), nil
}

func (f *Fetcher) PlayerSeasonAverages(ctx context.Context, playerID int, season string) (*PlayerAverages, error) {
	seasonID, err := SeasonID(season)
	if err != nil {
		return nil, err
	}
	resp, err := f.upstream.PlayerCareer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	rs, err := resp.ResultSet(seasonTotalsTable, 0)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rs.Len(); i++ {
		id, err := rs.String(i, "SEASON_ID")
		if err != nil {
			return nil, err
		}
		if id == seasonID {
			return averages(rs, i)
		}
	}
	return nil, fmt.Errorf("player %d season %s: %w", playerID, seasonID, ErrNoData)
}

func (f *Fetcher) PlayerCareerAverages(ctx context.Context, playerID int) (*PlayerAverages, error) {
	resp, err := f.upstream.PlayerCareer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	rs, err := resp.ResultSet(careerTotalsTable, 1)
	if err != nil {
		return nil, err
	}
	if rs.Len() == 0 {
		return nil, fmt.Errorf("player %d career: %w", playerID, ErrNoData)
	}
	return averages(rs, 0)
}

func averages(rs *nba.ResultSet, row int) (*PlayerAverages, error) {
	pts, err := rs.Float(row, "PTS")
	if err != nil {
		return nil, err
	}
	ast, err := rs.Float(row, "AST")
	if err != nil {
		return nil, err
	}
	reb, err := rs.Float(row, "REB")
	if err != nil {
		return nil, err
	}
	return &PlayerAverages{
		PTS: round(pts, 1),
		AST: round(ast, 1),
		REB: round(reb, 1),
	}, nil
}

// round scales v by 10^places in float64, rounds half to even and scales
// back, so ties such as 10.25 land where numpy puts them.
func round(v float64, places int32) float64 {
	scale := decimal.New(1, places)
	scaled := decimal.NewFromFloat(v * scale.InexactFloat64()).RoundBank(0)
	return scaled.Div(scale).InexactFloat64()
}
