package nba

import (
	"context"
	"net/url"
)

// CommonAllPlayer is the part of a commonallplayers row the roster sync
// stores. Cells missing from the row are nil.
type CommonAllPlayer struct {
	PersonID         *float64
	DisplayFirstLast *string
	RosterStatus     *float64
}

// CommonAllPlayers lists every player stats.nba.com knows about as of season.
// With onlyCurrent set, only players on a roster that season are returned.
func (c *Client) CommonAllPlayers(ctx context.Context, season string, onlyCurrent bool) ([]CommonAllPlayer, error) {
	current := "0"
	if onlyCurrent {
		current = "1"
	}
	params := url.Values{
		"LeagueID":            {"00"},
		"Season":              {season},
		"IsOnlyCurrentSeason": {current},
	}
	resp, err := c.get(ctx, "commonallplayers", params)
	if err != nil {
		return nil, err
	}
	rs, err := resp.ResultSet("CommonAllPlayers", 0)
	if err != nil {
		return nil, err
	}

	players := make([]CommonAllPlayer, rs.Len())
	for i := range rs.RowSet {
		players[i] = CommonAllPlayer{
			PersonID:         cell[float64](rs, i, "PERSON_ID"),
			DisplayFirstLast: cell[string](rs, i, "DISPLAY_FIRST_LAST"),
			RosterStatus:     cell[float64](rs, i, "ROSTERSTATUS"),
		}
	}
	return players, nil
}

func cell[T any](rs *ResultSet, row int, column string) *T {
	v, err := rs.value(row, column)
	if err != nil {
		return nil
	}
	return maybe[T](v)
}
