package stats

import (
	"context"
	"errors"
	"testing"

	"courtside/nba"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	dashboard *nba.Response
	career    *nba.Response
	err       error
	calls     int
}

func (f *fakeUpstream) TeamDashboard(ctx context.Context, teamID int, season string) (*nba.Response, error) {
	f.calls++
	return f.dashboard, f.err
}

func (f *fakeUpstream) PlayerCareer(ctx context.Context, playerID int) (*nba.Response, error) {
	f.calls++
	return f.career, f.err
}

var playerHeaders = []string{"PLAYER_ID", "SEASON_ID", "TEAM_ABBREVIATION", "PTS", "AST", "REB"}

func careerResponse() *nba.Response {
	return &nba.Response{ResultSets: []nba.ResultSet{
		{
			Name:    "SeasonTotalsRegularSeason",
			Headers: playerHeaders,
			RowSet: [][]any{
				{2544.0, "21819", "LAL", 27.36, 8.32, 8.51},
				{2544.0, "21920", "LAL", 25.34, 10.25, 7.84},
				{2544.0, "21920", "TOT", 1.0, 1.0, 1.0},
			},
		},
		{
			Name:    "CareerTotalsRegularSeason",
			Headers: []string{"PLAYER_ID", "LEAGUE_ID", "PTS", "AST", "REB"},
			RowSet:  [][]any{{2544.0, "00", 27.06, 7.38, 7.51}},
		},
	}}
}

func TestSeasonID(t *testing.T) {
	id, err := SeasonID("2019-20")
	require.NoError(t, err)
	assert.Equal(t, "21920", id)

	id, err = SeasonID("1999-00")
	require.NoError(t, err)
	assert.Equal(t, "29900", id)

	_, err = SeasonID("2019")
	assert.Error(t, err)
}

func TestTeamOffRating(t *testing.T) {
	up := &fakeUpstream{dashboard: &nba.Response{ResultSets: []nba.ResultSet{{
		Name:    "OverallTeamDashboard",
		Headers: []string{"GROUP_SET", "OFF_RATING"},
		RowSet:  [][]any{{"Overall", 112.3456}, {"Other", 1.0}},
	}}}}

	off, err := NewFetcher(up).TeamOffRating(context.Background(), 1610612747, "2019-20")
	require.NoError(t, err)
	assert.Equal(t, 112.35, off)
	assert.Equal(t, 1, up.calls)
}

func TestTeamOffRatingFailures(t *testing.T) {
	empty := &fakeUpstream{dashboard: &nba.Response{ResultSets: []nba.ResultSet{{
		Name: "OverallTeamDashboard", Headers: []string{"OFF_RATING"},
	}}}}
	_, err := NewFetcher(empty).TeamOffRating(context.Background(), 1, "2019-20")
	assert.ErrorIs(t, err, ErrNoData)

	noColumn := &fakeUpstream{dashboard: &nba.Response{ResultSets: []nba.ResultSet{{
		Name: "OverallTeamDashboard", Headers: []string{"PTS"}, RowSet: [][]any{{100.0}},
	}}}}
	_, err = NewFetcher(noColumn).TeamOffRating(context.Background(), 1, "2019-20")
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = NewFetcher(&fakeUpstream{err: boom}).TeamOffRating(context.Background(), 1, "2019-20")
	assert.ErrorIs(t, err, boom)
}

func TestPlayerSeasonAverages(t *testing.T) {
	up := &fakeUpstream{career: careerResponse()}

	avg, err := NewFetcher(up).PlayerSeasonAverages(context.Background(), 2544, "2019-20")
	require.NoError(t, err)
	assert.Equal(t, &PlayerAverages{PTS: 25.3, AST: 10.2, REB: 7.8}, avg)
}

func TestPlayerSeasonAveragesNoRow(t *testing.T) {
	up := &fakeUpstream{career: careerResponse()}

	_, err := NewFetcher(up).PlayerSeasonAverages(context.Background(), 2544, "1990-91")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPlayerSeasonAveragesRejectsBadSeasonBeforeCalling(t *testing.T) {
	up := &fakeUpstream{career: careerResponse()}

	_, err := NewFetcher(up).PlayerSeasonAverages(context.Background(), 2544, "2019")
	assert.Error(t, err)
	assert.Zero(t, up.calls)
}

func TestPlayerCareerAverages(t *testing.T) {
	up := &fakeUpstream{career: careerResponse()}

	avg, err := NewFetcher(up).PlayerCareerAverages(context.Background(), 2544)
	require.NoError(t, err)
	assert.Equal(t, &PlayerAverages{PTS: 27.1, AST: 7.4, REB: 7.5}, avg)
}

func TestPlayerCareerAveragesEmpty(t *testing.T) {
	resp := careerResponse()
	resp.ResultSets[1].RowSet = nil
	up := &fakeUpstream{career: resp}

	_, err := NewFetcher(up).PlayerCareerAverages(context.Background(), 2544)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPlayerCareerAveragesUsesSecondTableWithoutNames(t *testing.T) {
	resp := careerResponse()
	resp.ResultSets[0].Name = ""
	resp.ResultSets[1].Name = ""
	up := &fakeUpstream{career: resp}

	avg, err := NewFetcher(up).PlayerCareerAverages(context.Background(), 2544)
	require.NoError(t, err)
	assert.Equal(t, 27.1, avg.PTS)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.2, round(0.25, 1))
	assert.Equal(t, -0.2, round(-0.25, 1))
	assert.Equal(t, 10.2, round(10.25, 1))
	assert.Equal(t, 0.12, round(0.125, 2))
	// 2.675*100 is 267.5 in float64, so this goes up like numpy does.
	assert.Equal(t, 2.68, round(2.675, 2))
	assert.Equal(t, 112.35, round(112.3456, 2))
	assert.Equal(t, 110.0, round(109.996, 2))
	assert.Equal(t, 27.1, round(27.06, 1))
}
