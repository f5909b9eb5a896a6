package db

import (
	"path/filepath"
	"testing"

	"courtside/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.RunMigrations())
	return s
}

func TestMigrationsSeedTeams(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.ValidateMigrations())
	require.NoError(t, s.RunMigrations(), "second run is a no-op")

	teams, err := s.SelectTeams()
	require.NoError(t, err)
	require.Len(t, teams, 30)
	assert.Equal(t, roster.Entry{ID: 1610612737, FullName: "Atlanta Hawks"}, teams[0])
}

func TestInsertPlayersUpserts(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.InsertPlayers([]Player{
		*NewPlayer(201935, "James Harden", true, 0),
		*NewPlayer(2544, "LeBron Jame", true, 1),
	}))
	require.NoError(t, s.InsertPlayers([]Player{
		*NewPlayer(2544, "LeBron James", true, 1),
	}))

	players, err := s.SelectPlayers()
	require.NoError(t, err)
	assert.Equal(t, []roster.Entry{
		{ID: 201935, FullName: "James Harden"},
		{ID: 2544, FullName: "LeBron James"},
	}, players)
}

func TestLoadRosterKeepsUpstreamOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	require.NoError(t, s.InsertPlayers([]Player{
		*NewPlayer(1628455, "Mike James", true, 2),
		*NewPlayer(201935, "James Harden", true, 0),
		*NewPlayer(2544, "LeBron James", true, 1),
	}))
	require.NoError(t, s.Close())

	_, players, err := LoadRoster(path)
	require.NoError(t, err)

	e, err := players.Resolve("james")
	require.NoError(t, err)
	assert.Equal(t, "James Harden", e.FullName)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	require.NoError(t, s.InsertPlayers([]Player{*NewPlayer(2544, "LeBron James", true, 0)}))
	require.NoError(t, s.Close())

	teams, players, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, 30, teams.Len())

	e, err := players.Resolve("lebron")
	require.NoError(t, err)
	assert.Equal(t, 2544, e.ID)
}
