package db

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"courtside/roster"
	"courtside/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const expectedTeams = 30

type Player struct {
	ID       int    `db:"id"`
	FullName string `db:"full_name"`
	IsActive bool   `db:"is_active"`
	// Seq is the player's position in the upstream list. Name lookups scan
	// players in this order.
	Seq int `db:"seq"`
}

func NewPlayer(id int, fullName string, isActive bool, seq int) *Player {
	return &Player{
		ID:       id,
		FullName: fullName,
		IsActive: isActive,
		Seq:      seq,
	}
}

// Store is the sqlite roster snapshot. The server only reads it at startup;
// writes come from the roster sync.
type Store struct {
	path string
	db   *sqlx.DB
}

func Open(path string) (*Store, error) {
	if err := setupDatabase(path); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return &Store{path: path, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func setupDatabase(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			return utils.ErrorWithTrace(err)
		}
		return file.Close()
	} else if err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func (s *Store) RunMigrations() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+s.path)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func (s *Store) ValidateMigrations() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return utils.ErrorWithTrace(err)
	}
	if count != expectedTeams {
		return utils.ErrorWithTrace(fmt.Errorf("expected %d teams, found %d", expectedTeams, count))
	}

	var name string
	if err := s.db.QueryRow("SELECT full_name FROM teams WHERE id = 1610612752").Scan(&name); err != nil {
		return utils.ErrorWithTrace(fmt.Errorf("failed to find Knicks: %w", err))
	}
	if name != "New York Knicks" {
		return utils.ErrorWithTrace(fmt.Errorf("expected team.id 1610612752 to have name 'New York Knicks', got '%s'", name))
	}
	return nil
}

func (s *Store) SelectTeams() ([]roster.Entry, error) {
	teams := []roster.Entry{}
	if err := s.db.Select(&teams, `SELECT id, full_name FROM teams ORDER BY id`); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return teams, nil
}

func (s *Store) SelectPlayers() ([]roster.Entry, error) {
	players := []roster.Entry{}
	if err := s.db.Select(&players, `SELECT id, full_name FROM players ORDER BY seq, id`); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return players, nil
}

func (s *Store) InsertPlayers(players []Player) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		REPLACE INTO players (id, full_name, is_active, seq)
		VALUES (:id, :full_name, :is_active, :seq)
	`
	for _, p := range players {
		if _, err := tx.NamedExec(query, p); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

// LoadRoster opens, migrates and reads the snapshot at path.
func LoadRoster(path string) (teams, players *roster.Table, err error) {
	s, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	if err := s.RunMigrations(); err != nil {
		return nil, nil, err
	}
	if err := s.ValidateMigrations(); err != nil {
		return nil, nil, err
	}
	t, err := s.SelectTeams()
	if err != nil {
		return nil, nil, err
	}
	p, err := s.SelectPlayers()
	if err != nil {
		return nil, nil, err
	}
	return roster.NewTable("team", t), roster.NewTable("player", p), nil
}
