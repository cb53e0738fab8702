package store

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"pokerlens.com/tracker/stats"
	"pokerlens.com/tracker/tracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	notes TEXT NOT NULL DEFAULT '',
	first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
	session_code TEXT PRIMARY KEY,
	table_title TEXT NOT NULL,
	stakes TEXT NOT NULL,
	table_size INT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ,
	hands_seen INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hands (
	id BIGSERIAL PRIMARY KEY,
	session_code TEXT NOT NULL REFERENCES sessions(session_code),
	hand_num INT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	final_street TEXT NOT NULL,
	final_pot NUMERIC(12, 2) NOT NULL,
	community_cards TEXT NOT NULL,
	dealer_pos INT NOT NULL,
	players JSONB NOT NULL,
	UNIQUE (session_code, hand_num)
);

CREATE TABLE IF NOT EXISTS hand_actions (
	id BIGSERIAL PRIMARY KEY,
	hand_id BIGINT NOT NULL REFERENCES hands(id) ON DELETE CASCADE,
	seq INT NOT NULL,
	player_name TEXT NOT NULL,
	seat_no INT NOT NULL,
	action_type TEXT NOT NULL,
	amount NUMERIC(12, 2) NOT NULL,
	street TEXT NOT NULL,
	acted_at TIMESTAMPTZ NOT NULL,
	is_voluntary BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hands_session ON hands (session_code);
CREATE INDEX IF NOT EXISTS idx_hand_actions_hand ON hand_actions (hand_id);
CREATE INDEX IF NOT EXISTS idx_hand_actions_player ON hand_actions (player_name);
`

// Store is the postgres hand history. Hands are written once, when
// they complete; nothing in the hot capture path touches the database.
type Store struct {
	db     *sqlx.DB
	logger *zerolog.Logger
}

func NewStore(connStr string, logger *zerolog.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to postgres")
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Unable to initialize schema")
	}

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PlayerRow is one row of the players table.
type PlayerRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Notes     string    `db:"notes"`
	FirstSeen time.Time `db:"first_seen"`
	LastSeen  time.Time `db:"last_seen"`
}

// UpsertPlayers records that these players were seen just now.
func (s *Store) UpsertPlayers(ctx context.Context, playerNames []string) error {
	for _, name := range playerNames {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO players (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET last_seen = NOW()`, name)
		if err != nil {
			return errors.Wrapf(err, "Unable to upsert player [%s]", name)
		}
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, playerName string) (*PlayerRow, error) {
	var row PlayerRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM players WHERE name = $1`, playerName)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load player [%s]", playerName)
	}
	return &row, nil
}

// SetPlayerNote attaches a free-form note to a player, creating the
// player row if this is the first sighting.
func (s *Store) SetPlayerNote(ctx context.Context, playerName string, note string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (name, notes) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET notes = $2`, playerName, note)
	return errors.Wrapf(err, "Unable to set note for player [%s]", playerName)
}

func (s *Store) CreateSession(ctx context.Context, session *tracker.TableSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_code, table_title, stakes, table_size, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.SessionCode, session.Window.Title, session.Stakes,
		session.TableSize.NumSeats(), session.StartedAt)
	return errors.Wrapf(err, "Unable to create session [%s]", session.SessionCode)
}

func (s *Store) EndSession(ctx context.Context, sessionCode string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			ended_at = NOW(),
			hands_seen = (SELECT COUNT(*) FROM hands WHERE session_code = $1)
		WHERE session_code = $1`, sessionCode)
	return errors.Wrapf(err, "Unable to end session [%s]", sessionCode)
}

// CloseDanglingSessions stamps an end time on sessions a previous run
// left open after an unclean shutdown.
func (s *Store) CloseDanglingSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			ended_at = NOW(),
			hands_seen = (SELECT COUNT(*) FROM hands h WHERE h.session_code = sessions.session_code)
		WHERE ended_at IS NULL`)
	if err != nil {
		return 0, errors.Wrap(err, "Unable to close dangling sessions")
	}
	closed, _ := result.RowsAffected()
	return closed, nil
}

// SaveHand writes one completed hand and its action list in a single
// transaction.
func (s *Store) SaveHand(ctx context.Context, sessionCode string, hand *tracker.HandState) error {
	players := dealtPlayerNames(hand)

	err := s.UpsertPlayers(ctx, players)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Unable to begin transaction")
	}
	defer tx.Rollback()

	var handID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO hands (session_code, hand_num, started_at, final_street,
			final_pot, community_cards, dealer_pos, players)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_code, hand_num) DO UPDATE SET
			final_street = EXCLUDED.final_street,
			final_pot = EXCLUDED.final_pot,
			community_cards = EXCLUDED.community_cards,
			players = EXCLUDED.players
		RETURNING id`,
		sessionCode, hand.HandNum, hand.StartedAt, hand.CurrentStreet.String(),
		hand.PotSize, strings.Join(hand.CommunityCards, " "), hand.DealerPos,
		playersJSON(players)).Scan(&handID)
	if err != nil {
		return errors.Wrapf(err, "Unable to insert hand %d for session [%s]", hand.HandNum, sessionCode)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM hand_actions WHERE hand_id = $1`, handID)
	if err != nil {
		return errors.Wrapf(err, "Unable to clear actions for hand %d", handID)
	}

	for seq, action := range hand.Actions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO hand_actions (hand_id, seq, player_name, seat_no,
				action_type, amount, street, acted_at, is_voluntary)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			handID, seq, action.PlayerName, action.SeatNo, action.ActionType.String(),
			action.Amount, action.Street.String(), action.Timestamp, action.IsVoluntary)
		if err != nil {
			return errors.Wrapf(err, "Unable to insert action %d for hand %d", seq, handID)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrapf(err, "Unable to commit hand %d for session [%s]", hand.HandNum, sessionCode)
	}

	s.logger.Debug().
		Str("sessionCode", sessionCode).
		Uint32("handNo", hand.HandNum).
		Int("actions", len(hand.Actions)).
		Msg("Hand saved")
	return nil
}

type handRow struct {
	ID      int64  `db:"id"`
	Players string `db:"players"`
}

type actionRow struct {
	HandID      int64     `db:"hand_id"`
	PlayerName  string    `db:"player_name"`
	SeatNo      uint32    `db:"seat_no"`
	ActionType  string    `db:"action_type"`
	Amount      float64   `db:"amount"`
	Street      string    `db:"street"`
	ActedAt     time.Time `db:"acted_at"`
	IsVoluntary bool      `db:"is_voluntary"`
}

// PlayerHands replays every stored hand the player was dealt into.
// Feeds counter rebuilds; never called on the capture path.
func (s *Store) PlayerHands(ctx context.Context, playerName string) ([]stats.HandRecord, error) {
	var handRows []handRow
	err := s.db.SelectContext(ctx, &handRows, `
		SELECT id, players::text AS players FROM hands
		WHERE players @> jsonb_build_array($1::text)
		ORDER BY id`, playerName)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load hands for player [%s]", playerName)
	}
	if len(handRows) == 0 {
		return nil, nil
	}

	records := make([]stats.HandRecord, 0, len(handRows))
	recordByHandID := make(map[int64]int, len(handRows))
	handIDs := make([]int64, 0, len(handRows))
	for _, row := range handRows {
		recordByHandID[row.ID] = len(records)
		handIDs = append(handIDs, row.ID)
		records = append(records, stats.HandRecord{
			Players: parsePlayersJSON(row.Players),
		})
	}

	query, args, err := sqlx.In(`
		SELECT hand_id, player_name, seat_no, action_type, amount, street, acted_at, is_voluntary
		FROM hand_actions WHERE hand_id IN (?) ORDER BY hand_id, seq`, handIDs)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to build action query")
	}

	var actionRows []actionRow
	err = s.db.SelectContext(ctx, &actionRows, s.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load actions for player [%s]", playerName)
	}

	for _, row := range actionRows {
		idx := recordByHandID[row.HandID]
		actionType, _ := tracker.ActionTypeFromString(row.ActionType)
		street := streetFromString(row.Street)
		records[idx].Actions = append(records[idx].Actions, &tracker.PlayerAction{
			PlayerName:  row.PlayerName,
			SeatNo:      row.SeatNo,
			ActionType:  actionType,
			Amount:      row.Amount,
			Street:      street,
			Timestamp:   row.ActedAt,
			IsVoluntary: row.IsVoluntary,
		})
	}

	return records, nil
}

func dealtPlayerNames(hand *tracker.HandState) []string {
	var names []string
	for _, seat := range hand.Seats {
		if seat.IsOccupied {
			names = append(names, seat.PlayerName)
		}
	}
	return names
}
