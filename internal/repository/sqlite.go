package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/rating"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			friend_code TEXT UNIQUE NOT NULL,
			rating INTEGER NOT NULL DEFAULT 1200,
			total_score INTEGER NOT NULL DEFAULT 0,
			prediction_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			abbreviation TEXT NOT NULL,
			number INTEGER NOT NULL,
			team TEXT,
			active BOOLEAN DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			circuit TEXT,
			country TEXT,
			season INTEGER NOT NULL,
			round INTEGER NOT NULL,
			starts_at DATETIME NOT NULL,
			lock_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'open'
		)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			ordering TEXT NOT NULL,
			rating_delta INTEGER,
			score INTEGER,
			breakdown TEXT,
			submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (event_id) REFERENCES events(id),
			UNIQUE(user_id, event_id)
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			positions TEXT NOT NULL,
			fastest_lap TEXT,
			dnfs TEXT,
			sprint TEXT,
			published_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_event ON predictions(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_season ON events(season, round)`,
		`CREATE INDEX IF NOT EXISTS idx_users_rating ON users(rating)`,
		`CREATE INDEX IF NOT EXISTS idx_users_friend_code ON users(friend_code)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a sqlite uniqueness constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if goerrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ==================== Driver Methods ====================

// ListDrivers returns all active drivers ordered by race number
func (r *Repository) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, abbreviation, number, team, active
		FROM drivers WHERE active = 1
		ORDER BY number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var d models.Driver
		var team sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.Abbreviation, &d.Number, &team, &d.Active); err != nil {
			return nil, err
		}
		d.Team = team.String
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// UpsertDriver creates or updates a driver by ID
func (r *Repository) UpsertDriver(ctx context.Context, driver models.Driver) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drivers (id, name, abbreviation, number, team, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			abbreviation = excluded.abbreviation,
			number = excluded.number,
			team = excluded.team,
			active = excluded.active
	`, driver.ID, driver.Name, driver.Abbreviation, driver.Number, driver.Team, driver.Active)
	return err
}

// ==================== Event Methods ====================

// CreateEvent creates a new event
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, name, circuit, country, season, round, starts_at, lock_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.Name, event.Circuit, event.Country, event.Season, event.Round,
		event.StartsAt, event.LockAt, event.Status)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetEvent retrieves an event by ID
func (r *Repository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	var circuit, country sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, circuit, country, season, round, starts_at, lock_at, status
		FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &circuit, &country, &e.Season, &e.Round, &e.StartsAt, &e.LockAt, &e.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Circuit = circuit.String
	e.Country = country.String
	return &e, nil
}

// ListEvents returns events, optionally filtered to one season (0 means all)
func (r *Repository) ListEvents(ctx context.Context, season int) ([]models.Event, error) {
	query := `
		SELECT id, name, circuit, country, season, round, starts_at, lock_at, status
		FROM events ORDER BY season, round`
	args := []interface{}{}
	if season != 0 {
		query = `
		SELECT id, name, circuit, country, season, round, starts_at, lock_at, status
		FROM events WHERE season = ? ORDER BY round`
		args = append(args, season)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListUpcomingEvents returns open events whose lock time is still ahead
// of the given instant, soonest first
func (r *Repository) ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, circuit, country, season, round, starts_at, lock_at, status
		FROM events
		WHERE status = 'open' AND lock_at > ?
		ORDER BY lock_at
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var e models.Event
		var circuit, country sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &circuit, &country, &e.Season, &e.Round,
			&e.StartsAt, &e.LockAt, &e.Status); err != nil {
			return nil, err
		}
		e.Circuit = circuit.String
		e.Country = country.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// ==================== Prediction Methods ====================

// CreatePrediction inserts a prediction and bumps the owner's prediction
// count in the same transaction. Returns ErrDuplicate if the user already
// has a prediction for the event.
func (r *Repository) CreatePrediction(ctx context.Context, prediction *models.Prediction) error {
	ordering, err := json.Marshal(prediction.Ordering)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO predictions (id, user_id, event_id, ordering, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, prediction.ID, prediction.UserID, prediction.EventID, string(ordering),
		prediction.SubmittedAt, prediction.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET prediction_count = prediction_count + 1 WHERE id = ?`,
		prediction.UserID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetPrediction retrieves a prediction by ID
func (r *Repository) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, ordering, rating_delta, score, breakdown, submitted_at, updated_at
		FROM predictions WHERE id = ?
	`, id)
	return scanPrediction(row)
}

// GetPredictionForUserEvent retrieves a user's prediction for one event
func (r *Repository) GetPredictionForUserEvent(ctx context.Context, userID, eventID string) (*models.Prediction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, ordering, rating_delta, score, breakdown, submitted_at, updated_at
		FROM predictions WHERE user_id = ? AND event_id = ?
	`, userID, eventID)
	return scanPrediction(row)
}

// UpdatePredictionOrdering replaces an unsettled prediction's ordering.
// The rating_delta guard keeps settled predictions immutable even if a
// settle races an edit.
func (r *Repository) UpdatePredictionOrdering(ctx context.Context, id string, ordering []models.RankedDriver, updatedAt time.Time) error {
	data, err := json.Marshal(ordering)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE predictions SET ordering = ?, updated_at = ?
		WHERE id = ? AND rating_delta IS NULL
	`, string(data), updatedAt, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPredictionsForEvent returns all predictions submitted for an event
func (r *Repository) ListPredictionsForEvent(ctx context.Context, eventID string) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, ordering, rating_delta, score, breakdown, submitted_at, updated_at
		FROM predictions WHERE event_id = ? ORDER BY submitted_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// ListPredictionsForUser returns all of a user's predictions, newest first
func (r *Repository) ListPredictionsForUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, ordering, rating_delta, score, breakdown, submitted_at, updated_at
		FROM predictions WHERE user_id = ? ORDER BY submitted_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPredictions(rows)
}

type predictionScanner interface {
	Scan(dest ...interface{}) error
}

func scanPredictionInto(s predictionScanner, p *models.Prediction) error {
	var ordering string
	var ratingDelta, score sql.NullInt64
	var breakdown sql.NullString

	if err := s.Scan(&p.ID, &p.UserID, &p.EventID, &ordering, &ratingDelta, &score,
		&breakdown, &p.SubmittedAt, &p.UpdatedAt); err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(ordering), &p.Ordering); err != nil {
		return err
	}
	if ratingDelta.Valid {
		v := int(ratingDelta.Int64)
		p.RatingDelta = &v
	}
	if score.Valid {
		v := int(score.Int64)
		p.Score = &v
	}
	if breakdown.Valid && breakdown.String != "" {
		var b models.ScoreBreakdown
		if err := json.Unmarshal([]byte(breakdown.String), &b); err != nil {
			return err
		}
		p.Breakdown = &b
	}
	return nil
}

func scanPrediction(row *sql.Row) (*models.Prediction, error) {
	var p models.Prediction
	err := scanPredictionInto(row, &p)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPredictions(rows *sql.Rows) ([]models.Prediction, error) {
	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := scanPredictionInto(rows, &p); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// ==================== User Methods ====================

// CreateUser creates a new user. Returns ErrDuplicate if the username or
// friend code is already taken.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, friend_code, rating, total_score, prediction_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.FriendCode, user.Rating, user.TotalScore,
		user.PredictionCount, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.getUserBy(ctx, "id", id)
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserBy(ctx, "username", username)
}

// GetUserByFriendCode retrieves a user by friend code
func (r *Repository) GetUserByFriendCode(ctx context.Context, friendCode string) (*models.User, error) {
	return r.getUserBy(ctx, "friend_code", friendCode)
}

func (r *Repository) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, friend_code, rating, total_score, prediction_count, created_at
		FROM users WHERE `+column+` = ?
	`, value).Scan(&u.ID, &u.Username, &u.FriendCode, &u.Rating, &u.TotalScore,
		&u.PredictionCount, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsersByRating returns users ordered by rating descending, ties
// broken by total score then username
func (r *Repository) ListUsersByRating(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, friend_code, rating, total_score, prediction_count, created_at
		FROM users
		ORDER BY rating DESC, total_score DESC, username
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FriendCode, &u.Rating, &u.TotalScore,
			&u.PredictionCount, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SeasonLeaderboard sums settled event scores per user across one season
func (r *Repository) SeasonLeaderboard(ctx context.Context, season int) ([]SeasonStanding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.rating, SUM(p.score) AS season_score, COUNT(p.id) AS events
		FROM predictions p
		JOIN events e ON p.event_id = e.id
		JOIN users u ON p.user_id = u.id
		WHERE e.season = ? AND p.score IS NOT NULL
		GROUP BY u.id
		ORDER BY season_score DESC, u.rating DESC, u.username
	`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []SeasonStanding
	for rows.Next() {
		var s SeasonStanding
		if err := rows.Scan(&s.UserID, &s.Username, &s.Rating, &s.SeasonScore, &s.Events); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// ==================== Result and Settlement Methods ====================

// GetResult retrieves the official result for an event
func (r *Repository) GetResult(ctx context.Context, eventID string) (*models.OfficialResult, error) {
	var res models.OfficialResult
	var positions string
	var fastestLap, dnfs, sprint sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, positions, fastest_lap, dnfs, sprint, published_at
		FROM results WHERE event_id = ?
	`, eventID).Scan(&res.ID, &res.EventID, &positions, &fastestLap, &dnfs, &sprint, &res.PublishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(positions), &res.Positions); err != nil {
		return nil, err
	}
	res.FastestLap = fastestLap.String
	if dnfs.Valid && dnfs.String != "" {
		if err := json.Unmarshal([]byte(dnfs.String), &res.DNFs); err != nil {
			return nil, err
		}
	}
	if sprint.Valid && sprint.String != "" {
		if err := json.Unmarshal([]byte(sprint.String), &res.Sprint); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

// ApplySettlement writes an entire settlement in one transaction: the
// official result, every prediction's outcome, every user's rating and
// score update, and the event status flip. The UNIQUE constraint on
// results(event_id) guarantees at most one settlement per event even
// under concurrent calls; the loser gets ErrDuplicate and nothing is
// written.
func (r *Repository) ApplySettlement(ctx context.Context, result *models.OfficialResult, settled []SettledPrediction) error {
	positions, err := json.Marshal(result.Positions)
	if err != nil {
		return err
	}

	var dnfs, sprint sql.NullString
	if len(result.DNFs) > 0 {
		data, _ := json.Marshal(result.DNFs) // Marshal on []string never fails
		dnfs = sql.NullString{String: string(data), Valid: true}
	}
	if len(result.Sprint) > 0 {
		data, err := json.Marshal(result.Sprint)
		if err != nil {
			return err
		}
		sprint = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results (id, event_id, positions, fastest_lap, dnfs, sprint, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.EventID, string(positions), result.FastestLap, dnfs, sprint, result.PublishedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	for _, s := range settled {
		breakdown, err := json.Marshal(s.Breakdown)
		if err != nil {
			return err
		}

		// The rating_delta IS NULL guard makes each prediction settle
		// exactly once.
		if _, err := tx.ExecContext(ctx, `
			UPDATE predictions
			SET rating_delta = ?, score = ?, breakdown = ?, updated_at = ?
			WHERE id = ? AND rating_delta IS NULL
		`, s.RatingDelta, s.Score, string(breakdown), result.PublishedAt, s.PredictionID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET rating = MIN(?, MAX(?, rating + ?)),
			    total_score = total_score + ?
			WHERE id = ?
		`, rating.MaxRating, rating.MinRating, s.RatingDelta, s.Score, s.UserID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET status = ? WHERE id = ?`,
		models.EventStatusSettled, result.EventID); err != nil {
		return err
	}

	return tx.Commit()
}
