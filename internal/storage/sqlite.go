package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"synthlobby/internal/model"
	"synthlobby/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetOrCreateUser resolves an opaque auth key to a user, creating the row
// on first sight.
func (s *SQLite) GetOrCreateUser(ctx context.Context, authKey string) (*model.User, error) {
	if authKey == "" {
		return nil, fmt.Errorf("empty auth key")
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (auth_key, created_at) VALUES (?, ?)`,
		authKey, now,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, auth_key, chat_id, created_at FROM users WHERE auth_key = ?`, authKey,
	)
	return scanUser(row)
}

// BindChat attaches a Telegram chat to an existing user.
func (s *SQLite) BindChat(ctx context.Context, userID, chatID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET chat_id = ? WHERE id = ?`, chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("bind chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserByChat returns the user bound to the given Telegram chat.
func (s *SQLite) UserByChat(ctx context.Context, chatID int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, auth_key, chat_id, created_at FROM users WHERE chat_id = ?`, chatID,
	)
	return scanUser(row)
}

// GetProfile returns the user's wishlist and compare list.
func (s *SQLite) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	return s.profile(ctx, s.db, userID)
}

// ToggleWatch adds the synth to the user's wishlist, or removes it if
// already present, and returns the updated profile.
func (s *SQLite) ToggleWatch(ctx context.Context, userID int64, synthID string) (*model.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM watched_synths WHERE user_id = ? AND synth_id = ?`, userID, synthID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		now := time.Now().UTC().Format(timeLayout)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO watched_synths (user_id, synth_id, notifications_enabled, created_at)
			 VALUES (?, ?, 0, ?)`,
			userID, synthID, now,
		); err != nil {
			return nil, fmt.Errorf("insert watch: %w", err)
		}
	}

	profile, err := s.profile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return profile, nil
}

// SetNotifications flips the notification flag on an existing wishlist
// entry and returns the updated profile. Returns ErrNotFound when the synth
// is not on the wishlist.
func (s *SQLite) SetNotifications(ctx context.Context, userID int64, synthID string, enabled bool) (*model.Profile, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE watched_synths SET notifications_enabled = ? WHERE user_id = ? AND synth_id = ?`,
		boolToInt(enabled), userID, synthID,
	)
	if err != nil {
		return nil, fmt.Errorf("update notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.profile(ctx, s.db, userID)
}

// ToggleCompare adds the synth to the user's compare list, or removes it if
// already present, and returns the updated profile.
func (s *SQLite) ToggleCompare(ctx context.Context, userID int64, synthID string) (*model.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM compare_items WHERE user_id = ? AND synth_id = ?`, userID, synthID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete compare: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		now := time.Now().UTC().Format(timeLayout)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO compare_items (user_id, synth_id, created_at) VALUES (?, ?, ?)`,
			userID, synthID, now,
		); err != nil {
			return nil, fmt.Errorf("insert compare: %w", err)
		}
	}

	profile, err := s.profile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return profile, nil
}

// ListSubscriptions returns every wishlist entry with notifications enabled
// whose user has a Telegram chat bound.
func (s *SQLite) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.user_id, u.chat_id, w.synth_id
		 FROM watched_synths w
		 JOIN users u ON u.id = w.user_id
		 WHERE w.notifications_enabled = 1 AND u.chat_id IS NOT NULL
		 ORDER BY w.user_id, w.synth_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.UserID, &sub.ChatID, &sub.SynthID); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// WasAlerted checks whether a price-drop alert was already sent to the user
// for this synth on the given day.
func (s *SQLite) WasAlerted(ctx context.Context, userID int64, synthID, date string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM price_alerts WHERE user_id = ? AND synth_id = ? AND alert_date = ?`,
		userID, synthID, date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check alerted: %w", err)
	}
	return count > 0, nil
}

// MarkAlerted records that a price-drop alert has been sent.
func (s *SQLite) MarkAlerted(ctx context.Context, userID int64, synthID, date string, price float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO price_alerts (user_id, synth_id, alert_date, price) VALUES (?, ?, ?, ?)`,
		userID, synthID, date, price,
	)
	if err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}
	return nil
}

// ListChats returns every Telegram chat bound to a user.
func (s *SQLite) ListChats(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id FROM users WHERE chat_id IS NOT NULL ORDER BY chat_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chats []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, id)
	}
	return chats, rows.Err()
}

// IsNewsSeen checks whether a feed item has already been broadcast.
func (s *SQLite) IsNewsSeen(ctx context.Context, feedURL, guid string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_news WHERE feed_url = ? AND guid = ?`,
		feedURL, guid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check news seen: %w", err)
	}
	return count > 0, nil
}

// MarkNewsSeen records that a feed item has been broadcast.
func (s *SQLite) MarkNewsSeen(ctx context.Context, feedURL, guid string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_news (feed_url, guid) VALUES (?, ?)`,
		feedURL, guid,
	)
	if err != nil {
		return fmt.Errorf("mark news seen: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLite) profile(ctx context.Context, q querier, userID int64) (*model.Profile, error) {
	profile := &model.Profile{
		WatchedSynths: []model.WatchedSynth{},
		CompareList:   []string{},
	}

	rows, err := q.QueryContext(ctx,
		`SELECT synth_id, notifications_enabled FROM watched_synths WHERE user_id = ? ORDER BY created_at, synth_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query watches: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var w model.WatchedSynth
		var enabled int
		if err := rows.Scan(&w.SynthID, &enabled); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		w.NotificationsEnabled = enabled == 1
		profile.WatchedSynths = append(profile.WatchedSynths, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	compareRows, err := q.QueryContext(ctx,
		`SELECT synth_id FROM compare_items WHERE user_id = ? ORDER BY created_at, synth_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query compares: %w", err)
	}
	defer func() { _ = compareRows.Close() }()
	for compareRows.Next() {
		var id string
		if err := compareRows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan compare: %w", err)
		}
		profile.CompareList = append(profile.CompareList, id)
	}
	return profile, compareRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var chatID sql.NullInt64
	var created sql.NullString
	err := row.Scan(&u.ID, &u.AuthKey, &chatID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if chatID.Valid {
		u.ChatID = &chatID.Int64
	}
	if created.Valid {
		u.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &u, nil
}
