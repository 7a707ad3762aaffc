// Package store persists the video catalog and viewer entitlements in
// SQLite. It is the storage collaborator the resolution and access cores
// read from; normalization itself happens in the callers so this package
// stays a dumb durability layer.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"coursecast/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	raw_source    TEXT NOT NULL,
	provider      TEXT NOT NULL,
	playable_uri  TEXT NOT NULL,
	delivery_mode TEXT NOT NULL,
	protocol_hint TEXT NOT NULL,
	is_free       INTEGER NOT NULL DEFAULT 0,
	unlock_period INTEGER,
	publisher_id  TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS subscriptions (
	viewer_id    TEXT NOT NULL,
	publisher_id TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active',
	PRIMARY KEY (viewer_id, publisher_id)
);

CREATE TABLE IF NOT EXISTS period_unlocks (
	viewer_id    TEXT NOT NULL,
	publisher_id TEXT NOT NULL,
	period       INTEGER NOT NULL,
	PRIMARY KEY (viewer_id, publisher_id, period)
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// modernc/sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent API handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateVideo inserts a catalog entry. The caller supplies the ID and the
// already-normalized source.
func (s *Store) CreateVideo(v *media.VideoRecord) error {
	if v.ID == "" {
		return fmt.Errorf("video ID cannot be empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO videos (id, title, description, category, raw_source,
			provider, playable_uri, delivery_mode, protocol_hint,
			is_free, unlock_period, publisher_id, thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, v.Category, v.RawSource,
		v.Source.Provider.String(), v.Source.PlayableURI,
		v.Source.Delivery.String(), v.Source.Protocol.String(),
		boolToInt(v.IsFree), nullableInt(v.UnlockPeriod), v.PublisherID, v.ThumbnailURL)
	if err != nil {
		return fmt.Errorf("inserting video: %w", err)
	}
	return nil
}

// UpdateVideoSource replaces a video's raw input and its re-normalized
// resolved source, preserving the compute-once-per-edit lifecycle.
func (s *Store) UpdateVideoSource(id, raw string, src media.ResolvedSource) error {
	res, err := s.db.Exec(`
		UPDATE videos
		SET raw_source = ?, provider = ?, playable_uri = ?, delivery_mode = ?, protocol_hint = ?
		WHERE id = ?`,
		raw, src.Provider.String(), src.PlayableURI,
		src.Delivery.String(), src.Protocol.String(), id)
	if err != nil {
		return fmt.Errorf("updating video source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("video %q not found", id)
	}
	return nil
}

// GetVideo returns a catalog entry, or (nil, nil) when it doesn't exist.
func (s *Store) GetVideo(id string) (*media.VideoRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, category, raw_source,
			provider, playable_uri, delivery_mode, protocol_hint,
			is_free, unlock_period, publisher_id, thumbnail_url
		FROM videos WHERE id = ?`, id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading video: %w", err)
	}
	return v, nil
}

// ListVideos returns all catalog entries, optionally filtered by
// publisher.
func (s *Store) ListVideos(publisherID string) ([]media.VideoRecord, error) {
	query := `
		SELECT id, title, description, category, raw_source,
			provider, playable_uri, delivery_mode, protocol_hint,
			is_free, unlock_period, publisher_id, thumbnail_url
		FROM videos`
	args := []any{}
	if publisherID != "" {
		query += ` WHERE publisher_id = ?`
		args = append(args, publisherID)
	}
	query += ` ORDER BY title`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	var videos []media.VideoRecord
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// SetSubscription records or cancels a viewer's subscription to a
// publisher.
func (s *Store) SetSubscription(viewerID, publisherID string, active bool) error {
	status := "cancelled"
	if active {
		status = "active"
	}
	_, err := s.db.Exec(`
		INSERT INTO subscriptions (viewer_id, publisher_id, status) VALUES (?, ?, ?)
		ON CONFLICT (viewer_id, publisher_id) DO UPDATE SET status = excluded.status`,
		viewerID, publisherID, status)
	if err != nil {
		return fmt.Errorf("recording subscription: %w", err)
	}
	return nil
}

// UnlockPeriods grants the viewer the given period indexes for a
// publisher. Already-unlocked periods are kept.
func (s *Store) UnlockPeriods(viewerID, publisherID string, periods []int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range periods {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO period_unlocks (viewer_id, publisher_id, period)
			VALUES (?, ?, ?)`, viewerID, publisherID, p); err != nil {
			return fmt.Errorf("unlocking period %d: %w", p, err)
		}
	}
	return tx.Commit()
}

// SubscriptionActive implements access.EntitlementSource. Query failures
// count as not subscribed: entitlement checks fail closed.
func (s *Store) SubscriptionActive(viewerID, publisherID string) bool {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM subscriptions
		WHERE viewer_id = ? AND publisher_id = ? AND status = 'active'`,
		viewerID, publisherID).Scan(&one)
	return err == nil
}

// UnlockedPeriods implements access.EntitlementSource. Query failures
// yield the empty set: entitlement checks fail closed.
func (s *Store) UnlockedPeriods(viewerID, publisherID string) map[int]bool {
	rows, err := s.db.Query(`
		SELECT period FROM period_unlocks
		WHERE viewer_id = ? AND publisher_id = ?`, viewerID, publisherID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	periods := make(map[int]bool)
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil
		}
		periods[p] = true
	}
	if rows.Err() != nil {
		return nil
	}
	return periods
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*media.VideoRecord, error) {
	var (
		v        media.VideoRecord
		provider string
		delivery string
		protocol string
		isFree   int
		period   sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Category, &v.RawSource,
		&provider, &v.Source.PlayableURI, &delivery, &protocol,
		&isFree, &period, &v.PublisherID, &v.ThumbnailURL)
	if err != nil {
		return nil, err
	}

	v.Source.Provider = media.ParseProvider(provider)
	v.Source.Delivery = media.ParseDeliveryMode(delivery)
	v.Source.Protocol = media.ParseProtocol(protocol)
	v.IsFree = isFree != 0
	if period.Valid {
		p := int(period.Int64)
		v.UnlockPeriod = &p
	}
	return &v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
