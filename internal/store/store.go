// Package store persists meetings, tags, and their associations in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
)

// ErrNotFound reports an unknown meeting or tag reference.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	duration REAL NOT NULL,
	audio_path TEXT NOT NULL,
	transcript TEXT NOT NULL,
	summary TEXT
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS meeting_tags (
	meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (meeting_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(date);
`

// Store is the SQLite-backed meeting store. Reads may run concurrently;
// writes are serialized through mu so tag upserts never race into
// duplicate rows.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// Open opens (creating if necessary) the meeting database at dbPath.
func Open(dbPath string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the meeting keyed by its ID, along with all of its tags and
// tag associations. Saving the same meeting twice is a no-op.
func (s *Store) Save(m *meeting.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript, err := json.Marshal(m.Transcript)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO meetings (id, title, date, duration, audio_path, transcript, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Date.Format(time.RFC3339Nano), m.Duration,
		m.AudioPath, string(transcript), m.Summary,
	)
	if err != nil {
		return fmt.Errorf("saving meeting: %w", err)
	}

	for _, tag := range m.Tags {
		if err := linkTag(tx, m.ID, tag); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	s.log.Debug().Str("meeting_id", m.ID).Int("segments", len(m.Transcript)).Msg("meeting saved")
	return nil
}

// Get returns the meeting with its transcript and full tag set, or
// ErrNotFound.
func (s *Store) Get(id string) (*meeting.Meeting, error) {
	row := s.db.QueryRow(`
		SELECT id, title, date, duration, audio_path, transcript, summary
		FROM meetings WHERE id = ?`, id)

	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if m.Tags, err = s.meetingTags(id); err != nil {
		return nil, err
	}
	return m, nil
}

// Filter narrows List results. All fields are optional and combine with AND.
type Filter struct {
	// Tags requires the meeting to carry every listed tag.
	Tags []string
	// TitleSearch is a case-insensitive substring match on the title.
	TitleSearch string
	// TranscriptSearch is a case-insensitive substring match on any
	// transcript segment's text.
	TranscriptSearch string
}

// List returns meetings matching the filter, most recent first.
func (s *Store) List(f Filter) ([]*meeting.Meeting, error) {
	query := `SELECT id, title, date, duration, audio_path, transcript, summary FROM meetings`
	var clauses []string
	var args []any

	if len(f.Tags) > 0 {
		placeholders := strings.Repeat("?,", len(f.Tags)-1) + "?"
		clauses = append(clauses, fmt.Sprintf(`id IN (
			SELECT mt.meeting_id FROM meeting_tags mt
			JOIN tags t ON t.id = mt.tag_id
			WHERE t.name IN (%s)
			GROUP BY mt.meeting_id
			HAVING COUNT(DISTINCT t.name) = ?)`, placeholders))
		for _, tag := range f.Tags {
			args = append(args, tag)
		}
		args = append(args, len(f.Tags))
	}
	if f.TitleSearch != "" {
		clauses = append(clauses, `LOWER(title) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, f.TitleSearch)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*meeting.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		if f.TranscriptSearch != "" && !transcriptContains(m.Transcript, f.TranscriptSearch) {
			continue
		}
		if m.Tags, err = s.meetingTags(m.ID); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Delete removes the meeting and its tag associations, pruning any tags
// left without meetings. Returns ErrNotFound for an unknown id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := pruneTags(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	s.log.Debug().Str("meeting_id", id).Msg("meeting deleted")
	return nil
}

// AddTag associates a tag with a meeting, creating the tag row if needed.
// Adding an already-present tag is a no-op. Returns ErrNotFound for an
// unknown meeting id.
func (s *Store) AddTag(id, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning tag add: %w", err)
	}
	defer tx.Rollback()

	if err := meetingExists(tx, id); err != nil {
		return err
	}
	if err := linkTag(tx, id, tag); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveTag removes a tag association. The tag row itself is pruned once
// no meetings reference it. Removing an absent tag is a no-op success.
func (s *Store) RemoveTag(id, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning tag remove: %w", err)
	}
	defer tx.Rollback()

	if err := meetingExists(tx, id); err != nil {
		return err
	}
	_, err = tx.Exec(`
		DELETE FROM meeting_tags
		WHERE meeting_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)`,
		id, tag)
	if err != nil {
		return fmt.Errorf("removing tag: %w", err)
	}
	if err := pruneTags(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Tags returns all known tag names, sorted.
func (s *Store) Tags() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// AudioPaths returns the audio paths of all stored meetings. Used by the
// cleanup scheduler to keep referenced recordings.
func (s *Store) AudioPaths() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT audio_path FROM meetings`)
	if err != nil {
		return nil, fmt.Errorf("listing audio paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = true
	}
	return paths, rows.Err()
}

func (s *Store) meetingTags(id string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN meeting_tags mt ON mt.tag_id = t.id
		WHERE mt.meeting_id = ? ORDER BY t.name`, id)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// linkTag upserts the tag row and its association inside tx.
func linkTag(tx *sql.Tx, meetingID, tag string) error {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, tag); err != nil {
		return fmt.Errorf("upserting tag: %w", err)
	}
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO meeting_tags (meeting_id, tag_id)
		VALUES (?, (SELECT id FROM tags WHERE name = ?))`, meetingID, tag)
	if err != nil {
		return fmt.Errorf("linking tag: %w", err)
	}
	return nil
}

func meetingExists(tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM meetings WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func pruneTags(tx *sql.Tx) error {
	_, err := tx.Exec(`DELETE FROM tags WHERE id NOT IN (SELECT DISTINCT tag_id FROM meeting_tags)`)
	if err != nil {
		return fmt.Errorf("pruning tags: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*meeting.Meeting, error) {
	var m meeting.Meeting
	var date, transcript string
	var summary sql.NullString

	if err := row.Scan(&m.ID, &m.Title, &date, &m.Duration, &m.AudioPath, &transcript, &summary); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return nil, fmt.Errorf("parsing meeting date: %w", err)
	}
	m.Date = parsed
	m.Summary = summary.String

	if err := json.Unmarshal([]byte(transcript), &m.Transcript); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return &m, nil
}

func transcriptContains(segments []meeting.TranscriptSegment, search string) bool {
	search = strings.ToLower(search)
	for _, seg := range segments {
		if strings.Contains(strings.ToLower(seg.Text), search) {
			return true
		}
	}
	return false
}
