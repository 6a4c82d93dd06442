package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"eventdesk/event"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var ErrEventNotFound = errors.New("event not found")

// referenceTables is the allow-list for the generic by-name primitives;
// table names are interpolated into SQL and must never come from input.
var referenceTables = map[string]bool{
	"venues":         true,
	"companies":      true,
	"categories":     true,
	"sub_categories": true,
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS venues (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS companies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS sub_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	start_date TEXT,
	end_date TEXT,
	venue_id INTEGER NOT NULL REFERENCES venues(id),
	company_id INTEGER NOT NULL REFERENCES companies(id),
	category_id INTEGER NOT NULL REFERENCES categories(id),
	sub_category_id INTEGER NOT NULL REFERENCES sub_categories(id),
	total_attendees INTEGER,
	total_attendee_category TEXT,
	details TEXT,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(name, start_date, venue_id, company_id)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return s.seedEnumRows()
}

// seedEnumRows provisions the closed-enumeration reference rows. Categories
// and sub-categories are never created during import, only looked up.
func (s *SQLiteStore) seedEnumRows() error {
	for _, category := range event.Categories() {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?);`, string(category)); err != nil {
			return fmt.Errorf("seed category %q: %w", category, err)
		}
	}
	for _, subCategory := range event.SubCategories() {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO sub_categories (name) VALUES (?);`, string(subCategory)); err != nil {
			return fmt.Errorf("seed sub-category %q: %w", subCategory, err)
		}
	}
	return nil
}

// FindIDByName looks up a reference row by exact name match.
func (s *SQLiteStore) FindIDByName(table, nameColumn, value string) (int64, bool, error) {
	if err := checkReferenceTable(table, nameColumn); err != nil {
		return 0, false, err
	}

	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = ?;`, table)
	err := s.db.QueryRow(query, value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find %s by name: %w", table, err)
	}
	return id, true, nil
}

// InsertByName inserts a reference row containing only the name and returns
// its id. INSERT OR IGNORE plus re-find makes this safe against a concurrent
// creator: the loser of the race gets the winner's id instead of an error.
func (s *SQLiteStore) InsertByName(table, nameColumn, value string) (int64, error) {
	if err := checkReferenceTable(table, nameColumn); err != nil {
		return 0, err
	}

	stmt := fmt.Sprintf(`INSERT OR IGNORE INTO %s (name) VALUES (?);`, table)
	res, err := s.db.Exec(stmt, value)
	if err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", table, value, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read inserted row count: %w", err)
	}
	if rows > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("read inserted row id: %w", err)
		}
		return id, nil
	}

	id, found, err := s.FindIDByName(table, nameColumn, value)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("insert %s %q: row vanished after ignore", table, value)
	}
	return id, nil
}

// ResolveName is the insert-or-return-existing convenience used by the
// interactive create/edit paths.
func (s *SQLiteStore) ResolveName(table, value string) (int64, error) {
	id, found, err := s.FindIDByName(table, "name", value)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return s.InsertByName(table, "name", value)
}

// FindDuplicateEvent checks the duplicate key (name, start_date, venue,
// company). Missing start dates are stored as NULL and compared as ''.
func (s *SQLiteStore) FindDuplicateEvent(name, startDate string, venueID, companyID int64) (int64, bool, error) {
	const query = `
SELECT id FROM events
WHERE name = ? AND IFNULL(start_date, '') = ? AND venue_id = ? AND company_id = ?;
`
	var id int64
	err := s.db.QueryRow(query, name, startDate, venueID, companyID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find duplicate event: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) InsertEvent(rec event.Record) (int64, error) {
	const stmt = `
INSERT INTO events (
	name,
	status,
	start_date,
	end_date,
	venue_id,
	company_id,
	category_id,
	sub_category_id,
	total_attendees,
	total_attendee_category,
	details
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		stmt,
		rec.Name,
		string(rec.Status),
		nullIfEmpty(rec.StartDate),
		nullIfEmpty(rec.EndDate),
		rec.VenueID,
		rec.CompanyID,
		rec.CategoryID,
		rec.SubCategoryID,
		nullIfNilInt(rec.TotalAttendees),
		nullIfEmpty(string(rec.AttendeeBucket)),
		nullIfEmpty(rec.Details),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted event id: %w", err)
	}
	return id, nil
}

// EventFilter narrows listings. Company scopes collaborator visibility;
// Status filters the dashboard tabs. Empty values match everything.
type EventFilter struct {
	Status  string
	Company string
}

const eventSelect = `
SELECT
	e.id,
	e.name,
	e.status,
	IFNULL(e.start_date, ''),
	IFNULL(e.end_date, ''),
	v.name,
	co.name,
	c.name,
	sc.name,
	e.total_attendees,
	IFNULL(e.total_attendee_category, ''),
	IFNULL(e.details, '')
FROM events e
JOIN venues v ON v.id = e.venue_id
JOIN companies co ON co.id = e.company_id
JOIN categories c ON c.id = e.category_id
JOIN sub_categories sc ON sc.id = e.sub_category_id
`

func (s *SQLiteStore) ListEvents(filter EventFilter) ([]event.Event, error) {
	query := eventSelect + `WHERE 1 = 1`
	args := make([]any, 0, 2)
	if filter.Status != "" {
		query += ` AND e.status = ?`
		args = append(args, filter.Status)
	}
	if filter.Company != "" {
		query += ` AND co.name = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY e.start_date, e.id;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, 64)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func (s *SQLiteStore) GetEventByID(id int64) (event.Event, bool, error) {
	if id <= 0 {
		return event.Event{}, false, fmt.Errorf("event id must be > 0")
	}

	row := s.db.QueryRow(eventSelect+`WHERE e.id = ?;`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, false, nil
	}
	if err != nil {
		return event.Event{}, false, err
	}
	return ev, true, nil
}

// UpdateEvent replaces all user-editable fields for the row with rec.ID.
func (s *SQLiteStore) UpdateEvent(rec event.Record) error {
	if rec.ID <= 0 {
		return fmt.Errorf("event id must be > 0")
	}

	const stmt = `
UPDATE events
SET name = ?,
	status = ?,
	start_date = ?,
	end_date = ?,
	venue_id = ?,
	company_id = ?,
	category_id = ?,
	sub_category_id = ?,
	total_attendees = ?,
	total_attendee_category = ?,
	details = ?
WHERE id = ?;`

	res, err := s.db.Exec(
		stmt,
		rec.Name,
		string(rec.Status),
		nullIfEmpty(rec.StartDate),
		nullIfEmpty(rec.EndDate),
		rec.VenueID,
		rec.CompanyID,
		rec.CategoryID,
		rec.SubCategoryID,
		nullIfNilInt(rec.TotalAttendees),
		nullIfEmpty(string(rec.AttendeeBucket)),
		nullIfEmpty(rec.Details),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update event %d: %w", rec.ID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteEvent(id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("event id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM events WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete event %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListNames returns all rows of a reference table ordered by name, for the
// lookup endpoint and form population.
func (s *SQLiteStore) ListNames(table string) ([]event.NamedRow, error) {
	if err := checkReferenceTable(table, "name"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name;`, table)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]event.NamedRow, 0, 32)
	for rows.Next() {
		var row event.NamedRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return out, nil
}

// CountRow is one label/count pair for the summary endpoint.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func (s *SQLiteStore) CountsByStatus(company string) ([]CountRow, error) {
	query := `
SELECT e.status, COUNT(*)
FROM events e
JOIN companies co ON co.id = e.company_id
WHERE ? = '' OR co.name = ?
GROUP BY e.status
ORDER BY e.status;`
	return s.queryCounts(query, company)
}

func (s *SQLiteStore) CountsByCategory(company string) ([]CountRow, error) {
	query := `
SELECT c.name, COUNT(*)
FROM events e
JOIN categories c ON c.id = e.category_id
JOIN companies co ON co.id = e.company_id
WHERE ? = '' OR co.name = ?
GROUP BY c.name
ORDER BY c.name;`
	return s.queryCounts(query, company)
}

func (s *SQLiteStore) queryCounts(query, company string) ([]CountRow, error) {
	rows, err := s.db.Query(query, company, company)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make([]CountRow, 0, 8)
	for rows.Next() {
		var row CountRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		ev        event.Event
		attendees sql.NullInt64
	)
	err := row.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Status,
		&ev.StartDate,
		&ev.EndDate,
		&ev.Venue,
		&ev.Company,
		&ev.Category,
		&ev.SubCategory,
		&attendees,
		&ev.AttendeeBucket,
		&ev.Details,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, err
		}
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	if attendees.Valid {
		count := int(attendees.Int64)
		ev.TotalAttendees = &count
	}
	return ev, nil
}

func checkReferenceTable(table, nameColumn string) error {
	if !referenceTables[table] {
		return fmt.Errorf("unknown reference table %q", table)
	}
	if nameColumn != "name" {
		return fmt.Errorf("unknown name column %q for table %q", nameColumn, table)
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfNilInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
