package importer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"eventdesk/event"
)

// Reference tables the executor resolves against. Venues and companies are
// free-form (create-on-miss); categories and sub-categories are closed
// enumerations whose rows are seeded at schema creation and only looked up.
const (
	tableVenues        = "venues"
	tableCompanies     = "companies"
	tableCategories    = "categories"
	tableSubCategories = "sub_categories"
	nameColumn         = "name"
)

// Store is the storage collaborator required by the import pipeline. Any
// failure is row-scoped: the executor captures it into that row's result and
// moves on.
type Store interface {
	FindIDByName(table, nameColumn, value string) (int64, bool, error)
	InsertByName(table, nameColumn, value string) (int64, error)
	FindDuplicateEvent(name, startDate string, venueID, companyID int64) (int64, bool, error)
	InsertEvent(rec event.Record) (int64, error)
}

// RowResult is the outcome for one input row, correlated by original index.
type RowResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Executor runs one import batch. Rows are processed independently; there is
// no batch-level abort. With workers > 1 rows run concurrently; find-or-create
// for a given (table, name) and the duplicate-check-plus-insert for a given
// duplicate key each funnel through a per-key lock, so identical concurrent
// rows insert exactly once.
type Executor struct {
	store   Store
	workers int
	locks   nameLocks
}

func NewExecutor(store Store, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		store:   store,
		workers: workers,
		locks:   nameLocks{locks: make(map[string]*sync.Mutex)},
	}
}

// Run processes every row and returns one result per input row, ordered by
// original index regardless of processing order.
func (e *Executor) Run(rows []ImportRow) []RowResult {
	results := make([]RowResult, len(rows))
	if e.workers <= 1 {
		for i, row := range rows {
			results[i] = e.runRow(i, row)
		}
		return results
	}

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[index] = e.runRow(index, rows[index])
		}(i)
	}
	wg.Wait()

	return results
}

func (e *Executor) runRow(index int, row ImportRow) RowResult {
	if err := validateRow(row); err != nil {
		return RowResult{Index: index, Error: err.Error()}
	}

	venueID, err := e.findOrCreate(tableVenues, row.VenueName)
	if err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("resolve venue: %v", err)}
	}
	companyID, err := e.findOrCreate(tableCompanies, row.Company)
	if err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("resolve company: %v", err)}
	}
	categoryID, err := e.lookupOnly(tableCategories, row.CategoryName)
	if err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("resolve category: %v", err)}
	}
	subCategoryID, err := e.lookupOnly(tableSubCategories, row.SubCategoryName)
	if err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("resolve sub-category: %v", err)}
	}

	return e.insertUnlessDuplicate(index, row, venueID, companyID, categoryID, subCategoryID)
}

// insertUnlessDuplicate serializes the duplicate check and insert for a given
// duplicate key, so two identical rows in one concurrent batch yield one
// success and one skip instead of racing past the check into a constraint
// violation.
func (e *Executor) insertUnlessDuplicate(index int, row ImportRow, venueID, companyID, categoryID, subCategoryID int64) RowResult {
	key := fmt.Sprintf("events\x00%s\x00%s\x00%d\x00%d", row.EventTitle, row.StartDate, venueID, companyID)
	lock := e.locks.acquire(key)
	lock.Lock()
	defer lock.Unlock()

	_, exists, err := e.store.FindDuplicateEvent(row.EventTitle, row.StartDate, venueID, companyID)
	if err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("check duplicate: %v", err)}
	}
	if exists {
		return RowResult{Index: index, Skipped: true, Error: "duplicate row"}
	}

	rec := event.Record{
		Name:           row.EventTitle,
		Status:         event.NormalizeStatus(row.Status),
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		VenueID:        venueID,
		CompanyID:      companyID,
		CategoryID:     categoryID,
		SubCategoryID:  subCategoryID,
		TotalAttendees: row.TotalAttendees,
		AttendeeBucket: event.ParseAttendeeBucket(row.AttendeeCategory),
		Details:        row.Details,
	}
	if _, err := e.store.InsertEvent(rec); err != nil {
		return RowResult{Index: index, Error: fmt.Sprintf("insert event: %v", err)}
	}

	return RowResult{Index: index, Success: true}
}

// validateRow enforces the pre-insert invariant: title, venue, company, and
// both closed enumerations must be present and valid. Status is not checked
// here; invalid status values default to PENDING instead of failing the row.
func validateRow(row ImportRow) error {
	if strings.TrimSpace(row.EventTitle) == "" {
		return errors.New("event title is required")
	}
	if strings.TrimSpace(row.VenueName) == "" {
		return errors.New("venue name is required")
	}
	if strings.TrimSpace(row.Company) == "" {
		return errors.New("company is required")
	}
	if _, err := event.ParseCategory(row.CategoryName); err != nil {
		return err
	}
	if _, err := event.ParseSubCategory(row.SubCategoryName); err != nil {
		return err
	}
	return nil
}

func (e *Executor) findOrCreate(table, name string) (int64, error) {
	lock := e.locks.acquire(table + "\x00" + name)
	lock.Lock()
	defer lock.Unlock()

	id, found, err := e.store.FindIDByName(table, nameColumn, name)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return e.store.InsertByName(table, nameColumn, name)
}

func (e *Executor) lookupOnly(table, name string) (int64, error) {
	id, found, err := e.store.FindIDByName(table, nameColumn, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%s row %q is not provisioned", table, name)
	}
	return id, nil
}

type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *nameLocks) acquire(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
