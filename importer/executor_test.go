package importer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"eventdesk/event"
)

// fakeStore is an in-memory Store with the enum rows pre-seeded, mirroring
// what the SQLite schema does at creation time.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	tables  map[string]map[string]int64
	events  []event.Record
	inserts map[string]int

	failFind   error
	failInsert error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		nextID: 1,
		tables: map[string]map[string]int64{
			"venues":         {},
			"companies":      {},
			"categories":     {},
			"sub_categories": {},
		},
		inserts: map[string]int{},
	}
	for _, category := range event.Categories() {
		s.seed("categories", string(category))
	}
	for _, subCategory := range event.SubCategories() {
		s.seed("sub_categories", string(subCategory))
	}
	return s
}

func (s *fakeStore) seed(table, name string) {
	s.tables[table][name] = s.nextID
	s.nextID++
}

func (s *fakeStore) FindIDByName(table, nameCol, value string) (int64, bool, error) {
	if s.failFind != nil {
		return 0, false, s.failFind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tables[table][value]
	return id, ok, nil
}

func (s *fakeStore) InsertByName(table, nameCol, value string) (int64, error) {
	if s.failInsert != nil {
		return 0, s.failInsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[table][value]; exists {
		return 0, fmt.Errorf("unique constraint violation on %s.%s", table, value)
	}
	id := s.nextID
	s.nextID++
	s.tables[table][value] = id
	s.inserts[table]++
	return id, nil
}

func (s *fakeStore) FindDuplicateEvent(name, startDate string, venueID, companyID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.events {
		if rec.Name == name && rec.StartDate == startDate && rec.VenueID == venueID && rec.CompanyID == companyID {
			return rec.ID, true, nil
		}
	}
	return 0, false, nil
}

func (s *fakeStore) InsertEvent(rec event.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	s.events = append(s.events, rec)
	return rec.ID, nil
}

func galaRow() ImportRow {
	return ImportRow{
		Company:         "Acme",
		Status:          "announced",
		EventTitle:      "Gala",
		StartDate:       "2024-12-01",
		VenueName:       "New Venue",
		CategoryName:    "Concert",
		SubCategoryName: "Music",
	}
}

func TestExecutor_EndToEndScenario(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	results := NewExecutor(store, 1).Run([]ImportRow{galaRow()})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success || results[0].Index != 0 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	if _, ok := store.tables["venues"]["New Venue"]; !ok {
		t.Fatalf("venue not created")
	}
	if _, ok := store.tables["companies"]["Acme"]; !ok {
		t.Fatalf("company not created")
	}
	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	rec := store.events[0]
	if rec.Status != event.StatusAnnounced {
		t.Fatalf("status: want ANNOUNCED, got %s", rec.Status)
	}
	if rec.StartDate != "2024-12-01" {
		t.Fatalf("start date: got %q", rec.StartDate)
	}
}

func TestExecutor_IdempotentReimportSkips(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	executor := NewExecutor(store, 1)

	first := executor.Run([]ImportRow{galaRow()})
	if !first[0].Success {
		t.Fatalf("first import failed: %+v", first[0])
	}

	second := executor.Run([]ImportRow{galaRow()})
	if second[0].Success || !second[0].Skipped {
		t.Fatalf("second import should skip: %+v", second[0])
	}
	if second[0].Error == "" {
		t.Fatalf("skip result should carry a message")
	}
	if len(store.events) != 1 {
		t.Fatalf("duplicate insert happened: %d events", len(store.events))
	}
}

func TestExecutor_PartialFailureIsolation(t *testing.T) {
	t.Parallel()

	bad := galaRow()
	bad.EventTitle = "Broken"
	bad.CategoryName = "Unknown Category"

	other := galaRow()
	other.EventTitle = "Closing Night"

	store := newFakeStore()
	results := NewExecutor(store, 1).Run([]ImportRow{galaRow(), bad, other})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("good rows affected by bad row: %+v", results)
	}
	if results[1].Success || results[1].Error == "" {
		t.Fatalf("bad row should fail with message: %+v", results[1])
	}
	if len(store.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(store.events))
	}
}

func TestExecutor_EnumRejectionCreatesNoEntities(t *testing.T) {
	t.Parallel()

	row := galaRow()
	row.CategoryName = "Unknown Category"

	store := newFakeStore()
	results := NewExecutor(store, 1).Run([]ImportRow{row})

	if results[0].Success {
		t.Fatalf("row with unknown category must fail")
	}
	if store.inserts["venues"] != 0 || store.inserts["companies"] != 0 {
		t.Fatalf("validation failure must not create reference rows: %+v", store.inserts)
	}
	if len(store.events) != 0 {
		t.Fatalf("no insert may be attempted")
	}
}

func TestExecutor_MissingRequiredFieldsFail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	executor := NewExecutor(store, 1)

	for _, mutate := range []func(*ImportRow){
		func(r *ImportRow) { r.EventTitle = "" },
		func(r *ImportRow) { r.VenueName = " " },
		func(r *ImportRow) { r.Company = "" },
		func(r *ImportRow) { r.SubCategoryName = "Nope" },
	} {
		row := galaRow()
		mutate(&row)
		result := executor.Run([]ImportRow{row})[0]
		if result.Success || result.Error == "" {
			t.Fatalf("invalid row accepted: %+v", result)
		}
	}
}

func TestExecutor_ReferenceReuseAcrossConcurrentRows(t *testing.T) {
	t.Parallel()

	rows := make([]ImportRow, 16)
	for i := range rows {
		row := galaRow()
		row.EventTitle = fmt.Sprintf("Show %d", i)
		row.VenueName = "Shared Venue"
		rows[i] = row
	}

	store := newFakeStore()
	results := NewExecutor(store, 8).Run(rows)

	for _, result := range results {
		if !result.Success {
			t.Fatalf("row %d failed: %s", result.Index, result.Error)
		}
	}
	if store.inserts["venues"] != 1 {
		t.Fatalf("shared venue created %d times", store.inserts["venues"])
	}
	if store.inserts["companies"] != 1 {
		t.Fatalf("shared company created %d times", store.inserts["companies"])
	}
}

func TestExecutor_IdenticalConcurrentRowsInsertOnce(t *testing.T) {
	t.Parallel()

	rows := make([]ImportRow, 16)
	for i := range rows {
		rows[i] = galaRow()
	}

	store := newFakeStore()
	results := NewExecutor(store, 8).Run(rows)

	succeeded, skipped := 0, 0
	for _, result := range results {
		switch {
		case result.Success:
			succeeded++
		case result.Skipped:
			skipped++
		default:
			t.Fatalf("identical row must succeed or skip, not fail: %+v", result)
		}
	}
	if succeeded != 1 || skipped != 15 {
		t.Fatalf("want 1 success and 15 skips, got %d/%d", succeeded, skipped)
	}
	if len(store.events) != 1 {
		t.Fatalf("identical rows inserted %d events", len(store.events))
	}
}

func TestExecutor_ResultsIndexedByInputOrder(t *testing.T) {
	t.Parallel()

	rows := make([]ImportRow, 10)
	for i := range rows {
		row := galaRow()
		row.EventTitle = fmt.Sprintf("Event %d", i)
		rows[i] = row
	}

	results := NewExecutor(newFakeStore(), 4).Run(rows)
	for i, result := range results {
		if result.Index != i {
			t.Fatalf("result %d has index %d", i, result.Index)
		}
	}
}

func TestExecutor_StoreFailureIsRowScoped(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failFind = errors.New("connection reset")

	results := NewExecutor(store, 1).Run([]ImportRow{galaRow(), galaRow()})
	for _, result := range results {
		if result.Success || result.Skipped {
			t.Fatalf("store failure must fail the row: %+v", result)
		}
	}
	if len(results) != 2 {
		t.Fatalf("batch must still produce all results")
	}
}
