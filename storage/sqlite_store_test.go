package storage

import (
	"path/filepath"
	"testing"

	"eventdesk/event"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "eventdesk.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertTestEvent(t *testing.T, store *SQLiteStore, name, startDate, venue, company string) int64 {
	t.Helper()

	venueID, err := store.ResolveName("venues", venue)
	if err != nil {
		t.Fatalf("resolve venue: %v", err)
	}
	companyID, err := store.ResolveName("companies", company)
	if err != nil {
		t.Fatalf("resolve company: %v", err)
	}
	categoryID, _, err := store.FindIDByName("categories", "name", "Concert")
	if err != nil {
		t.Fatalf("find category: %v", err)
	}
	subCategoryID, _, err := store.FindIDByName("sub_categories", "name", "Music")
	if err != nil {
		t.Fatalf("find sub-category: %v", err)
	}

	id, err := store.InsertEvent(event.Record{
		Name:          name,
		Status:        event.StatusAnnounced,
		StartDate:     startDate,
		VenueID:       venueID,
		CompanyID:     companyID,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	})
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return id
}

func TestOpenSQLite_SeedsEnumRows(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	categories, err := store.ListNames("categories")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != len(event.Categories()) {
		t.Fatalf("expected %d categories, got %d", len(event.Categories()), len(categories))
	}

	subCategories, err := store.ListNames("sub_categories")
	if err != nil {
		t.Fatalf("list sub-categories: %v", err)
	}
	if len(subCategories) != len(event.SubCategories()) {
		t.Fatalf("expected %d sub-categories, got %d", len(event.SubCategories()), len(subCategories))
	}
}

func TestFindIDByName_MissRowReturnsFalse(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, found, err := store.FindIDByName("venues", "name", "Nowhere"); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}
}

func TestFindIDByName_RejectsUnknownTable(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, _, err := store.FindIDByName("events; DROP TABLE events", "name", "x"); err == nil {
		t.Fatalf("expected error for unknown table")
	}
	if _, _, err := store.FindIDByName("venues", "id", "x"); err == nil {
		t.Fatalf("expected error for unknown name column")
	}
}

func TestInsertByName_ConcurrentLoserGetsWinnerID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	first, err := store.InsertByName("venues", "name", "Stadium")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second, err := store.InsertByName("venues", "name", "Stadium")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if first != second {
		t.Fatalf("expected same id, got %d and %d", first, second)
	}

	venues, err := store.ListNames("venues")
	if err != nil {
		t.Fatalf("list venues: %v", err)
	}
	if len(venues) != 1 {
		t.Fatalf("expected 1 venue row, got %d", len(venues))
	}
}

func TestFindDuplicateEvent_MatchesOnCompositeKey(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	insertTestEvent(t, store, "Gala", "2024-12-01", "Stadium", "Acme")

	venueID, _, _ := store.FindIDByName("venues", "name", "Stadium")
	companyID, _, _ := store.FindIDByName("companies", "name", "Acme")

	if _, found, err := store.FindDuplicateEvent("Gala", "2024-12-01", venueID, companyID); err != nil || !found {
		t.Fatalf("expected duplicate hit, found=%v err=%v", found, err)
	}
	if _, found, _ := store.FindDuplicateEvent("Gala", "2024-12-02", venueID, companyID); found {
		t.Fatalf("different start date must not match")
	}
	if _, found, _ := store.FindDuplicateEvent("Other", "2024-12-01", venueID, companyID); found {
		t.Fatalf("different name must not match")
	}
}

func TestFindDuplicateEvent_NullStartDateMatchesEmpty(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	insertTestEvent(t, store, "Undated", "", "Hall", "Acme")

	venueID, _, _ := store.FindIDByName("venues", "name", "Hall")
	companyID, _, _ := store.FindIDByName("companies", "name", "Acme")

	if _, found, err := store.FindDuplicateEvent("Undated", "", venueID, companyID); err != nil || !found {
		t.Fatalf("expected duplicate hit on NULL start date, found=%v err=%v", found, err)
	}
}

func TestListEvents_FiltersByStatusAndCompany(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	insertTestEvent(t, store, "Gala", "2024-12-01", "Stadium", "Acme")
	insertTestEvent(t, store, "Expo", "2024-11-01", "Hall", "Globex")

	all, err := store.ListEvents(EventFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].Name != "Expo" {
		t.Fatalf("expected start-date ordering, got %s first", all[0].Name)
	}

	scoped, err := store.ListEvents(EventFilter{Company: "Acme"})
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Company != "Acme" {
		t.Fatalf("company scoping broken: %+v", scoped)
	}

	announced, err := store.ListEvents(EventFilter{Status: string(event.StatusAnnounced)})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(announced) != 2 {
		t.Fatalf("status filter broken: %+v", announced)
	}
}

func TestGetUpdateDeleteEvent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	id := insertTestEvent(t, store, "Gala", "2024-12-01", "Stadium", "Acme")

	ev, found, err := store.GetEventByID(id)
	if err != nil || !found {
		t.Fatalf("get event: found=%v err=%v", found, err)
	}
	if ev.Venue != "Stadium" || ev.Category != "Concert" || ev.SubCategory != "Music" {
		t.Fatalf("joined names wrong: %+v", ev)
	}

	venueID, _, _ := store.FindIDByName("venues", "name", "Stadium")
	companyID, _, _ := store.FindIDByName("companies", "name", "Acme")
	categoryID, _, _ := store.FindIDByName("categories", "name", "Concert")
	subCategoryID, _, _ := store.FindIDByName("sub_categories", "name", "Music")

	err = store.UpdateEvent(event.Record{
		ID:            id,
		Name:          "Gala Night",
		Status:        event.StatusPending,
		StartDate:     "2024-12-02",
		VenueID:       venueID,
		CompanyID:     companyID,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}

	updated, _, err := store.GetEventByID(id)
	if err != nil {
		t.Fatalf("get updated event: %v", err)
	}
	if updated.Name != "Gala Night" || updated.StartDate != "2024-12-02" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := store.UpdateEvent(event.Record{ID: 9999, Name: "x", VenueID: venueID, CompanyID: companyID, CategoryID: categoryID, SubCategoryID: subCategoryID}); err != ErrEventNotFound {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	deleted, err := store.DeleteEvent(id)
	if err != nil || !deleted {
		t.Fatalf("delete event: deleted=%v err=%v", deleted, err)
	}
	if _, found, _ := store.GetEventByID(id); found {
		t.Fatalf("event still present after delete")
	}
}

func TestCountsByStatusAndCategory(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	insertTestEvent(t, store, "Gala", "2024-12-01", "Stadium", "Acme")
	insertTestEvent(t, store, "Expo", "2024-11-01", "Hall", "Globex")

	byStatus, err := store.CountsByStatus("")
	if err != nil {
		t.Fatalf("counts by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Label != string(event.StatusAnnounced) || byStatus[0].Count != 2 {
		t.Fatalf("unexpected status counts: %+v", byStatus)
	}

	scoped, err := store.CountsByStatus("Acme")
	if err != nil {
		t.Fatalf("scoped counts: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Count != 1 {
		t.Fatalf("unexpected scoped counts: %+v", scoped)
	}

	byCategory, err := store.CountsByCategory("")
	if err != nil {
		t.Fatalf("counts by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Label != "Concert" || byCategory[0].Count != 2 {
		t.Fatalf("unexpected category counts: %+v", byCategory)
	}
}
