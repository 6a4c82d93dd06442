// Package web serves the eventdesk back-office JSON API. UI rendering is a
// separate concern; every endpoint speaks JSON.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"eventdesk/auth"
	"eventdesk/config"
	"eventdesk/event"
	"eventdesk/importer"
	"eventdesk/storage"
)

// errForeignCompany marks a collaborator trying to manage another company's
// event; it maps to 403 instead of the generic 400.
var errForeignCompany = errors.New("event belongs to another company")

type Server struct {
	store   *storage.SQLiteStore
	tokens  *auth.TokenStore
	cfg     config.Config
	logger  *logrus.Logger
	handler http.Handler
}

type importResponse struct {
	Results []importer.RowResult `json:"results"`
}

type eventMutationRequest struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Venue            string `json:"venue"`
	Company          string `json:"company"`
	Category         string `json:"category"`
	SubCategory      string `json:"subCategory"`
	TotalAttendees   *int   `json:"totalAttendees"`
	AttendeeCategory string `json:"totalAttendeeCategory"`
	Details          string `json:"details"`
}

type lookupResponse struct {
	Venues          []event.NamedRow       `json:"venues"`
	Companies       []event.NamedRow       `json:"companies"`
	Categories      []event.Category       `json:"categories"`
	SubCategories   []event.SubCategory    `json:"subCategories"`
	Statuses        []event.Status         `json:"statuses"`
	AttendeeBuckets []event.AttendeeBucket `json:"attendeeBuckets"`
}

type summaryResponse struct {
	Total      int                `json:"total"`
	ByStatus   []storage.CountRow `json:"byStatus"`
	ByCategory []storage.CountRow `json:"byCategory"`
}

func NewServer(store *storage.SQLiteStore, tokens *auth.TokenStore, cfg config.Config, logger *logrus.Logger) http.Handler {
	server := &Server{
		store:  store,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import", server.withUser(auth.Role.CanImport, server.handleImport))
	mux.HandleFunc("POST /api/import/file", server.withUser(auth.Role.CanImport, server.handleImportFile))
	mux.HandleFunc("GET /api/events", server.withUser(anyRole, server.handleEventList))
	mux.HandleFunc("POST /api/events", server.withUser(auth.Role.CanEdit, server.handleEventCreate))
	mux.HandleFunc("GET /api/events/{id}", server.withUser(anyRole, server.handleEventGet))
	mux.HandleFunc("PATCH /api/events/{id}", server.withUser(auth.Role.CanEdit, server.handleEventPatch))
	mux.HandleFunc("DELETE /api/events/{id}", server.withUser(auth.Role.CanDelete, server.handleEventDelete))
	mux.HandleFunc("GET /api/lookup", server.withUser(anyRole, server.handleLookup))
	mux.HandleFunc("GET /api/summary", server.withUser(anyRole, server.handleSummary))
	mux.Handle("GET /metrics", promhttp.Handler())

	server.handler = observe(logger, mux)
	return server
}

func anyRole(auth.Role) bool { return true }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, user auth.User) {
	var rawRows []map[string]any
	if err := decodeJSON(r, &rawRows); err != nil {
		http.Error(w, fmt.Sprintf("request body must be a JSON array of rows: %v", err), http.StatusBadRequest)
		return
	}

	rows := importer.NormalizeRows(rawRows)
	results := importer.NewExecutor(s.store, s.cfg.Import.Workers).Run(rows)
	s.recordBatch(results, user)

	writeJSON(w, http.StatusOK, importResponse{Results: results})
}

func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request, user auth.User) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", tempUploadPattern(header.Filename))
	if err != nil {
		http.Error(w, fmt.Sprintf("create temp upload: %v", err), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		http.Error(w, fmt.Sprintf("save upload: %v", err), http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, fmt.Sprintf("close upload temp file: %v", err), http.StatusInternalServerError)
		return
	}

	format, err := importer.InferFormat(header.Filename, r.FormValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reader, err := importer.ReaderForFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := reader.Read(tmpPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rawRows := make([]map[string]any, len(records))
	for i, record := range records {
		rawRows[i] = record.Values
	}
	rows := importer.NormalizeRows(rawRows)
	results := importer.NewExecutor(s.store, s.cfg.Import.Workers).Run(rows)
	s.recordBatch(results, user)

	writeJSON(w, http.StatusOK, importResponse{Results: results})
}

func (s *Server) recordBatch(results []importer.RowResult, user auth.User) {
	succeeded, skipped, failed := 0, 0, 0
	for _, result := range results {
		switch {
		case result.Success:
			succeeded++
		case result.Skipped:
			skipped++
		default:
			failed++
		}
	}

	importBatchesTotal.Inc()
	importRowsTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	importRowsTotal.WithLabelValues("skipped").Add(float64(skipped))
	importRowsTotal.WithLabelValues("failed").Add(float64(failed))

	s.logger.WithFields(logrus.Fields{
		"user":      user.Name,
		"rows":      len(results),
		"succeeded": succeeded,
		"skipped":   skipped,
		"failed":    failed,
	}).Info("import batch completed")
}

func (s *Server) handleEventList(w http.ResponseWriter, r *http.Request, user auth.User) {
	filter := storage.EventFilter{}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := event.ParseStatus(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Status = string(status)
	}
	if user.Role.ScopedToCompany() {
		filter.Company = user.Company
	}

	events, err := s.store.ListEvents(filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("list events: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEventGet(w http.ResponseWriter, r *http.Request, user auth.User) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	ev, found, err := s.store.GetEventByID(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("get event: %v", err), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if user.Role.ScopedToCompany() && ev.Company != user.Company {
		http.Error(w, "event belongs to another company", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleEventCreate(w http.ResponseWriter, r *http.Request, user auth.User) {
	var body eventMutationRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.buildRecordFromMutation(body, user)
	if err != nil {
		http.Error(w, err.Error(), mutationErrorStatus(err))
		return
	}

	_, exists, err := s.store.FindDuplicateEvent(rec.Name, rec.StartDate, rec.VenueID, rec.CompanyID)
	if err != nil {
		http.Error(w, fmt.Sprintf("check duplicate: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "event already exists", http.StatusConflict)
		return
	}

	id, err := s.store.InsertEvent(rec)
	if err != nil {
		http.Error(w, fmt.Sprintf("insert event: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleEventPatch(w http.ResponseWriter, r *http.Request, user auth.User) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	existing, found, err := s.store.GetEventByID(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("get event: %v", err), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if user.Role.ScopedToCompany() && existing.Company != user.Company {
		http.Error(w, "event belongs to another company", http.StatusForbidden)
		return
	}

	var body eventMutationRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.buildRecordFromMutation(body, user)
	if err != nil {
		http.Error(w, err.Error(), mutationErrorStatus(err))
		return
	}
	rec.ID = id

	if err := s.store.UpdateEvent(rec); err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("update event: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEventDelete(w http.ResponseWriter, r *http.Request, _ auth.User) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteEvent(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("delete event: %v", err), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request, _ auth.User) {
	venues, err := s.store.ListNames("venues")
	if err != nil {
		http.Error(w, fmt.Sprintf("list venues: %v", err), http.StatusInternalServerError)
		return
	}
	companies, err := s.store.ListNames("companies")
	if err != nil {
		http.Error(w, fmt.Sprintf("list companies: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Venues:          venues,
		Companies:       companies,
		Categories:      event.Categories(),
		SubCategories:   event.SubCategories(),
		Statuses:        event.Statuses(),
		AttendeeBuckets: event.AttendeeBuckets(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, user auth.User) {
	company := ""
	if user.Role.ScopedToCompany() {
		company = user.Company
	}

	byStatus, err := s.store.CountsByStatus(company)
	if err != nil {
		http.Error(w, fmt.Sprintf("summary by status: %v", err), http.StatusInternalServerError)
		return
	}
	byCategory, err := s.store.CountsByCategory(company)
	if err != nil {
		http.Error(w, fmt.Sprintf("summary by category: %v", err), http.StatusInternalServerError)
		return
	}

	total := 0
	for _, row := range byStatus {
		total += row.Count
	}
	writeJSON(w, http.StatusOK, summaryResponse{Total: total, ByStatus: byStatus, ByCategory: byCategory})
}

// buildRecordFromMutation validates an interactive create/edit body and
// resolves its references. Unlike imports, status and dates are strict here:
// the form caller gets a 400 instead of silent defaulting.
func (s *Server) buildRecordFromMutation(body eventMutationRequest, user auth.User) (event.Record, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return event.Record{}, fmt.Errorf("name is required")
	}
	venue := strings.TrimSpace(body.Venue)
	if venue == "" {
		return event.Record{}, fmt.Errorf("venue is required")
	}

	company := strings.TrimSpace(body.Company)
	if user.Role.ScopedToCompany() {
		if company == "" {
			company = user.Company
		} else if company != user.Company {
			return event.Record{}, errForeignCompany
		}
	}
	if company == "" {
		return event.Record{}, fmt.Errorf("company is required")
	}

	status := event.StatusPending
	if strings.TrimSpace(body.Status) != "" {
		parsed, err := event.ParseStatus(body.Status)
		if err != nil {
			return event.Record{}, err
		}
		status = parsed
	}

	category, err := event.ParseCategory(body.Category)
	if err != nil {
		return event.Record{}, err
	}
	subCategory, err := event.ParseSubCategory(body.SubCategory)
	if err != nil {
		return event.Record{}, err
	}

	startDate, err := parseOptionalISODate(body.StartDate)
	if err != nil {
		return event.Record{}, fmt.Errorf("invalid startDate: %w", err)
	}
	endDate, err := parseOptionalISODate(body.EndDate)
	if err != nil {
		return event.Record{}, fmt.Errorf("invalid endDate: %w", err)
	}

	venueID, err := s.store.ResolveName("venues", venue)
	if err != nil {
		return event.Record{}, fmt.Errorf("resolve venue: %w", err)
	}
	companyID, err := s.store.ResolveName("companies", company)
	if err != nil {
		return event.Record{}, fmt.Errorf("resolve company: %w", err)
	}
	categoryID, found, err := s.store.FindIDByName("categories", "name", string(category))
	if err != nil || !found {
		return event.Record{}, fmt.Errorf("resolve category: found=%v err=%v", found, err)
	}
	subCategoryID, found, err := s.store.FindIDByName("sub_categories", "name", string(subCategory))
	if err != nil || !found {
		return event.Record{}, fmt.Errorf("resolve sub-category: found=%v err=%v", found, err)
	}

	return event.Record{
		Name:           name,
		Status:         status,
		StartDate:      startDate,
		EndDate:        endDate,
		VenueID:        venueID,
		CompanyID:      companyID,
		CategoryID:     categoryID,
		SubCategoryID:  subCategoryID,
		TotalAttendees: body.TotalAttendees,
		AttendeeBucket: event.ParseAttendeeBucket(body.AttendeeCategory),
		Details:        strings.TrimSpace(body.Details),
	}, nil
}

func mutationErrorStatus(err error) int {
	if errors.Is(err, errForeignCompany) {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

func parseOptionalISODate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	return value, nil
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func tempUploadPattern(filename string) string {
	extension := filepath.Ext(filename)
	if extension == "" {
		return "eventdesk-upload-*"
	}
	return "eventdesk-upload-*" + extension
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
