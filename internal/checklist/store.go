package checklist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/entity"
)

// Store persists checklist records. SQLite is the default backend; a
// postgres:// DSN switches to the pgx driver. Records are never deleted,
// only archived.
type Store struct {
	db     *sql.DB
	pg     bool
	logger *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS checklist_records (
	id            TEXT PRIMARY KEY,
	patient_last  TEXT NOT NULL DEFAULT '',
	patient_first TEXT NOT NULL DEFAULT '',
	patient_dob   TEXT NOT NULL DEFAULT '',
	carrier       TEXT NOT NULL DEFAULT '',
	member_id     TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	color         TEXT NOT NULL,
	actions       TEXT NOT NULL DEFAULT '[]',
	items         TEXT NOT NULL DEFAULT '[]',
	notes         TEXT NOT NULL DEFAULT '[]',
	archived      INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
)`

// Open connects to the backend selected by the DSN and ensures the schema
// exists.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pg := strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://")
	var (
		db  *sql.DB
		err error
	)
	if pg {
		db, err = sql.Open("pgx", cfg.DSN)
	} else {
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
	}
	if err != nil {
		return nil, common.WrapError(err, "open checklist database")
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, common.WrapError(err, "ping checklist database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "migrate checklist schema")
	}

	logger.Info("checklist store ready", "backend", backendName(pg))
	return &Store{
		db:     db,
		pg:     pg,
		logger: logger,
		locks:  map[uuid.UUID]*sync.Mutex{},
	}, nil
}

func backendName(pg bool) string {
	if pg {
		return "postgres"
	}
	return "sqlite"
}

func sqliteDSN(path string) string {
	return "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites ?-style placeholders for the postgres driver.
func (s *Store) rebind(q string) string {
	if !s.pg {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// recordLock serializes updates per record id. Concurrent updates to
// different field groups of the same record both survive because each one
// reads, merges and writes under the lock.
func (s *Store) recordLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// UpsertFromDocument materializes a checklist record for an extracted
// document. An existing non-archived record for the same patient identity is
// refreshed with the new actions; otherwise a fresh record starts in status
// "new" with color "gray" and one unchecked item per action.
func (s *Store) UpsertFromDocument(ctx context.Context, doc entity.Document, actions []string) (entity.ChecklistRecord, error) {
	existing, err := s.findByPatient(ctx, doc.Patient.LastName, doc.Patient.FirstName, doc.Patient.DOB)
	if err != nil {
		return entity.ChecklistRecord{}, err
	}
	if existing != nil {
		return s.Update(ctx, existing.ID, UpdateRequest{
			Actions: actions,
			Items:   seedItems(actions),
		})
	}

	now := time.Now().UTC()
	rec := entity.ChecklistRecord{
		ID: uuid.New(),
		Patient: entity.PatientRef{
			LastName:  doc.Patient.LastName,
			FirstName: doc.Patient.FirstName,
			DOB:       doc.Patient.DOB,
		},
		Insurance: entity.InsuranceRef{
			Carrier:  doc.Insurance.Primary.Carrier,
			MemberID: doc.Insurance.Primary.MemberID,
		},
		Actions:   append([]string{}, actions...),
		Status:    constants.StatusNew,
		Color:     constants.ColorGray,
		Items:     seedItems(actions),
		Notes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, rec); err != nil {
		return entity.ChecklistRecord{}, err
	}
	s.logger.Info("checklist record created", "record_id", rec.ID, "patient", rec.Patient.LastName)
	return rec, nil
}

// seedItems turns routing actions into unchecked checklist items keyed by a
// slug of the action phrase.
func seedItems(actions []string) []entity.ChecklistItem {
	items := make([]entity.ChecklistItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, entity.ChecklistItem{Key: slug(a), Label: a})
	}
	return items
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// UpdateRequest is a partial update: only non-nil (or non-empty, for the
// collections) fields change; everything else is untouched.
type UpdateRequest struct {
	Status   *string                `json:"status,omitempty"`
	Color    *string                `json:"color,omitempty"`
	Items    []entity.ChecklistItem `json:"checklist_items,omitempty"`
	Note     *string                `json:"note,omitempty"`
	Actions  []string               `json:"actions,omitempty"`
	Archived *bool                  `json:"archived,omitempty"`
}

// Update applies a partial update under the record's lock. Items merge by
// key (unknown keys are upserted), notes append, actions union.
func (s *Store) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (entity.ChecklistRecord, error) {
	l := s.recordLock(id)
	l.Lock()
	defer l.Unlock()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return entity.ChecklistRecord{}, err
	}

	if req.Status != nil {
		status, ok := constants.CanonicalizeStatus(*req.Status)
		if !ok {
			return entity.ChecklistRecord{}, common.ValidationErrorf("unknown status %q", *req.Status)
		}
		rec.Status = status
	}
	if req.Color != nil {
		if !constants.IsValidColor(*req.Color) {
			return entity.ChecklistRecord{}, common.ValidationErrorf("unknown color %q", *req.Color)
		}
		rec.Color = constants.Color(strings.ToLower(strings.TrimSpace(*req.Color)))
	}
	for _, item := range req.Items {
		rec.Items = upsertItem(rec.Items, item)
	}
	for _, a := range req.Actions {
		if !containsString(rec.Actions, a) {
			rec.Actions = append(rec.Actions, a)
		}
	}
	if req.Note != nil && *req.Note != "" {
		rec.Notes = append(rec.Notes, *req.Note)
	}
	if req.Archived != nil {
		rec.Archived = *req.Archived
	}
	rec.UpdatedAt = time.Now().UTC()

	if err := s.write(ctx, rec); err != nil {
		return entity.ChecklistRecord{}, err
	}
	return rec, nil
}

func upsertItem(items []entity.ChecklistItem, item entity.ChecklistItem) []entity.ChecklistItem {
	for i := range items {
		if items[i].Key == item.Key {
			items[i].Done = item.Done
			if item.Label != "" {
				items[i].Label = item.Label
			}
			return items
		}
	}
	if item.Label == "" {
		item.Label = item.Key
	}
	return append(items, item)
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Filter narrows List output. Zero values match everything; archived records
// only appear when IncludeArchived is set.
type Filter struct {
	Status          string
	Carrier         string
	Search          string
	IncludeArchived bool
}

const selectCols = `id, patient_last, patient_first, patient_dob, carrier, member_id,
	status, color, actions, items, notes, archived, created_at, updated_at`

// Get fetches one record by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (entity.ChecklistRecord, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+selectCols+` FROM checklist_records WHERE id = ?`), id.String())
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return entity.ChecklistRecord{}, common.NotFoundError(fmt.Sprintf("checklist record %s", id))
	}
	if err != nil {
		return entity.ChecklistRecord{}, common.WrapError(err, "get checklist record")
	}
	return rec, nil
}

// List returns records matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]entity.ChecklistRecord, error) {
	q := `SELECT ` + selectCols + ` FROM checklist_records WHERE 1=1`
	var args []any
	if !f.IncludeArchived {
		q += ` AND archived = ?`
		args = append(args, 0)
	}
	if f.Status != "" {
		status, ok := constants.CanonicalizeStatus(f.Status)
		if !ok {
			return nil, common.ValidationErrorf("unknown status %q", f.Status)
		}
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	if f.Carrier != "" {
		q += ` AND LOWER(carrier) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.Carrier)+"%")
	}
	if f.Search != "" {
		q += ` AND (LOWER(patient_last) LIKE ? OR LOWER(patient_first) LIKE ? OR LOWER(member_id) LIKE ?)`
		needle := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, needle, needle, needle)
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, common.WrapError(err, "list checklist records")
	}
	defer rows.Close()

	var out []entity.ChecklistRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan checklist record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) findByPatient(ctx context.Context, last, first, dob string) (*entity.ChecklistRecord, error) {
	if last == "" && dob == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+selectCols+` FROM checklist_records
		 WHERE patient_last = ? AND patient_first = ? AND patient_dob = ? AND archived = ?
		 ORDER BY created_at DESC LIMIT 1`),
		last, first, dob, 0)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "find checklist record")
	}
	return &rec, nil
}

func (s *Store) insert(ctx context.Context, rec entity.ChecklistRecord) error {
	actions, items, notes, err := marshalCollections(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO checklist_records (`+selectCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID.String(), rec.Patient.LastName, rec.Patient.FirstName, rec.Patient.DOB,
		rec.Insurance.Carrier, rec.Insurance.MemberID,
		string(rec.Status), string(rec.Color), actions, items, notes,
		boolToInt(rec.Archived),
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano))
	return common.WrapError(err, "insert checklist record")
}

func (s *Store) write(ctx context.Context, rec entity.ChecklistRecord) error {
	actions, items, notes, err := marshalCollections(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE checklist_records SET status = ?, color = ?, actions = ?, items = ?,
		 notes = ?, archived = ?, updated_at = ? WHERE id = ?`),
		string(rec.Status), string(rec.Color), actions, items, notes,
		boolToInt(rec.Archived), rec.UpdatedAt.Format(time.RFC3339Nano), rec.ID.String())
	if err != nil {
		return common.WrapError(err, "update checklist record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NotFoundError(fmt.Sprintf("checklist record %s", rec.ID))
	}
	return nil
}

func marshalCollections(rec entity.ChecklistRecord) (string, string, string, error) {
	actions, err := json.Marshal(rec.Actions)
	if err != nil {
		return "", "", "", common.WrapError(err, "marshal actions")
	}
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return "", "", "", common.WrapError(err, "marshal items")
	}
	notes, err := json.Marshal(rec.Notes)
	if err != nil {
		return "", "", "", common.WrapError(err, "marshal notes")
	}
	return string(actions), string(items), string(notes), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (entity.ChecklistRecord, error) {
	var (
		rec                   entity.ChecklistRecord
		id                    string
		status, color         string
		actions, items, notes string
		archived              int
		createdAt, updatedAt  string
	)
	err := row.Scan(&id, &rec.Patient.LastName, &rec.Patient.FirstName, &rec.Patient.DOB,
		&rec.Insurance.Carrier, &rec.Insurance.MemberID,
		&status, &color, &actions, &items, &notes, &archived, &createdAt, &updatedAt)
	if err != nil {
		return entity.ChecklistRecord{}, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("parse record id: %w", err)
	}
	rec.Status = constants.ReviewStatus(status)
	rec.Color = constants.Color(color)
	rec.Archived = archived != 0
	if err := json.Unmarshal([]byte(actions), &rec.Actions); err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("decode actions: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &rec.Items); err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal([]byte(notes), &rec.Notes); err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("decode notes: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return entity.ChecklistRecord{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}
