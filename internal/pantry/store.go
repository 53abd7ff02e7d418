package pantry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Consumption heuristic: completing a recipe deducts a fixed share of each
// used ingredient; records whose remaining totals fall under the floor are
// deleted.
const (
	consumeFactor  = 0.9
	minWeightGrams = 1.0
	minCount       = 0.1
)

// PostgresStore persists pantry state in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and bootstraps the schema. The UNIQUE constraint
// on (user_id, name) is what guarantees one inventory row per canonical item
// name per user.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS pantry (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			total_count DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			expiry_date TEXT NOT NULL DEFAULT '',
			added_date TEXT NOT NULL DEFAULT '',
			updated_date TEXT NOT NULL DEFAULT '',
			UNIQUE (user_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS pantry_history (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			items JSONB NOT NULL,
			source TEXT NOT NULL,
			metadata JSONB,
			ts TIMESTAMPTZ NOT NULL,
			item_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS nutrition_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			log_date TEXT NOT NULL,
			calories DOUBLE PRECISION NOT NULL,
			protein DOUBLE PRECISION NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			protein_target DOUBLE PRECISION NOT NULL DEFAULT 140,
			tags JSONB NOT NULL DEFAULT '[]',
			gender TEXT NOT NULL DEFAULT '',
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			height DOUBLE PRECISION NOT NULL DEFAULT 0,
			measurement_unit TEXT NOT NULL DEFAULT 'metric',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
	}
	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &PostgresStore{db: db}, nil
}

const recordColumns = `id, user_id, name, total_count, total_weight, quantity, unit, category, expiry_date, added_date, updated_date`

// MergeItems runs one ingestion batch inside a single transaction. Each
// item's existing row is locked before the merge arithmetic, so two
// concurrent ingests for the same (user, name) serialize instead of
// double-counting; commit is all-or-nothing for the whole batch.
func (s *PostgresStore) MergeItems(ctx context.Context, userID string, items []IngestItem) (*MergeOutcome, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	outcome := &MergeOutcome{}

	for _, item := range items {
		in := ResolveInput(item.Raw)

		var existing Record
		err := tx.GetContext(ctx, &existing,
			`SELECT `+recordColumns+` FROM pantry WHERE user_id = $1 AND name = $2 FOR UPDATE`,
			userID, item.Name)

		var res MergeResult
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res = NewRecord(uuid.NewString(), userID, item, in, now)
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pantry (`+recordColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				res.Record.ID, res.Record.UserID, res.Record.Name,
				res.Record.TotalCount, res.Record.TotalWeight,
				res.Record.Quantity, res.Record.Unit, res.Record.Category,
				res.Record.ExpiryDate, res.Record.AddedDate, res.Record.UpdatedDate)
			if err != nil {
				return nil, fmt.Errorf("failed to insert pantry item: %w", err)
			}
			outcome.AddedCount++
		case err != nil:
			return nil, fmt.Errorf("failed to look up pantry item: %w", err)
		default:
			res = MergeInto(existing, item, in, now)
			_, err = tx.ExecContext(ctx,
				`UPDATE pantry SET total_count = $1, total_weight = $2, quantity = $3, unit = $4, updated_date = $5 WHERE id = $6`,
				res.Record.TotalCount, res.Record.TotalWeight,
				res.Record.Quantity, res.Record.Unit, res.Record.UpdatedDate,
				res.Record.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to update pantry item: %w", err)
			}
			outcome.MergedCount++
		}
		outcome.Deltas = append(outcome.Deltas, res.Delta)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pantry batch: %w", err)
	}
	return outcome, nil
}

// ListItems returns all pantry items for a user, newest first.
func (s *PostgresStore) ListItems(ctx context.Context, userID string) ([]Record, error) {
	var items []Record
	err := s.db.SelectContext(ctx, &items,
		`SELECT `+recordColumns+` FROM pantry WHERE user_id = $1 ORDER BY added_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	return items, nil
}

// GetItem returns one pantry item by id, or nil when it does not exist.
func (s *PostgresStore) GetItem(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec,
		`SELECT `+recordColumns+` FROM pantry WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pantry item: %w", err)
	}
	return &rec, nil
}

// UpdateItem applies a partial patch to one pantry item.
func (s *PostgresStore) UpdateItem(ctx context.Context, id string, upd ItemUpdate) error {
	sets := []string{}
	args := []interface{}{}
	param := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, param))
		args = append(args, value)
		param++
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Quantity != nil {
		add("quantity", *upd.Quantity)
	}
	if upd.Unit != nil {
		add("unit", *upd.Unit)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.ExpiryDate != nil {
		add("expiry_date", *upd.ExpiryDate)
	}
	add("updated_date", time.Now().UTC().Format(time.RFC3339))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE pantry SET %s WHERE id = $%d", strings.Join(sets, ", "), param)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update pantry item: %w", err)
	}
	return nil
}

// DeleteItem removes one pantry item.
func (s *PostgresStore) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pantry WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	return nil
}

// Consume applies the recipe-completion deduction to each named ingredient:
// both totals shrink by the fixed heuristic and records that hit the floor
// are deleted. Returns the surviving records and the names removed.
func (s *PostgresStore) Consume(ctx context.Context, userID string, names []string) ([]Record, []string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var updated []Record
	var removed []string
	now := time.Now().UTC().Format(time.RFC3339)

	for _, name := range names {
		var rec Record
		err := tx.GetContext(ctx, &rec,
			`SELECT `+recordColumns+` FROM pantry WHERE user_id = $1 AND name = $2 FOR UPDATE`,
			userID, name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up pantry item: %w", err)
		}

		rec.TotalCount *= consumeFactor
		rec.TotalWeight *= consumeFactor

		if rec.TotalWeight < minWeightGrams && rec.TotalCount < minCount {
			if _, err := tx.ExecContext(ctx, `DELETE FROM pantry WHERE id = $1`, rec.ID); err != nil {
				return nil, nil, fmt.Errorf("failed to delete consumed item: %w", err)
			}
			removed = append(removed, rec.Name)
			continue
		}

		if IsWeightUnit(rec.Unit) {
			rec.Quantity = FormatQuantity(FromGrams(rec.TotalWeight, rec.Unit))
		} else {
			rec.Quantity = FormatQuantity(rec.TotalCount)
		}
		rec.UpdatedDate = now

		_, err = tx.ExecContext(ctx,
			`UPDATE pantry SET total_count = $1, total_weight = $2, quantity = $3, updated_date = $4 WHERE id = $5`,
			rec.TotalCount, rec.TotalWeight, rec.Quantity, rec.UpdatedDate, rec.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to update consumed item: %w", err)
		}
		updated = append(updated, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit consumption: %w", err)
	}
	return updated, removed, nil
}

// AddHistory appends one ingestion batch to the history log. Callers treat a
// failure here as non-fatal.
func (s *PostgresStore) AddHistory(ctx context.Context, entry *HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal history items: %w", err)
	}
	var metadataJSON []byte
	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal history metadata: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pantry_history (id, uid, items, source, metadata, ts, item_count) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UID, itemsJSON, entry.Source, metadataJSON, entry.Timestamp, entry.Count)
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

func scanHistoryRows(rows *sqlx.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for rows.Next() {
		var (
			e            HistoryEntry
			itemsJSON    []byte
			metadataJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.UID, &itemsJSON, &e.Source, &metadataJSON, &e.Timestamp, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &e.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history items: %w", err)
		}
		if len(metadataJSON) > 0 {
			e.Metadata = &ReceiptMetadata{}
			if err := json.Unmarshal(metadataJSON, e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

// ListHistory returns the most recent history entries for a user.
func (s *PostgresStore) ListHistory(ctx context.Context, uid string, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, uid, items, source, metadata, ts, item_count FROM pantry_history WHERE uid = $1 ORDER BY ts DESC LIMIT $2`,
		uid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

// HistoryBetween returns history entries within [start, end].
func (s *PostgresStore) HistoryBetween(ctx context.Context, uid string, start, end time.Time) ([]HistoryEntry, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, uid, items, source, metadata, ts, item_count FROM pantry_history WHERE uid = $1 AND ts >= $2 AND ts <= $3 ORDER BY ts DESC`,
		uid, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query history range: %w", err)
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

// FindReceiptDuplicate reports when a receipt with the same merchant, date
// and total was already scanned, returning the previous scan time.
func (s *PostgresStore) FindReceiptDuplicate(ctx context.Context, uid string, meta ReceiptMetadata) (*time.Time, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, uid, items, source, metadata, ts, item_count FROM pantry_history WHERE uid = $1 AND source = $2 ORDER BY ts DESC LIMIT 50`,
		uid, SourceReceipt)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt history: %w", err)
	}
	defer rows.Close()

	entries, err := scanHistoryRows(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Metadata == nil {
			continue
		}
		if e.Metadata.Date == meta.Date &&
			e.Metadata.TotalAmount == meta.TotalAmount &&
			e.Metadata.MerchantName == meta.MerchantName {
			ts := e.Timestamp
			return &ts, nil
		}
	}
	return nil, nil
}

// LogNutrition records one nutrition entry.
func (s *PostgresStore) LogNutrition(ctx context.Context, entry *NutritionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nutrition_logs (id, user_id, log_date, calories, protein, label, ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserID, entry.Date, entry.Calories, entry.Protein, entry.Label, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to log nutrition: %w", err)
	}
	return nil
}

// DailyNutrition sums calories and protein for one day.
func (s *PostgresStore) DailyNutrition(ctx context.Context, userID, date string) (DailyTotals, error) {
	var totals DailyTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0) FROM nutrition_logs WHERE user_id = $1 AND log_date = $2`,
		userID, date).Scan(&totals.Calories, &totals.Protein)
	if err != nil {
		return totals, fmt.Errorf("failed to sum nutrition: %w", err)
	}
	return totals, nil
}

// NutritionSince returns per-day totals from the given date onward.
func (s *PostgresStore) NutritionSince(ctx context.Context, userID, since string) (map[string]DailyTotals, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT log_date, COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0) FROM nutrition_logs WHERE user_id = $1 AND log_date >= $2 GROUP BY log_date`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]DailyTotals)
	for rows.Next() {
		var date string
		var totals DailyTotals
		if err := rows.Scan(&date, &totals.Calories, &totals.Protein); err != nil {
			return nil, fmt.Errorf("failed to scan nutrition row: %w", err)
		}
		history[date] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return history, nil
}

func (s *PostgresStore) scanProfile(ctx context.Context, userID string) (*Profile, error) {
	var (
		p        Profile
		tagsJSON []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, protein_target, tags, gender, weight, height, measurement_unit, created_at, updated_at FROM users WHERE id = $1`,
		userID).Scan(&p.UserID, &p.ProteinTarget, &tagsJSON, &p.Gender, &p.Weight, &p.Height, &p.MeasurementUnit, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile tags: %w", err)
	}
	return &p, nil
}

// GetOrCreateProfile returns a user's profile, creating it with defaults on
// first access.
func (s *PostgresStore) GetOrCreateProfile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.scanProfile(ctx, userID)
	if err != nil || p != nil {
		return p, err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at, updated_at) VALUES ($1, $2, $2) ON CONFLICT (id) DO NOTHING`,
		userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.scanProfile(ctx, userID)
}

// UpdateProfile applies a partial patch and returns the resulting profile.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*Profile, error) {
	if _, err := s.GetOrCreateProfile(ctx, userID); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	param := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, param))
		args = append(args, value)
		param++
	}
	if upd.ProteinTarget != nil {
		add("protein_target", *upd.ProteinTarget)
	}
	if upd.Tags != nil {
		tagsJSON, err := json.Marshal(*upd.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tags: %w", err)
		}
		add("tags", tagsJSON)
	}
	if upd.Gender != nil {
		add("gender", *upd.Gender)
	}
	if upd.Weight != nil {
		add("weight", *upd.Weight)
	}
	if upd.Height != nil {
		add("height", *upd.Height)
	}
	if upd.MeasurementUnit != nil {
		add("measurement_unit", *upd.MeasurementUnit)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), param)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.scanProfile(ctx, userID)
}

// ResetUserData wipes a user's pantry, history and nutrition logs.
func (s *PostgresStore) ResetUserData(ctx context.Context, userID string) (ResetSummary, error) {
	var summary ResetSummary

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deletes := []struct {
		query string
		count *int
	}{
		{`DELETE FROM pantry WHERE user_id = $1`, &summary.PantryItemsDeleted},
		{`DELETE FROM pantry_history WHERE uid = $1`, &summary.HistoryDeleted},
		{`DELETE FROM nutrition_logs WHERE user_id = $1`, &summary.NutritionLogsDeleted},
	}
	for _, d := range deletes {
		res, err := tx.ExecContext(ctx, d.query, userID)
		if err != nil {
			return summary, fmt.Errorf("failed to reset user data: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			*d.count = int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("failed to commit reset: %w", err)
	}
	return summary, nil
}
