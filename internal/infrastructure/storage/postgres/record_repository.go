package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

const recordColumns = `idx, id, writer_id, user_id, type, plain, data, version, created, last_modified`

type RecordRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRecordRepository(storage *Storage, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		pool: storage.Pool(),
		log:  log.With("component", "record_repository"),
	}
}

func (r *RecordRepository) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	const query = `
		INSERT INTO records (id, writer_id, user_id, type, plain, data, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recordColumns

	meta := rec.Meta()
	plain, data, err := encodeFields(meta.Plain(), rec.Data())
	if err != nil {
		return record.Record{}, err
	}

	row := r.pool.QueryRow(ctx, query,
		meta.RecordID(), meta.WriterID(), meta.UserID(), meta.Type(), plain, data, meta.Version(),
	)
	created, _, err := scanRecord(row)
	if err != nil {
		r.log.Error("failed to create record", "record_id", meta.RecordID(), "error", err)
		return record.Record{}, fmt.Errorf("create record: %w", err)
	}
	return created, nil
}

func (r *RecordRepository) Get(ctx context.Context, recordID uuid.UUID) (record.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	rec, _, err := scanRecord(r.pool.QueryRow(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
		}
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Update выполняет условное обновление по версии
func (r *RecordRepository) Update(ctx context.Context, recordID uuid.UUID, expectedVersion, newVersion string, data, plain record.Fields) (record.Record, error) {
	const query = `
		UPDATE records
		SET data = $1, plain = $2, version = $3, last_modified = NOW()
		WHERE id = $4 AND version = $5
		RETURNING ` + recordColumns

	plainJSON, dataJSON, err := encodeFields(plain, data)
	if err != nil {
		return record.Record{}, err
	}

	rec, _, err := scanRecord(r.pool.QueryRow(ctx, query, dataJSON, plainJSON, newVersion, recordID, expectedVersion))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return record.Record{}, fmt.Errorf("update record: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM records WHERE id = $1)`, recordID).Scan(&exists); err != nil {
		return record.Record{}, fmt.Errorf("check record: %w", err)
	}
	if exists {
		return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrConflict)
	}
	return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
}

func (r *RecordRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM records WHERE id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
	}
	return nil
}

func (r *RecordRepository) List(ctx context.Context, filter record.Filter) (record.Page, error) {
	dataColumn := "data"
	if !filter.IncludeData {
		dataColumn = "'{}'::json"
	}

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	add("idx > $%d", filter.AfterIndex)
	if len(filter.WriterIDs) > 0 {
		add("writer_id = ANY($%d::uuid[])", uuidArray(filter.WriterIDs))
	}
	if len(filter.UserIDs) > 0 {
		add("user_id = ANY($%d::uuid[])", uuidArray(filter.UserIDs))
	}
	if len(filter.RecordIDs) > 0 {
		add("id = ANY($%d::uuid[])", uuidArray(filter.RecordIDs))
	}
	if len(filter.Types) > 0 {
		add("type = ANY($%d::text[])", filter.Types)
	}
	if filter.Plain.Len() > 0 {
		plain, err := json.Marshal(filter.Plain)
		if err != nil {
			return record.Page{}, fmt.Errorf("encode plain filter: %w", err)
		}
		add("plain::jsonb @> $%d::jsonb", string(plain))
	}
	args = append(args, filter.Count)

	query := fmt.Sprintf(`
		SELECT idx, id, writer_id, user_id, type, plain, %s, version, created, last_modified
		FROM records
		WHERE %s
		ORDER BY idx
		LIMIT $%d`, dataColumn, strings.Join(conds, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list records", "error", err)
		return record.Page{}, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	page := record.Page{LastIndex: filter.AfterIndex}
	for rows.Next() {
		rec, idx, err := scanRecord(rows)
		if err != nil {
			return record.Page{}, fmt.Errorf("scan record: %w", err)
		}
		page.Records = append(page.Records, rec)
		page.LastIndex = idx
	}
	if err := rows.Err(); err != nil {
		return record.Page{}, fmt.Errorf("iterate records: %w", err)
	}
	return page, nil
}

func scanRecord(row pgx.Row) (record.Record, int64, error) {
	var (
		idx            int64
		state          record.MetaState
		plain, data    []byte
		created, lastM time.Time
	)
	err := row.Scan(&idx, &state.RecordID, &state.WriterID, &state.UserID, &state.Type,
		&plain, &data, &state.Version, &created, &lastM)
	if err != nil {
		return record.Record{}, 0, err
	}

	var fields record.Fields
	if err := json.Unmarshal(plain, &state.Plain); err != nil {
		return record.Record{}, 0, fmt.Errorf("decode plain: %w", err)
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return record.Record{}, 0, fmt.Errorf("decode data: %w", err)
	}
	state.Created, state.LastModified = &created, &lastM

	return record.New(state.Meta(), fields), idx, nil
}

func encodeFields(plain, data record.Fields) (string, string, error) {
	p, err := json.Marshal(plain)
	if err != nil {
		return "", "", fmt.Errorf("encode plain: %w", err)
	}
	d, err := json.Marshal(data)
	if err != nil {
		return "", "", fmt.Errorf("encode data: %w", err)
	}
	return string(p), string(d), nil
}
