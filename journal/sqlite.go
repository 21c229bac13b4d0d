package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(ctx context.Context, a Assessment) error {
	body, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	r := a.Result
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO assessments
		(id, created_at, source, instrument, window_start, window_end,
		 amount_usd, invoice_date, settlement_date, stress,
		 horizon_days, current_rate, potential_loss, vol_used_pct, nu, clamped, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt.UTC(), a.Source, a.Instrument, a.WindowStart.UTC(), a.WindowEnd.UTC(),
		a.Request.AmountUSD, a.Request.InvoiceDate, a.Request.SettlementDate, a.Request.Stress,
		r.HorizonDays, r.CurrentRate, r.PotentialLoss, float64(r.Volatility.Used), r.Volatility.Nu,
		r.Volatility.Clamped, string(body),
	)
	return err
}

const selectAssessment = `
	SELECT id, created_at, source, instrument, window_start, window_end,
	       amount_usd, invoice_date, settlement_date, stress, result_json
	FROM assessments`

// Get returns a single assessment by id.
func (j *SQLite) Get(ctx context.Context, id string) (Assessment, error) {
	row := j.db.QueryRowContext(ctx, selectAssessment+` WHERE id = ?`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

func (j *SQLite) List(ctx context.Context, limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, selectAssessment+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(s scanner) (Assessment, error) {
	var (
		a    Assessment
		body string
	)
	err := s.Scan(
		&a.ID,
		&a.CreatedAt,
		&a.Source,
		&a.Instrument,
		&a.WindowStart,
		&a.WindowEnd,
		&a.Request.AmountUSD,
		&a.Request.InvoiceDate,
		&a.Request.SettlementDate,
		&a.Request.Stress,
		&body,
	)
	if err != nil {
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(body), &a.Result); err != nil {
		return Assessment{}, fmt.Errorf("decode result %s: %w", a.ID, err)
	}
	return a, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
