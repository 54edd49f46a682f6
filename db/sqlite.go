package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"studentperf/inference"
)

// PredictionHistory stores served predictions in SQLite. It is only opened
// when history is enabled; by default inputs are not kept.
type PredictionHistory struct {
	db  *sql.DB
	now func() time.Time
}

// Prediction is one stored row.
type Prediction struct {
	ID         int64                `json:"id"`
	RequestID  string               `json:"request_id"`
	ClusterID  int                  `json:"cluster_id"`
	Label      string               `json:"label"`
	Known      bool                 `json:"known"`
	Confidence float64              `json:"confidence"`
	Raw        map[string]any       `json:"raw_input"`
	Encoded    inference.EncodedRow `json:"encoded"`
	CreatedAt  time.Time            `json:"created_at"`
}

// OpenPredictionHistory opens (creating if needed) the database at path.
func OpenPredictionHistory(path string) (*PredictionHistory, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        request_id TEXT NOT NULL DEFAULT '',
        cluster_id INTEGER NOT NULL,
        label TEXT NOT NULL,
        known INTEGER NOT NULL,
        confidence REAL NOT NULL,
        raw_input TEXT NOT NULL,
        encoded TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &PredictionHistory{db: database, now: time.Now}, nil
}

// Save implements inference.History.
func (h *PredictionHistory) Save(ctx context.Context, requestID string, result inference.Result) error {
	if h == nil || h.db == nil {
		return errors.New("database not initialized")
	}
	raw, err := json.Marshal(result.Raw)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(result.Encoded)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, `
        INSERT INTO predictions (request_id, cluster_id, label, known, confidence, raw_input, encoded, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		requestID, result.ClusterID, result.Label, result.Known, result.Confidence,
		string(raw), string(encoded), h.now().UTC())
	return err
}

// Recent returns up to limit predictions, newest first.
func (h *PredictionHistory) Recent(ctx context.Context, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT id, request_id, cluster_id, label, known, confidence, raw_input, encoded, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var p Prediction
		var raw, encoded string
		if err := rows.Scan(&p.ID, &p.RequestID, &p.ClusterID, &p.Label, &p.Known, &p.Confidence,
			&raw, &encoded, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &p.Raw); err != nil {
			return nil, fmt.Errorf("prediction %d: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(encoded), &p.Encoded); err != nil {
			return nil, fmt.Errorf("prediction %d: %w", p.ID, err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// CountByLabel returns how many stored predictions fell into each label.
func (h *PredictionHistory) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		counts[label] = count
	}
	return counts, rows.Err()
}

func (h *PredictionHistory) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
