package planstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/bakeplan/bakeplan/pkg/application/dto"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Store archives solved plans to a SQLite database. Each run is one row:
// queryable summary columns plus the full plan as a JSON payload.
type Store struct {
	db *sql.DB
}

// Record summarizes one archived run
type Record struct {
	ID           int64
	CreatedAt    time.Time
	HorizonStart entities.Date
	HorizonEnd   entities.Date
	TotalCost    string
}

// NewStore opens (creating if needed) a plan archive at the given path
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("plan store path cannot be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open plan store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		horizon_start TEXT NOT NULL,
		horizon_end TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save archives a plan and returns its run id
func (s *Store) Save(plan *entities.Plan) (int64, error) {
	result := dto.FromPlan(plan)
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("encode plan: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO runs (created_at, horizon_start, horizon_end, total_cost, payload) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		result.HorizonStart,
		result.HorizonEnd,
		result.Costs.Total,
		payload,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}
	return id, nil
}

// Load returns the archived plan result for a run id
func (s *Store) Load(id int64) (*dto.PlanResult, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run %d: %w", id, err)
	}

	var result dto.PlanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode run %d: %w", id, err)
	}
	return &result, nil
}

// List returns summaries of all archived runs, newest first
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT id, created_at, horizon_start, horizon_end, total_cost FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rec               Record
			createdAt         string
			horizonStartValue string
			horizonEndValue   string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &horizonStartValue, &horizonEndValue, &rec.TotalCost); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if rec.HorizonStart, err = entities.ParseDate(horizonStartValue); err != nil {
			return nil, fmt.Errorf("parse horizon_start: %w", err)
		}
		if rec.HorizonEnd, err = entities.ParseDate(horizonEndValue); err != nil {
			return nil, fmt.Errorf("parse horizon_end: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
