package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edupath/readiness/internal/model"

	_ "modernc.org/sqlite"
)

// Store archives completed assessments. The scoring and rendering core
// never reads from it; it is a post-success write plus the listing and
// export surfaces.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		overall_score REAL NOT NULL DEFAULT 0,
		readiness_level TEXT NOT NULL DEFAULT '',
		report_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveAssessment archives a completed report.
func (s *Store) SaveAssessment(rep *model.AssessmentReport) (int64, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return 0, fmt.Errorf("marshal report: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO assessments (name, email, phone, overall_score, readiness_level, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.Name, rep.Email, rep.Phone, rep.OverallScore, rep.ReadinessLevel, string(data), time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAssessment returns one archived assessment with its full report.
func (s *Store) GetAssessment(id int64) (*model.ArchivedAssessment, error) {
	var a model.ArchivedAssessment
	var reportJSON string
	err := s.db.QueryRow(
		`SELECT id, name, email, phone, overall_score, readiness_level, report_json, created_at
		 FROM assessments WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.OverallScore, &a.ReadinessLevel, &reportJSON, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(reportJSON), &a.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report %d: %w", id, err)
	}
	return &a, nil
}

// ListAssessments returns summaries of all archived assessments, newest first.
func (s *Store) ListAssessments() ([]model.AssessmentSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, name, overall_score, readiness_level, created_at FROM assessments ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var summaries []model.AssessmentSummary
	for rows.Next() {
		var a model.AssessmentSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.OverallScore, &a.ReadinessLevel, &a.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, a)
	}
	return summaries, rows.Err()
}

// AssessmentCount returns the number of archived assessments.
func (s *Store) AssessmentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assessments`).Scan(&count)
	return count, err
}
