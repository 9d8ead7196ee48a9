package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at                DATETIME NOT NULL,
		total_instances       INTEGER NOT NULL,
		unique_phrases        INTEGER NOT NULL,
		exact_groups          INTEGER NOT NULL,
		duplicate_instances   INTEGER NOT NULL,
		near_duplicate_pairs  INTEGER NOT NULL,
		reduction_pct         REAL NOT NULL,
		similarity_threshold  REAL NOT NULL,
		duration_ms           INTEGER DEFAULT 0,
		report_path           TEXT DEFAULT '',
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_ran_at ON analysis_runs(ran_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

// RunRecord is one saved analysis run: the aggregate numbers a reviewer
// needs to see whether the corpus is actually shrinking over time.
type RunRecord struct {
	ID                  int64
	RanAt               time.Time
	TotalInstances      int
	UniquePhrases       int
	ExactGroups         int
	DuplicateInstances  int
	NearDuplicatePairs  int
	ReductionPercent    float64
	SimilarityThreshold float64
	DurationMS          int64
	ReportPath          string
}

func InsertRun(db *sql.DB, r RunRecord) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO analysis_runs
		 (ran_at, total_instances, unique_phrases, exact_groups, duplicate_instances,
		  near_duplicate_pairs, reduction_pct, similarity_threshold, duration_ms, report_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RanAt, r.TotalInstances, r.UniquePhrases, r.ExactGroups, r.DuplicateInstances,
		r.NearDuplicatePairs, r.ReductionPercent, r.SimilarityThreshold, r.DurationMS, r.ReportPath,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetRecentRuns(db *sql.DB, limit int) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT id, ran_at, total_instances, unique_phrases, exact_groups, duplicate_instances,
		        near_duplicate_pairs, reduction_pct, similarity_threshold, duration_ms, report_path
		 FROM analysis_runs ORDER BY ran_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.RanAt, &r.TotalInstances, &r.UniquePhrases, &r.ExactGroups,
			&r.DuplicateInstances, &r.NearDuplicatePairs, &r.ReductionPercent,
			&r.SimilarityThreshold, &r.DurationMS, &r.ReportPath,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetLatestRun(db *sql.DB) (RunRecord, error) {
	var r RunRecord
	err := db.QueryRow(
		`SELECT id, ran_at, total_instances, unique_phrases, exact_groups, duplicate_instances,
		        near_duplicate_pairs, reduction_pct, similarity_threshold, duration_ms, report_path
		 FROM analysis_runs ORDER BY ran_at DESC, id DESC LIMIT 1`,
	).Scan(
		&r.ID, &r.RanAt, &r.TotalInstances, &r.UniquePhrases, &r.ExactGroups,
		&r.DuplicateInstances, &r.NearDuplicatePairs, &r.ReductionPercent,
		&r.SimilarityThreshold, &r.DurationMS, &r.ReportPath,
	)
	return r, err
}

type WeeklyTrend struct {
	WeekStart        string
	Runs             int
	AvgReductionPct  float64
	LastNearPairs    int
	LastDuplicateCnt int
}

// GetWeeklyTrend aggregates runs per calendar week so reviewers can watch
// the estimated reduction shrink as cleanup lands.
func GetWeeklyTrend(db *sql.DB, since time.Time) ([]WeeklyTrend, error) {
	rows, err := db.Query(
		`SELECT
		    strftime('%Y-%m-%d', ran_at, 'weekday 0', '-6 days') as week_start,
		    COUNT(*) as runs,
		    COALESCE(AVG(reduction_pct), 0) as avg_reduction,
		    COALESCE(MAX(near_duplicate_pairs), 0),
		    COALESCE(MAX(duplicate_instances), 0)
		 FROM analysis_runs
		 WHERE ran_at >= ?
		 GROUP BY week_start
		 ORDER BY week_start DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []WeeklyTrend
	for rows.Next() {
		var t WeeklyTrend
		if err := rows.Scan(&t.WeekStart, &t.Runs, &t.AvgReductionPct, &t.LastNearPairs, &t.LastDuplicateCnt); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}
