package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyOverwrite is returned when an empty payload would replace an
// archived day that already has clusters.
var ErrEmptyOverwrite = errors.New("refusing to overwrite non-empty brief with empty payload")

// BriefDaySummary is the read model for archive listings.
type BriefDaySummary struct {
	Day          string    `json:"day"`
	GeneratedAt  time.Time `json:"generated_at"`
	ClusterCount int       `json:"cluster_count"`
}

// UpsertBriefDay archives one day's payload. An empty payload never replaces
// an archived day that already holds clusters.
func (p *Pool) UpsertBriefDay(ctx context.Context, day string, generatedAt time.Time, clusterCount int, payload json.RawMessage) error {
	if day == "" {
		return fmt.Errorf("day is required")
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload is required")
	}

	tag, err := p.Exec(ctx, `
		INSERT INTO brief.brief_days (day, generated_at, cluster_count, payload, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (day) DO UPDATE
		SET generated_at = EXCLUDED.generated_at,
		    cluster_count = EXCLUDED.cluster_count,
		    payload = EXCLUDED.payload,
		    updated_at = now()
		WHERE brief.brief_days.cluster_count = 0
		   OR EXCLUDED.cluster_count > 0
	`, day, generatedAt.UTC(), clusterCount, payload)
	if err != nil {
		return fmt.Errorf("upsert brief day %s: %w", day, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmptyOverwrite
	}
	return nil
}

// GetBriefDay loads one archived day. Returns ErrNoRows when the day has no
// archived brief.
func (p *Pool) GetBriefDay(ctx context.Context, day string) (*BriefDay, error) {
	if day == "" {
		return nil, fmt.Errorf("day is required")
	}

	var record BriefDay
	err := p.QueryRow(ctx, `
		SELECT day::text, generated_at, cluster_count, payload
		FROM brief.brief_days
		WHERE day = $1
	`, day).Scan(&record.Day, &record.GeneratedAt, &record.ClusterCount, &record.Payload)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("get brief day %s: %w", day, err)
	}
	return &record, nil
}

// ListBriefDays lists archived days, newest first.
func (p *Pool) ListBriefDays(ctx context.Context, limit int) ([]BriefDaySummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	rows, err := p.Query(ctx, `
		SELECT day::text, generated_at, cluster_count
		FROM brief.brief_days
		ORDER BY day DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list brief days: %w", err)
	}
	defer rows.Close()

	summaries := make([]BriefDaySummary, 0, limit)
	for rows.Next() {
		var s BriefDaySummary
		if err := rows.Scan(&s.Day, &s.GeneratedAt, &s.ClusterCount); err != nil {
			return nil, fmt.Errorf("scan brief day row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brief day rows: %w", err)
	}
	return summaries, nil
}
