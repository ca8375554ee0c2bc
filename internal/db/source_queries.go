package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// UpsertSource inserts or replaces one source metadata record.
func (p *Pool) UpsertSource(ctx context.Context, record SourceRecord) error {
	if record.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	tags := record.Tags
	if len(tags) == 0 {
		tags = json.RawMessage("[]")
	}

	_, err := p.Exec(ctx, `
		INSERT INTO brief.sources (domain, reliability_score, region, tags, bias_label, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (domain) DO UPDATE
		SET reliability_score = EXCLUDED.reliability_score,
		    region = EXCLUDED.region,
		    tags = EXCLUDED.tags,
		    bias_label = EXCLUDED.bias_label,
		    updated_at = now()
	`, record.Domain, record.ReliabilityScore, record.Region, tags, record.BiasLabel)
	if err != nil {
		return fmt.Errorf("upsert source %s: %w", record.Domain, err)
	}
	return nil
}

// ListSources returns all source records ordered by domain.
func (p *Pool) ListSources(ctx context.Context) ([]SourceRecord, error) {
	rows, err := p.Query(ctx, `
		SELECT domain, reliability_score, region, tags, bias_label
		FROM brief.sources
		ORDER BY domain ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		var record SourceRecord
		if err := rows.Scan(&record.Domain, &record.ReliabilityScore, &record.Region, &record.Tags, &record.BiasLabel); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return records, nil
}
