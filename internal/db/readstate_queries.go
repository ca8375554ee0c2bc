package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// DayReadState is the decoded per-day reading state.
type DayReadState struct {
	Day                  string   `json:"day"`
	ReadClusterIDs       []string `json:"read_cluster_ids"`
	BookmarkedClusterIDs []string `json:"bookmarked_cluster_ids"`
}

// GetReadState returns the reading state for one day. Days with no stored
// state yield empty sets.
func (p *Pool) GetReadState(ctx context.Context, day string) (DayReadState, error) {
	state := DayReadState{
		Day:                  day,
		ReadClusterIDs:       []string{},
		BookmarkedClusterIDs: []string{},
	}
	if day == "" {
		return state, fmt.Errorf("day is required")
	}

	var readRaw, bookmarkedRaw json.RawMessage
	err := p.QueryRow(ctx, `
		SELECT read_cluster_ids, bookmarked_cluster_ids
		FROM brief.read_states
		WHERE day = $1
	`, day).Scan(&readRaw, &bookmarkedRaw)
	if err != nil {
		if IsNoRows(err) {
			return state, nil
		}
		return state, fmt.Errorf("get read state for %s: %w", day, err)
	}

	if err := json.Unmarshal(readRaw, &state.ReadClusterIDs); err != nil {
		return state, fmt.Errorf("decode read set for %s: %w", day, err)
	}
	if err := json.Unmarshal(bookmarkedRaw, &state.BookmarkedClusterIDs); err != nil {
		return state, fmt.Errorf("decode bookmark set for %s: %w", day, err)
	}
	return state, nil
}

// SetReadState replaces both cluster sets for one day.
func (p *Pool) SetReadState(ctx context.Context, state DayReadState) error {
	if state.Day == "" {
		return fmt.Errorf("day is required")
	}
	readRaw, err := encodeIDSet(state.ReadClusterIDs)
	if err != nil {
		return fmt.Errorf("encode read set for %s: %w", state.Day, err)
	}
	bookmarkedRaw, err := encodeIDSet(state.BookmarkedClusterIDs)
	if err != nil {
		return fmt.Errorf("encode bookmark set for %s: %w", state.Day, err)
	}

	_, err = p.Exec(ctx, `
		INSERT INTO brief.read_states (day, read_cluster_ids, bookmarked_cluster_ids, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (day) DO UPDATE
		SET read_cluster_ids = EXCLUDED.read_cluster_ids,
		    bookmarked_cluster_ids = EXCLUDED.bookmarked_cluster_ids,
		    updated_at = now()
	`, state.Day, readRaw, bookmarkedRaw)
	if err != nil {
		return fmt.Errorf("set read state for %s: %w", state.Day, err)
	}
	return nil
}

func encodeIDSet(ids []string) (json.RawMessage, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
