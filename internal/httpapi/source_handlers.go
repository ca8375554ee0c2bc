package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/db"
	"horse.fit/daybrief/internal/sources"
)

// handleSources lists source metadata: the Postgres table when configured,
// otherwise the YAML file the builder reads.
func (s *Server) handleSources(c echo.Context) error {
	if s.pool != nil {
		records, err := s.pool.ListSources(c.Request().Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("list sources failed")
			return internalError(c, "Failed to list sources")
		}
		return success(c, map[string]any{
			"items":   records,
			"backend": "database",
		})
	}

	table, err := sources.LoadTable(s.cfg.SourcesFile)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.cfg.SourcesFile).Msg("load source table failed")
		return internalError(c, "Failed to load sources")
	}
	return success(c, map[string]any{
		"items":   table.Records(),
		"backend": "file",
	})
}

type sourceUpsertRequest struct {
	ReliabilityScore int      `json:"reliability_score"`
	Region           string   `json:"region"`
	Tags             []string `json:"tags"`
	BiasLabel        string   `json:"bias_label"`
}

// handlePutSource creates or replaces one source metadata record. The file
// backend is read-only, so a database is required.
func (s *Server) handlePutSource(c echo.Context) error {
	domain := sources.NormalizeDomain(c.Param("domain"))
	if domain == "" {
		return failValidation(c, map[string]string{"domain": "domain is required"})
	}
	if s.pool == nil {
		return archiveUnavailable(c)
	}

	var req sourceUpsertRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if req.ReliabilityScore < 0 || req.ReliabilityScore > 100 {
		return failValidation(c, map[string]string{"reliability_score": "must be between 0 and 100"})
	}

	record := db.SourceRecord{
		Domain:           domain,
		ReliabilityScore: req.ReliabilityScore,
		Region:           strings.TrimSpace(req.Region),
	}
	if record.Region == "" {
		record.Region = sources.DefaultRegion
	}
	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return failValidation(c, map[string]string{"tags": err.Error()})
		}
		record.Tags = raw
	}
	if bias := strings.TrimSpace(req.BiasLabel); bias != "" {
		record.BiasLabel = &bias
	}

	if err := s.pool.UpsertSource(c.Request().Context(), record); err != nil {
		s.logger.Error().Err(err).Str("domain", domain).Msg("upsert source failed")
		return internalError(c, "Failed to save source")
	}

	return success(c, map[string]any{
		"domain":            record.Domain,
		"reliability_score": record.ReliabilityScore,
		"reliability":       sources.BucketReliability(record.ReliabilityScore),
		"region":            record.Region,
	})
}
