package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/db"
	"horse.fit/daybrief/internal/globaltime"
	"horse.fit/daybrief/internal/pipeline"
)

func (s *Server) handleBriefToday(c echo.Context) error {
	payload, stats, err := s.builder.Build(c.Request().Context(), globaltime.UTC())
	if err != nil {
		if errors.Is(err, pipeline.ErrNoItems) {
			return fail(c, http.StatusServiceUnavailable, "No feed items available", nil)
		}
		s.logger.Error().Err(err).Msg("build today brief failed")
		return internalError(c, "Failed to build brief")
	}

	if s.pool != nil {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			s.logger.Error().Err(marshalErr).Msg("encode brief payload failed")
		} else if archiveErr := s.pool.UpsertBriefDay(c.Request().Context(), payload.Date, payload.GeneratedAt, len(payload.Clusters), raw); archiveErr != nil && !errors.Is(archiveErr, db.ErrEmptyOverwrite) {
			s.logger.Warn().Err(archiveErr).Str("day", payload.Date).Msg("archive brief failed")
		}
	}

	return success(c, map[string]any{
		"brief": payload,
		"stats": stats,
	})
}

func (s *Server) handleBriefByDate(c echo.Context) error {
	day, err := parseDateParam(c.Param("date"))
	if err != nil {
		return failValidation(c, map[string]string{"date": err.Error()})
	}
	if s.pool == nil {
		return archiveUnavailable(c)
	}

	record, err := s.pool.GetBriefDay(c.Request().Context(), day)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "No brief archived for that day")
		}
		s.logger.Error().Err(err).Str("day", day).Msg("load archived brief failed")
		return internalError(c, "Failed to load brief")
	}

	return success(c, map[string]any{
		"day":           record.Day,
		"generated_at":  record.GeneratedAt,
		"cluster_count": record.ClusterCount,
		"brief":         record.Payload,
	})
}

func (s *Server) handleBriefList(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultArchiveListLimit, 1, 365)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	if s.pool == nil {
		return archiveUnavailable(c)
	}

	summaries, err := s.pool.ListBriefDays(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list archived briefs failed")
		return internalError(c, "Failed to list briefs")
	}

	return success(c, map[string]any{
		"items": summaries,
		"limit": limit,
	})
}
