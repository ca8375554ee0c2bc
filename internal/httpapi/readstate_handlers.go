package httpapi

import (
	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/db"
)

const maxReadClusterIDs = 500

type readStateRequest struct {
	ReadClusterIDs       []string `json:"read_cluster_ids"`
	BookmarkedClusterIDs []string `json:"bookmarked_cluster_ids"`
}

func (s *Server) handleGetReadState(c echo.Context) error {
	day, err := parseDateParam(c.Param("date"))
	if err != nil {
		return failValidation(c, map[string]string{"date": err.Error()})
	}
	if s.pool == nil {
		return archiveUnavailable(c)
	}

	state, err := s.pool.GetReadState(c.Request().Context(), day)
	if err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("load read state failed")
		return internalError(c, "Failed to load read state")
	}

	return success(c, state)
}

func (s *Server) handlePutReadState(c echo.Context) error {
	day, err := parseDateParam(c.Param("date"))
	if err != nil {
		return failValidation(c, map[string]string{"date": err.Error()})
	}
	if s.pool == nil {
		return archiveUnavailable(c)
	}

	var req readStateRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if len(req.ReadClusterIDs) > maxReadClusterIDs {
		return failValidation(c, map[string]string{"read_cluster_ids": "too many entries"})
	}
	if len(req.BookmarkedClusterIDs) > maxReadClusterIDs {
		return failValidation(c, map[string]string{"bookmarked_cluster_ids": "too many entries"})
	}

	if req.ReadClusterIDs == nil {
		req.ReadClusterIDs = []string{}
	}
	if req.BookmarkedClusterIDs == nil {
		req.BookmarkedClusterIDs = []string{}
	}
	state := db.DayReadState{
		Day:                  day,
		ReadClusterIDs:       req.ReadClusterIDs,
		BookmarkedClusterIDs: req.BookmarkedClusterIDs,
	}
	if err := s.pool.SetReadState(c.Request().Context(), state); err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("save read state failed")
		return internalError(c, "Failed to save read state")
	}

	return success(c, state)
}
