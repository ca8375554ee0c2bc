package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/settings"
)

const maxSettingsBodyBytes = 64 * 1024

func (s *Server) handleGetSettings(c echo.Context) error {
	policy, err := settings.Load(s.cfg.SettingsFile)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.cfg.SettingsFile).Msg("load settings failed")
		return internalError(c, "Failed to load settings")
	}
	return success(c, map[string]any{
		"settings": policy,
	})
}

func (s *Server) handlePutSettings(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSettingsBodyBytes))
	if err != nil {
		return failValidation(c, map[string]string{"body": "could not read request body"})
	}

	policy, err := settings.Decode(raw)
	if err != nil {
		return failValidation(c, map[string]string{"settings": err.Error()})
	}

	if err := writeSettingsFile(s.cfg.SettingsFile, raw); err != nil {
		s.logger.Error().Err(err).Str("path", s.cfg.SettingsFile).Msg("write settings failed")
		return internalError(c, "Failed to save settings")
	}

	s.logger.Info().Str("path", s.cfg.SettingsFile).Msg("settings updated")
	return success(c, map[string]any{
		"settings": policy,
	})
}

// writeSettingsFile replaces the settings file atomically so a concurrent
// build never reads a half-written policy.
func writeSettingsFile(path string, raw json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp settings file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
