package storage

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Setting keys
const (
	SettingRetentionDays  = "retention_days"
	SettingTheme          = "theme"
	SettingCaptureEnabled = "capture_enabled"
)

// GetSetting returns a stored value, or "" when the key is unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrap("get setting", err)
	}
	return value, nil
}

// SetSetting stores a value, replacing any previous one.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return wrap("set setting", err)
}

// RetentionPolicy returns the stored policy, or fallback when none is
// stored or the stored value is unreadable.
func (s *Store) RetentionPolicy(fallback model.RetentionPolicy) model.RetentionPolicy {
	v, err := s.GetSetting(SettingRetentionDays)
	if err != nil || v == "" {
		return fallback
	}
	days, err := parseInt(v)
	if err != nil {
		return fallback
	}
	return model.RetentionPolicy{Days: days}
}

// SetRetentionPolicy stores the policy.
func (s *Store) SetRetentionPolicy(p model.RetentionPolicy) error {
	days := p.Days
	if p.KeepsForever() {
		days = -1
	}
	return s.SetSetting(SettingRetentionDays, intToString(days))
}

// GetTheme returns the dashboard theme, defaulting to "default".
func (s *Store) GetTheme() string {
	v, _ := s.GetSetting(SettingTheme)
	if v == "" {
		return "default"
	}
	return v
}

// SetTheme stores the dashboard theme.
func (s *Store) SetTheme(name string) error {
	return s.SetSetting(SettingTheme, name)
}

// IsCaptureEnabled reports whether input capture should run. Defaults to
// true.
func (s *Store) IsCaptureEnabled() bool {
	v, _ := s.GetSetting(SettingCaptureEnabled)
	return v != "false"
}

// SetCaptureEnabled toggles input capture.
func (s *Store) SetCaptureEnabled(enabled bool) error {
	return s.SetSetting(SettingCaptureEnabled, boolToString(enabled))
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func intToString(i int) string {
	return strconv.Itoa(i)
}
