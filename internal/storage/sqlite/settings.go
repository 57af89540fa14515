package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/pkg/logger"
)

// ErrSettingsNotFound is returned when no settings are saved for a profile
var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRecord is the saved form of one profile
type SettingsRecord struct {
	Profile   string             `json:"profile"`
	Form      briefing.FormInput `json:"form"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SettingsStorage persists the input form per profile
type SettingsStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSettingsStorage creates the settings storage and its table
func NewSettingsStorage(db *sql.DB, logger *logger.Logger) (*SettingsStorage, error) {
	storage := &SettingsStorage{
		db:     db,
		logger: logger.Named("sqlite-settings"),
	}

	if err := storage.initDB(); err != nil {
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *SettingsStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS form_settings (
			profile TEXT PRIMARY KEY,
			form TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create form_settings table: %w", err)
	}
	return nil
}

// Save stores the form for the profile, replacing what was there
func (s *SettingsStorage) Save(ctx context.Context, profile string, form briefing.FormInput) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to marshal form: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO form_settings (profile, form, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET form = excluded.form, updated_at = excluded.updated_at`,
		profile,
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", profile, err)
	}

	s.logger.Debug("Saved form settings", String("profile", profile))
	return nil
}

// Load returns the form saved for the profile
func (s *SettingsStorage) Load(ctx context.Context, profile string) (*SettingsRecord, error) {
	var data, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT form, updated_at FROM form_settings WHERE profile = ?`,
		profile,
	).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings for %s: %w", profile, err)
	}

	return decodeRecord(profile, data, updatedAt)
}

// Delete removes the profile's settings
func (s *SettingsStorage) Delete(ctx context.Context, profile string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM form_settings WHERE profile = ?`, profile)
	if err != nil {
		return fmt.Errorf("failed to delete settings for %s: %w", profile, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrSettingsNotFound
	}
	return nil
}

// List returns every saved profile ordered by name
func (s *SettingsStorage) List(ctx context.Context) ([]*SettingsRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile, form, updated_at FROM form_settings ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var records []*SettingsRecord
	for rows.Next() {
		var profile, data, updatedAt string
		if err := rows.Scan(&profile, &data, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}
		record, err := decodeRecord(profile, data, updatedAt)
		if err != nil {
			s.logger.Warn("Skipping unreadable settings", String("profile", profile), Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings rows: %w", err)
	}

	return records, nil
}

func decodeRecord(profile, data, updatedAt string) (*SettingsRecord, error) {
	// Missing fields keep the defaults, like a partially filled form
	record := &SettingsRecord{Profile: profile, Form: briefing.DefaultFormInput()}
	if err := json.Unmarshal([]byte(data), &record.Form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings for %s: %w", profile, err)
	}

	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for %s: %w", profile, err)
	}
	record.UpdatedAt = t

	return record, nil
}
