package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
)

const (
	settingStandardRate   = "fees.standard_rate"
	settingProRate        = "fees.pro_rate"
	settingGatewayPercent = "fees.gateway_percent"
	settingGatewayFixed   = "fees.gateway_fixed"
)

// LoadFeeSchedule reads the commission configuration from the settings table.
// Returns ErrNotFound when the schedule was never saved.
func (db *DB) LoadFeeSchedule(ctx context.Context) (*models.FeeSchedule, error) {
	read := func(key string) (decimal.Decimal, error) {
		var raw string
		err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrNotFound
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse setting %s=%s: %w", key, raw, err)
		}
		return value, nil
	}

	var schedule models.FeeSchedule
	var err error
	if schedule.StandardRate, err = read(settingStandardRate); err != nil {
		return nil, err
	}
	if schedule.ProRate, err = read(settingProRate); err != nil {
		return nil, err
	}
	if schedule.GatewayPercent, err = read(settingGatewayPercent); err != nil {
		return nil, err
	}
	if schedule.GatewayFixed, err = read(settingGatewayFixed); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// SaveFeeSchedule upserts the commission configuration. Callers invalidate
// the fee cache afterwards.
func (db *DB) SaveFeeSchedule(ctx context.Context, schedule *models.FeeSchedule) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
              ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	now := time.Now()
	pairs := []struct {
		key   string
		value decimal.Decimal
	}{
		{settingStandardRate, schedule.StandardRate},
		{settingProRate, schedule.ProRate},
		{settingGatewayPercent, schedule.GatewayPercent},
		{settingGatewayFixed, schedule.GatewayFixed},
	}
	for _, p := range pairs {
		if _, err := db.ExecContext(ctx, query, p.key, p.value.String(), now); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", p.key, err)
		}
	}
	return nil
}
