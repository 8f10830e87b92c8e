package settings

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Get returns the raw value for a key, or nil if the key is unset.
func (svc *Service) Get(ctx context.Context, key string) (*string, error) {
	setting := &models.Setting{}
	err := svc.db.NewSelect().
		Model(setting).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	return &setting.Value, nil
}

// GetBool interprets a setting as a boolean feature flag. Unset or
// unparseable values fall back to the given default.
func (svc *Service) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	value, err := svc.Get(ctx, key)
	if err != nil {
		return fallback, errors.WithStack(err)
	}
	if value == nil {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(*value)
	if err != nil {
		return fallback, nil
	}
	return parsed, nil
}

// Set writes a setting, creating the key if it doesn't exist.
func (svc *Service) Set(ctx context.Context, key, value string) error {
	setting := &models.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	_, err := svc.db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Delete removes a setting. Clearing a key restores its default behavior.
func (svc *Service) Delete(ctx context.Context, key string) error {
	_, err := svc.db.NewDelete().
		Model((*models.Setting)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	return errors.WithStack(err)
}
