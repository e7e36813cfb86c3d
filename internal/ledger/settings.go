package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// UpsertSetting creates or updates a setting. Key and value are required.
// default_bill_amount must be a positive integer. An empty description keeps
// the stored one.
func (l *Ledger) UpsertSetting(ctx context.Context, key, value, description string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	description = strings.TrimSpace(description)

	if key == "" {
		return nil, invalid("key", "required")
	}
	if value == "" {
		return nil, invalid("value", "required")
	}
	if key == models.DefaultBillAmountKey {
		if _, err := parseAmount(value); err != nil {
			return nil, invalid("value", err.Error())
		}
	}

	setting := &models.Setting{Key: key, Value: value, Description: description}
	if err := l.store.UpsertSetting(ctx, setting); err != nil {
		return nil, err
	}

	l.logger.Info("Setting updated", "key", setting.Key, "value", setting.Value)
	return setting, nil
}

// ListSettings returns all settings ordered by key.
func (l *Ledger) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	return l.store.ListSettings(ctx)
}

// DefaultBillAmount reads default_bill_amount. Unset or unusable values fall
// back to FallbackBillAmount; rows written before validation existed may hold
// anything.
func (l *Ledger) DefaultBillAmount(ctx context.Context) (int64, error) {
	setting, err := l.store.GetSetting(ctx, models.DefaultBillAmountKey)
	if errors.Is(err, storage.ErrNotFound) {
		return FallbackBillAmount, nil
	}
	if err != nil {
		return 0, err
	}

	amount, err := parseAmount(setting.Value)
	if err != nil {
		l.logger.Warn("Ignoring invalid default bill amount",
			"value", setting.Value,
			"fallback", FallbackBillAmount,
			"error", err,
		)
		return FallbackBillAmount, nil
	}
	return amount, nil
}

func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", n)
	}
	return n, nil
}
