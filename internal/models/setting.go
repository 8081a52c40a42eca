package models

import (
	"encoding/json"
	"time"
)

// Категории системных настроек.
const (
	SettingCategoryPayment      = "payment"
	SettingCategoryStorage      = "storage"
	SettingCategoryLocalization = "localization"
)

// Setting — системная настройка вида ключ/значение. Значение хранится
// как произвольный JSON. IsSecret скрывает значение в интерфейсе.
type Setting struct {
	ID          int64           `json:"id"`
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	DisplayName string          `json:"display_name"`
	Category    string          `json:"category"`
	IsSecret    bool            `json:"is_secret"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SettingUpdate — элемент массового обновления настроек: upsert по ключу.
type SettingUpdate struct {
	Key   string          `json:"key" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}
