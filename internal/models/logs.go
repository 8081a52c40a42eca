package models

import "time"

// Действия, фиксируемые в журнале активности.
const (
	ActionUserRoleUpdated = "user_role_updated"
	ActionUserPlanUpdated = "user_plan_updated"
	ActionUserDeleted     = "user_deleted"
	ActionPlanCreated     = "plan_created"
	ActionPlanUpdated     = "plan_updated"
)

// ActivityLog — неизменяемая запись журнала привилегированных действий.
// Записывается по принципу best-effort: сбой записи не откатывает
// основную операцию.
type ActivityLog struct {
	ID         int64      `json:"id"`
	ActorID    int64      `json:"actor_id"`
	Action     string     `json:"action"`
	TargetUser *int64     `json:"target_user,omitempty"`
	Details    string     `json:"details"`
	CreatedAt  time.Time  `json:"created_at"`
	Actor      *OwnerInfo `json:"actor,omitempty"`
	Target     *OwnerInfo `json:"target,omitempty"`
}

// LoginAttempt — запись о попытке входа. Сохраняется и для несуществующих
// email, чтобы аудит покрывал перебор учетных записей.
type LoginAttempt struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Success   bool      `json:"success"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// APIUsageLog — запись об обращении к публичному API по ключу.
type APIUsageLog struct {
	ID         int64      `json:"id"`
	APIKeyID   int64      `json:"api_key_id"`
	UserID     int64      `json:"user_id"`
	Endpoint   string     `json:"endpoint"`
	Method     string     `json:"method"`
	StatusCode int        `json:"status_code"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `json:"created_at"`
	KeyName    string     `json:"key_name,omitempty"`
	Owner      *OwnerInfo `json:"owner,omitempty"`
}
