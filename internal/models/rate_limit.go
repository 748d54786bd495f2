package models

// RateLimitRecord stores one admitted request for a client inside the rate limit window.
type RateLimitRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ClientIP  string  `gorm:"column:client_ip;type:text;not null;index;index:idx_client_timestamp,priority:1"`             // Client key.
	Timestamp float64 `gorm:"column:timestamp;type:double precision;not null;index;index:idx_client_timestamp,priority:2"` // Unix seconds.
}

// TableName pins the table name used by the relational limiter.
func (RateLimitRecord) TableName() string { return "rate_limits" }
