package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeviceType string

const (
	DeviceSensor      DeviceType = "SENSOR"
	DeviceTemperature DeviceType = "TEMPERATURE"
	DeviceHumidity    DeviceType = "HUMIDITY"
	DeviceMoisture    DeviceType = "MOISTURE"
	DeviceLight       DeviceType = "LIGHT"
	DeviceActuator    DeviceType = "ACTUATOR"
)

func ValidDeviceType(t DeviceType) bool {
	switch t {
	case DeviceSensor, DeviceTemperature, DeviceHumidity, DeviceMoisture, DeviceLight, DeviceActuator:
		return true
	}
	return false
}

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "ONLINE"
	DeviceOffline DeviceStatus = "OFFLINE"
)

type Device struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	FarmID       uuid.UUID  `json:"farmId" gorm:"type:char(36);not null;index"`
	FarmName     string     `json:"farmName" gorm:"size:100"`
	FarmerID     uuid.UUID  `json:"farmerId" gorm:"type:char(36);not null;index"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Type         DeviceType `json:"type" gorm:"type:varchar(20);not null"`
	SerialNumber *string    `json:"serialNumber,omitempty" gorm:"size:100;uniqueIndex"`

	LastValue *decimal.Decimal `json:"-" gorm:"type:decimal(14,4)"`
	LastUnit  *string          `json:"-" gorm:"size:20"`
	LastAt    *time.Time       `json:"-"`

	// OfflineNotified marks that the sweep already announced this device
	// as stale; ingestion resets it.
	OfflineNotified bool `json:"-" gorm:"not null;default:false"`

	DeletedAt *time.Time `json:"deletedAt,omitempty" gorm:"index"`
	Version   int64      `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	// Derived on read, never stored.
	Status      DeviceStatus `json:"status" gorm:"-"`
	LastReading *Reading     `json:"lastReading,omitempty" gorm:"-"`
}

// Reading is the most recent telemetry snapshot of a device.
type Reading struct {
	Value     decimal.Decimal `json:"value"`
	Unit      string          `json:"unit"`
	Timestamp time.Time       `json:"timestamp"`
}

func (d *Device) Tombstoned() bool {
	return d.DeletedAt != nil
}

// StatusAt derives ONLINE/OFFLINE from the recency of the last reading.
func (d *Device) StatusAt(now time.Time, window time.Duration) DeviceStatus {
	if d.LastAt != nil && now.Sub(*d.LastAt) <= window {
		return DeviceOnline
	}
	return DeviceOffline
}

// Hydrate fills the derived fields for responses.
func (d *Device) Hydrate(now time.Time, window time.Duration) {
	d.Status = d.StatusAt(now, window)
	if d.LastAt != nil && d.LastValue != nil {
		unit := ""
		if d.LastUnit != nil {
			unit = *d.LastUnit
		}
		d.LastReading = &Reading{Value: *d.LastValue, Unit: unit, Timestamp: *d.LastAt}
	}
}

type Severity string

const (
	SeverityInfo     Severity = "INFORMATIONAL"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityRank orders severities for sorting; higher is more severe.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

type Alert struct {
	ID             uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	DeviceID       uuid.UUID  `json:"deviceId" gorm:"type:char(36);not null;index"`
	FarmerID       uuid.UUID  `json:"farmerId" gorm:"type:char(36);not null;index"`
	Severity       Severity   `json:"severity" gorm:"type:varchar(20);not null"`
	Title          string     `json:"title" gorm:"size:200;not null"`
	Message        string     `json:"message" gorm:"type:text"`
	Acknowledged   bool       `json:"acknowledged" gorm:"not null;default:false;index"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy *uuid.UUID `json:"acknowledgedBy,omitempty" gorm:"type:char(36)"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime;index"`
}

type RuleCondition string

const (
	ConditionGreaterThan    RuleCondition = "GREATER_THAN"
	ConditionGreaterOrEqual RuleCondition = "GREATER_OR_EQUAL"
	ConditionLessThan       RuleCondition = "LESS_THAN"
	ConditionLessOrEqual    RuleCondition = "LESS_OR_EQUAL"
)

func ValidRuleCondition(c RuleCondition) bool {
	switch c {
	case ConditionGreaterThan, ConditionGreaterOrEqual, ConditionLessThan, ConditionLessOrEqual:
		return true
	}
	return false
}

// AlertRule is a per-device telemetry threshold evaluated on every ingest.
type AlertRule struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	DeviceID  uuid.UUID       `json:"deviceId" gorm:"type:char(36);not null;index"`
	Condition RuleCondition   `json:"condition" gorm:"type:varchar(20);not null"`
	Threshold decimal.Decimal `json:"threshold" gorm:"type:decimal(14,4);not null"`
	Severity  Severity        `json:"severity" gorm:"type:varchar(20);not null"`
	Title     string          `json:"title" gorm:"size:200;not null"`
	Enabled   bool            `json:"enabled" gorm:"not null;default:true"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// Breached reports whether value trips the rule.
func (r *AlertRule) Breached(value decimal.Decimal) bool {
	cmp := value.Cmp(r.Threshold)
	switch r.Condition {
	case ConditionGreaterThan:
		return cmp > 0
	case ConditionGreaterOrEqual:
		return cmp >= 0
	case ConditionLessThan:
		return cmp < 0
	case ConditionLessOrEqual:
		return cmp <= 0
	}
	return false
}
