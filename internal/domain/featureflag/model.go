package featureflag

import (
	"time"

	"github.com/google/uuid"
)

// Feature names gating the decision-support engines.
const (
	FeatureBedManagement        = "bed_management"
	FeatureDischargePredictions = "discharge_predictions"
	FeatureTransferPriority     = "transfer_priority"
	FeatureCapacityForecasting  = "capacity_forecasting"
	FeatureTurnoverTracking     = "turnover_tracking"
)

// FeatureFlag maps to the feature_flags table. A missing row means the
// feature has never been enabled for the tenant.
type FeatureFlag struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	TenantID       string                 `db:"tenant_id" json:"tenant_id"`
	FeatureName    string                 `db:"feature_name" json:"feature_name"`
	Enabled        bool                   `db:"enabled" json:"enabled"`
	Configuration  map[string]interface{} `db:"configuration" json:"configuration,omitempty"`
	EnabledAt      *time.Time             `db:"enabled_at" json:"enabled_at,omitempty"`
	EnabledBy      *string                `db:"enabled_by" json:"enabled_by,omitempty"`
	DisabledAt     *time.Time             `db:"disabled_at" json:"disabled_at,omitempty"`
	DisabledBy     *string                `db:"disabled_by" json:"disabled_by,omitempty"`
	DisabledReason *string                `db:"disabled_reason" json:"disabled_reason,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time              `db:"updated_at" json:"updated_at"`
}

// FlagAudit maps to the feature_flag_audit table: one append-only row per
// flag mutation, capturing the state before and after.
type FlagAudit struct {
	ID            uuid.UUID              `db:"id" json:"id"`
	TenantID      string                 `db:"tenant_id" json:"tenant_id"`
	FeatureName   string                 `db:"feature_name" json:"feature_name"`
	Action        string                 `db:"action" json:"action"` // enabled, disabled, configuration_updated
	PreviousState map[string]interface{} `db:"previous_state" json:"previous_state,omitempty"`
	NewState      map[string]interface{} `db:"new_state" json:"new_state,omitempty"`
	Reason        *string                `db:"reason" json:"reason,omitempty"`
	PerformedBy   string                 `db:"performed_by" json:"performed_by"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}

func (f *FeatureFlag) snapshot() map[string]interface{} {
	if f == nil {
		return nil
	}
	return map[string]interface{}{
		"enabled":       f.Enabled,
		"configuration": f.Configuration,
	}
}
