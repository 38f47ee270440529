package featureflag

import (
	"context"

	"github.com/carestack/bedrock/pkg/pagination"
)

// Repository persists flags and their audit trail. Get returns (nil, nil)
// when the flag has never been configured for the tenant.
type Repository interface {
	Get(ctx context.Context, feature string) (*FeatureFlag, error)
	List(ctx context.Context) ([]*FeatureFlag, error)
	Upsert(ctx context.Context, flag *FeatureFlag) error
	InsertAudit(ctx context.Context, a *FlagAudit) error
	ListAudit(ctx context.Context, feature string, page pagination.Params) ([]*FlagAudit, error)
	CountAudit(ctx context.Context, feature string) (int, error)
}
