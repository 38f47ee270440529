package featureflag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
	"github.com/carestack/bedrock/pkg/pagination"
)

// FailurePolicy decides what IsEnabled reports when the flag store is
// unreachable. Fail-open keeps clinical workflows moving through
// infrastructure hiccups at the cost of briefly ignoring a disable;
// fail-closed is the conservative inverse. The choice is configuration,
// not a hardcoded catch-all, and every application of it is logged.
type FailurePolicy string

const (
	FailOpen   FailurePolicy = "fail_open"
	FailClosed FailurePolicy = "fail_closed"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case FailOpen, FailClosed:
		return FailurePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown flag failure policy %q", s)
	}
}

type Service struct {
	repo   Repository
	cache  Store
	ttl    time.Duration
	policy FailurePolicy
	log    zerolog.Logger
	inTx   func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(repo Repository, cache Store, ttl time.Duration, policy FailurePolicy, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		policy: policy,
		log:    logger,
		inTx:   db.InTx,
	}
}

// IsEnabled reports whether the feature is on for the tenant in ctx.
// Results are cached per tenant+feature for the configured TTL; a store
// error resolves according to the failure policy instead of surfacing.
func (s *Service) IsEnabled(ctx context.Context, feature string) bool {
	key := cacheKey(db.TenantFromContext(ctx), feature)

	if enabled, ok := s.cache.Get(key); ok {
		return enabled
	}

	flag, err := s.repo.Get(ctx, feature)
	if err != nil {
		enabled := s.policy == FailOpen
		s.log.Warn().Err(err).
			Str("feature", feature).
			Str("policy", string(s.policy)).
			Bool("resolved_enabled", enabled).
			Msg("flag store unreachable, applying failure policy")
		return enabled
	}

	enabled := flag != nil && flag.Enabled
	s.cache.Set(key, enabled, s.ttl)
	return enabled
}

// Get returns the flag row, or NotFound if it was never configured.
func (s *Service) Get(ctx context.Context, feature string) (*FeatureFlag, error) {
	flag, err := s.repo.Get(ctx, feature)
	if err != nil {
		return nil, apperror.Transient("load feature flag", err)
	}
	if flag == nil {
		return nil, apperror.NotFound("feature flag", feature)
	}
	return flag, nil
}

// List returns every configured flag for the tenant.
func (s *Service) List(ctx context.Context) ([]*FeatureFlag, error) {
	return s.repo.List(ctx)
}

// Enable turns the feature on. The flag upsert and its audit row commit in
// one transaction; the cache entry is dropped after commit.
func (s *Service) Enable(ctx context.Context, feature, performedBy string, configuration map[string]interface{}) error {
	if feature == "" {
		return apperror.Validation("feature name is required")
	}
	if performedBy == "" {
		return apperror.Validation("performed_by is required")
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		prev, err := s.repo.Get(txCtx, feature)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		flag := &FeatureFlag{FeatureName: feature}
		if prev != nil {
			*flag = *prev
		}
		flag.Enabled = true
		flag.EnabledAt = &now
		flag.EnabledBy = &performedBy
		flag.DisabledAt = nil
		flag.DisabledBy = nil
		flag.DisabledReason = nil
		if configuration != nil {
			flag.Configuration = configuration
		}

		if err := s.repo.Upsert(txCtx, flag); err != nil {
			return err
		}
		return s.repo.InsertAudit(txCtx, &FlagAudit{
			FeatureName:   feature,
			Action:        "enabled",
			PreviousState: prev.snapshot(),
			NewState:      flag.snapshot(),
			PerformedBy:   performedBy,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(cacheKey(db.TenantFromContext(ctx), feature))
	s.log.Info().Str("feature", feature).Str("by", performedBy).Msg("feature enabled")
	return nil
}

// Disable turns the feature off. A non-empty reason is mandatory.
func (s *Service) Disable(ctx context.Context, feature, performedBy, reason string) error {
	if feature == "" {
		return apperror.Validation("feature name is required")
	}
	if performedBy == "" {
		return apperror.Validation("performed_by is required")
	}
	if reason == "" {
		return apperror.Validation("a reason is required to disable a feature")
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		prev, err := s.repo.Get(txCtx, feature)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		flag := &FeatureFlag{FeatureName: feature}
		if prev != nil {
			*flag = *prev
		}
		flag.Enabled = false
		flag.DisabledAt = &now
		flag.DisabledBy = &performedBy
		flag.DisabledReason = &reason

		if err := s.repo.Upsert(txCtx, flag); err != nil {
			return err
		}
		return s.repo.InsertAudit(txCtx, &FlagAudit{
			FeatureName:   feature,
			Action:        "disabled",
			PreviousState: prev.snapshot(),
			NewState:      flag.snapshot(),
			Reason:        &reason,
			PerformedBy:   performedBy,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(cacheKey(db.TenantFromContext(ctx), feature))
	s.log.Info().Str("feature", feature).Str("by", performedBy).Str("reason", reason).Msg("feature disabled")
	return nil
}

// UpdateConfiguration replaces the flag's configuration without touching
// its enabled state. The flag must already exist.
func (s *Service) UpdateConfiguration(ctx context.Context, feature, performedBy string, configuration map[string]interface{}) error {
	if feature == "" {
		return apperror.Validation("feature name is required")
	}
	if performedBy == "" {
		return apperror.Validation("performed_by is required")
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		prev, err := s.repo.Get(txCtx, feature)
		if err != nil {
			return err
		}
		if prev == nil {
			return apperror.NotFound("feature flag", feature)
		}

		flag := *prev
		flag.Configuration = configuration

		if err := s.repo.Upsert(txCtx, &flag); err != nil {
			return err
		}
		return s.repo.InsertAudit(txCtx, &FlagAudit{
			FeatureName:   feature,
			Action:        "configuration_updated",
			PreviousState: prev.snapshot(),
			NewState:      flag.snapshot(),
			PerformedBy:   performedBy,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(cacheKey(db.TenantFromContext(ctx), feature))
	return nil
}

// AuditLog returns one page of flag mutations newest-first, optionally
// filtered to one feature, plus the total matching count.
func (s *Service) AuditLog(ctx context.Context, feature string, page pagination.Params) ([]*FlagAudit, int, error) {
	entries, err := s.repo.ListAudit(ctx, feature, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountAudit(ctx, feature)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
