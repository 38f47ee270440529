package featureflag

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carestack/bedrock/internal/platform/db"
	"github.com/carestack/bedrock/pkg/pagination"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const flagCols = `id, tenant_id, feature_name, enabled, configuration,
	enabled_at, enabled_by, disabled_at, disabled_by, disabled_reason,
	created_at, updated_at`

func (r *repoPG) Get(ctx context.Context, feature string) (*FeatureFlag, error) {
	flag, err := scanFlag(r.conn(ctx).QueryRow(ctx,
		`SELECT `+flagCols+` FROM feature_flags WHERE feature_name = $1`, feature))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return flag, err
}

func (r *repoPG) List(ctx context.Context) ([]*FeatureFlag, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+flagCols+` FROM feature_flags ORDER BY feature_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []*FeatureFlag
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

func (r *repoPG) Upsert(ctx context.Context, flag *FeatureFlag) error {
	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}
	flag.TenantID = db.TenantFromContext(ctx)

	config, err := marshalConfig(flag.Configuration)
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO feature_flags (
			id, tenant_id, feature_name, enabled, configuration,
			enabled_at, enabled_by, disabled_at, disabled_by, disabled_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (feature_name) DO UPDATE SET
			enabled=EXCLUDED.enabled, configuration=EXCLUDED.configuration,
			enabled_at=EXCLUDED.enabled_at, enabled_by=EXCLUDED.enabled_by,
			disabled_at=EXCLUDED.disabled_at, disabled_by=EXCLUDED.disabled_by,
			disabled_reason=EXCLUDED.disabled_reason, updated_at=NOW()`,
		flag.ID, flag.TenantID, flag.FeatureName, flag.Enabled, config,
		flag.EnabledAt, flag.EnabledBy, flag.DisabledAt, flag.DisabledBy, flag.DisabledReason,
	)
	return err
}

func (r *repoPG) InsertAudit(ctx context.Context, a *FlagAudit) error {
	a.ID = uuid.New()
	a.TenantID = db.TenantFromContext(ctx)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	prev, err := marshalConfig(a.PreviousState)
	if err != nil {
		return err
	}
	next, err := marshalConfig(a.NewState)
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO feature_flag_audit (
			id, tenant_id, feature_name, action, previous_state, new_state, reason, performed_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.TenantID, a.FeatureName, a.Action, prev, next, a.Reason, a.PerformedBy, a.CreatedAt,
	)
	return err
}

func (r *repoPG) ListAudit(ctx context.Context, feature string, page pagination.Params) ([]*FlagAudit, error) {
	if page.Limit <= 0 {
		page.Limit = pagination.DefaultLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	query := `SELECT id, tenant_id, feature_name, action, previous_state, new_state, reason, performed_by, created_at
		FROM feature_flag_audit`
	args := []interface{}{}
	if feature != "" {
		query += ` WHERE feature_name = $1`
		args = append(args, feature)
	}
	query += ` ORDER BY created_at DESC` + page.SQL()

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FlagAudit
	for rows.Next() {
		var a FlagAudit
		var prev, next []byte
		if err := rows.Scan(&a.ID, &a.TenantID, &a.FeatureName, &a.Action, &prev, &next,
			&a.Reason, &a.PerformedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalConfig(prev, &a.PreviousState); err != nil {
			return nil, err
		}
		if err := unmarshalConfig(next, &a.NewState); err != nil {
			return nil, err
		}
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

func (r *repoPG) CountAudit(ctx context.Context, feature string) (int, error) {
	query := `SELECT count(*) FROM feature_flag_audit`
	args := []interface{}{}
	if feature != "" {
		query += ` WHERE feature_name = $1`
		args = append(args, feature)
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func scanFlag(row pgx.Row) (*FeatureFlag, error) {
	var f FeatureFlag
	var config []byte
	err := row.Scan(
		&f.ID, &f.TenantID, &f.FeatureName, &f.Enabled, &config,
		&f.EnabledAt, &f.EnabledBy, &f.DisabledAt, &f.DisabledBy, &f.DisabledReason,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalConfig(config, &f.Configuration); err != nil {
		return nil, err
	}
	return &f, nil
}

func marshalConfig(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalConfig(b []byte, dst *map[string]interface{}) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
