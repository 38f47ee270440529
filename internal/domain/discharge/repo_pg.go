package discharge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
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

func (r *repoPG) ClinicalSnapshot(ctx context.Context, admissionID uuid.UUID) (*ClinicalSnapshot, error) {
	var s ClinicalSnapshot
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT a.id, a.patient_id, u.name, a.admitted_at,
		       a.mobility, a.pain_level,
		       EXISTS (
		           SELECT 1 FROM vital_signs v
		           WHERE v.admission_id = a.id
		             AND v.recorded_at >= now() - interval '24 hours'
		             AND v.is_abnormal
		       ),
		       (SELECT count(*) FROM lab_results l
		        WHERE l.admission_id = a.id AND l.status = 'pending'),
		       (SELECT count(*) FROM medications m
		        WHERE m.admission_id = a.id AND m.active AND m.requires_monitoring),
		       c.destination, c.placement_arranged, c.home_health_arranged,
		       c.transport_arranged, c.med_rec_complete,
		       c.education_items_completed, c.follow_up_scheduled
		FROM admissions a
		JOIN units u ON u.id = a.unit_id
		LEFT JOIN discharge_checklists c ON c.admission_id = a.id
		WHERE a.id = $1`, admissionID).
		Scan(&s.AdmissionID, &s.PatientID, &s.Unit, &s.AdmittedAt,
			&s.Mobility, &s.PainLevel,
			&s.UnstableVitals24h, &s.PendingLabCount, &s.MonitoredMedCount,
			&s.Destination, &s.PlacementArranged, &s.HomeHealthArranged,
			&s.TransportArranged, &s.MedRecComplete,
			&s.EducationCompleted, &s.FollowUpScheduled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("admission", admissionID)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) ResolvedCategories(ctx context.Context, admissionID uuid.UUID) (map[string]bool, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT category FROM discharge_barrier_resolutions
		WHERE admission_id = $1`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resolved := make(map[string]bool)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		resolved[c] = true
	}
	return resolved, rows.Err()
}

func (r *repoPG) ResolveCategory(ctx context.Context, admissionID uuid.UUID, category, resolvedBy string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO discharge_barrier_resolutions (admission_id, category, resolved_by, resolved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (admission_id, category) DO NOTHING`,
		admissionID, category, resolvedBy, at)
	return err
}

const predictionCols = `
	id, admission_id, patient_id, unit, medical_score, social_score,
	overall_score, predicted_discharge_date, confidence, barriers,
	interventions, computed_at`

func scanPrediction(row pgx.Row) (*Prediction, error) {
	var p Prediction
	var barriers, interventions []byte
	err := row.Scan(&p.ID, &p.AdmissionID, &p.PatientID, &p.Unit,
		&p.MedicalScore, &p.SocialScore, &p.OverallScore,
		&p.PredictedDischargeDate, &p.Confidence,
		&barriers, &interventions, &p.ComputedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(barriers, &p.Barriers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(interventions, &p.Interventions); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetPrediction(ctx context.Context, admissionID uuid.UUID) (*Prediction, error) {
	p, err := scanPrediction(r.conn(ctx).QueryRow(ctx, `
		SELECT`+predictionCols+`
		FROM discharge_readiness_predictions
		WHERE admission_id = $1`, admissionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("discharge prediction", admissionID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) UpsertPrediction(ctx context.Context, p *Prediction) error {
	barriers, err := json.Marshal(p.Barriers)
	if err != nil {
		return err
	}
	interventions, err := json.Marshal(p.Interventions)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO discharge_readiness_predictions (`+predictionCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (admission_id) DO UPDATE SET
			medical_score = EXCLUDED.medical_score,
			social_score = EXCLUDED.social_score,
			overall_score = EXCLUDED.overall_score,
			predicted_discharge_date = EXCLUDED.predicted_discharge_date,
			confidence = EXCLUDED.confidence,
			barriers = EXCLUDED.barriers,
			interventions = EXCLUDED.interventions,
			computed_at = EXCLUDED.computed_at`,
		p.ID, p.AdmissionID, p.PatientID, p.Unit,
		p.MedicalScore, p.SocialScore, p.OverallScore,
		p.PredictedDischargeDate, p.Confidence,
		barriers, interventions, p.ComputedAt)
	return err
}

func (r *repoPG) InsertEvent(ctx context.Context, p *Prediction) error {
	barriers, err := json.Marshal(p.Barriers)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO discharge_prediction_events
			(id, admission_id, medical_score, social_score, overall_score,
			 predicted_discharge_date, confidence, barriers, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), p.AdmissionID, p.MedicalScore, p.SocialScore,
		p.OverallScore, p.PredictedDischargeDate, p.Confidence,
		barriers, p.ComputedAt)
	return err
}

func (r *repoPG) ReadyPatients(ctx context.Context, minScore float64) ([]*Prediction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT`+predictionCols+`
		FROM discharge_readiness_predictions
		WHERE overall_score >= $1
		ORDER BY overall_score DESC, predicted_discharge_date ASC`, minScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repoPG) Metrics(ctx context.Context, since time.Time) (*Metrics, error) {
	m := &Metrics{WindowStart: since, BarrierDistribution: make(map[string]int)}

	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (a.discharged_at - a.admitted_at)) / 3600), 0),
		       COALESCE(AVG(CASE WHEN a.discharged_at > p.predicted_discharge_date THEN 1.0 ELSE 0.0 END), 0),
		       COALESCE(AVG(CASE WHEN a.discharged_at > p.predicted_discharge_date
		                    THEN EXTRACT(EPOCH FROM (a.discharged_at - p.predicted_discharge_date)) / 3600
		                    ELSE NULL END), 0)
		FROM admissions a
		JOIN discharge_readiness_predictions p ON p.admission_id = a.id
		WHERE a.discharged_at >= $1`, since).
		Scan(&m.Discharges, &m.AverageLOSHours, &m.DelayedDischargeRate, &m.AverageDelayHours)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b->>'category', count(*)
		FROM discharge_prediction_events e,
		     jsonb_array_elements(e.barriers) b
		WHERE e.computed_at >= $1
		GROUP BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		m.BarrierDistribution[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Completion rate counts distinct admission+category barriers raised
	// in the window against those manually resolved.
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT CASE WHEN raised = 0 THEN 0 ELSE resolved::float / raised END
		FROM (
		    SELECT (SELECT count(*) FROM discharge_barrier_resolutions
		            WHERE resolved_at >= $1) AS resolved,
		           (SELECT count(DISTINCT (e.admission_id, b->>'category'))
		            FROM discharge_prediction_events e,
		                 jsonb_array_elements(e.barriers) b
		            WHERE e.computed_at >= $1) AS raised
		) t`, since).
		Scan(&m.InterventionCompletionRate)
	if err != nil {
		return nil, err
	}
	return m, nil
}
