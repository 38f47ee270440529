package discharge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
)

type mockRepo struct {
	snapshots   map[uuid.UUID]*ClinicalSnapshot
	resolved    map[uuid.UUID]map[string]bool
	predictions map[uuid.UUID]*Prediction
	events      []*Prediction
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		snapshots:   make(map[uuid.UUID]*ClinicalSnapshot),
		resolved:    make(map[uuid.UUID]map[string]bool),
		predictions: make(map[uuid.UUID]*Prediction),
	}
}

func (m *mockRepo) ClinicalSnapshot(_ context.Context, admissionID uuid.UUID) (*ClinicalSnapshot, error) {
	s, ok := m.snapshots[admissionID]
	if !ok {
		return nil, apperror.NotFound("admission", admissionID)
	}
	return s, nil
}

func (m *mockRepo) ResolvedCategories(_ context.Context, admissionID uuid.UUID) (map[string]bool, error) {
	return m.resolved[admissionID], nil
}

func (m *mockRepo) ResolveCategory(_ context.Context, admissionID uuid.UUID, category, _ string, _ time.Time) error {
	if m.resolved[admissionID] == nil {
		m.resolved[admissionID] = make(map[string]bool)
	}
	m.resolved[admissionID][category] = true
	return nil
}

func (m *mockRepo) GetPrediction(_ context.Context, admissionID uuid.UUID) (*Prediction, error) {
	p, ok := m.predictions[admissionID]
	if !ok {
		return nil, apperror.NotFound("discharge prediction", admissionID)
	}
	return p, nil
}

func (m *mockRepo) UpsertPrediction(_ context.Context, p *Prediction) error {
	m.predictions[p.AdmissionID] = p
	return nil
}

func (m *mockRepo) InsertEvent(_ context.Context, p *Prediction) error {
	m.events = append(m.events, p)
	return nil
}

func (m *mockRepo) ReadyPatients(_ context.Context, minScore float64) ([]*Prediction, error) {
	var out []*Prediction
	for _, p := range m.predictions {
		if p.OverallScore >= minScore {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) Metrics(_ context.Context, since time.Time) (*Metrics, error) {
	return &Metrics{WindowStart: since, BarrierDistribution: map[string]int{}}, nil
}

type mockFlags struct {
	disabled bool
}

func (m *mockFlags) IsEnabled(_ context.Context, _ string) bool { return !m.disabled }

func newTestService(repo *mockRepo, flags *mockFlags) *Service {
	svc := NewService(repo, flags, zerolog.Nop())
	svc.inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}
	svc.now = func() time.Time { return noon }
	return svc
}

func TestPredict_FeatureDisabled(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{disabled: true})

	_, err := svc.Predict(context.Background(), uuid.New())
	if !apperror.IsFeatureDisabled(err) {
		t.Errorf("expected feature-disabled, got %v", err)
	}
}

func TestPredict_UpsertsAndAppendsEvent(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	snap := readySnapshot()
	snap.TransportArranged = false
	repo.snapshots[snap.AdmissionID] = snap

	first, err := svc.Predict(context.Background(), snap.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Predict(context.Background(), snap.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.predictions) != 1 {
		t.Errorf("expected one current row per admission, got %d", len(repo.predictions))
	}
	if len(repo.events) != 2 {
		t.Errorf("every run must append an event, got %d", len(repo.events))
	}
	if first.OverallScore != second.OverallScore {
		t.Error("same chart must score the same")
	}
}

func TestPredict_AdmissionNotFound(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{})

	_, err := svc.Predict(context.Background(), uuid.New())
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestResolveBarrier_Recomputes(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	snap := readySnapshot()
	snap.TransportArranged = false
	repo.snapshots[snap.AdmissionID] = snap

	before, err := svc.Predict(context.Background(), snap.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.Barriers) != 1 {
		t.Fatalf("expected one open barrier, got %d", len(before.Barriers))
	}

	after, err := svc.ResolveBarrier(context.Background(), snap.AdmissionID, before.Barriers[0].ID, "case.manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.OverallScore <= before.OverallScore {
		t.Error("resolving the only barrier must raise the score")
	}
	if len(after.Barriers) != 0 {
		t.Errorf("resolved barrier must not reappear, got %v", after.Barriers)
	}
	if !after.PredictedDischargeDate.Before(before.PredictedDischargeDate) {
		t.Error("resolving a barrier should pull the predicted date earlier")
	}
}

func TestResolveBarrier_UnknownID(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	snap := readySnapshot()
	snap.TransportArranged = false
	repo.snapshots[snap.AdmissionID] = snap
	if _, err := svc.Predict(context.Background(), snap.AdmissionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.ResolveBarrier(context.Background(), snap.AdmissionID, uuid.New(), "case.manager")
	if !apperror.IsValidation(err) {
		t.Errorf("unknown barrier id must fail validation, got %v", err)
	}
}

func TestResolveBarrier_RequiresResolver(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{})

	_, err := svc.ResolveBarrier(context.Background(), uuid.New(), uuid.New(), "")
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestReadyPatients_DefaultThreshold(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	ready := &Prediction{AdmissionID: uuid.New(), OverallScore: 85}
	notReady := &Prediction{AdmissionID: uuid.New(), OverallScore: 75}
	repo.predictions[ready.AdmissionID] = ready
	repo.predictions[notReady.AdmissionID] = notReady

	patients, err := svc.ReadyPatients(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 1 || patients[0].AdmissionID != ready.AdmissionID {
		t.Errorf("default threshold of %d should include only the ready admission", DefaultReadyScore)
	}
}
