package bedassign

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
)

type mockRepo struct {
	beds        []*Bed
	patients    map[uuid.UUID]*PatientPlacement
	assignments []*Assignment
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*PatientPlacement)}
}

func (m *mockRepo) AvailableBeds(_ context.Context, unit *string) ([]*Bed, error) {
	var out []*Bed
	for _, b := range m.beds {
		if b.Status != "available" {
			continue
		}
		if unit != nil && b.Unit != *unit {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockRepo) GetBed(_ context.Context, id uuid.UUID) (*Bed, error) {
	for _, b := range m.beds {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, apperror.NotFound("bed", id)
}

func (m *mockRepo) GetPatient(_ context.Context, id uuid.UUID) (*PatientPlacement, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperror.NotFound("patient", id)
	}
	return p, nil
}

func (m *mockRepo) InsertAssignment(_ context.Context, a *Assignment) error {
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockRepo) OccupyBed(_ context.Context, bedID uuid.UUID, at time.Time) (int64, error) {
	for _, b := range m.beds {
		if b.ID == bedID && b.Status == "available" {
			b.Status = "occupied"
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockRepo) LinkPatientBed(_ context.Context, patientID, bedID uuid.UUID) error {
	p, ok := m.patients[patientID]
	if !ok {
		return apperror.NotFound("patient", patientID)
	}
	p.CurrentBedID = &bedID
	return nil
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
	return svc
}

func availableBed(room, unit string) *Bed {
	return &Bed{
		ID:             uuid.New(),
		RoomNumber:     room,
		BedNumber:      "A",
		Unit:           unit,
		Status:         "available",
		CleaningStatus: "clean",
	}
}

func TestRecommendBeds_FeatureDisabled(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{disabled: true})

	_, err := svc.RecommendBeds(context.Background(), &Requirements{PatientID: uuid.New()})
	if !apperror.IsFeatureDisabled(err) {
		t.Errorf("expected feature-disabled, got %v", err)
	}
}

func TestRecommendBeds_IsolationScenario(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	contact := "contact"
	bed101 := availableBed("101", "Med-Surg")
	bed101.IsolationCapable = true
	bed101.IsolationType = &contact
	bed102 := availableBed("102", "Med-Surg")
	repo.beds = []*Bed{bed101, bed102}

	recs, err := svc.RecommendBeds(context.Background(), &Requirements{
		PatientID:         uuid.New(),
		IsolationRequired: true,
		IsolationType:     &contact,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected only the isolation-capable bed, got %d recommendations", len(recs))
	}
	if recs[0].Bed.ID != bed101.ID {
		t.Error("expected bed 101 recommended")
	}
	if len(recs[0].Warnings) != 0 {
		t.Errorf("isolation match should be warning-free, got %v", recs[0].Warnings)
	}
}

func TestRecommendBeds_TopThreeDescending(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	best := availableBed("201", "Med-Surg")
	ok1 := availableBed("202", "Med-Surg")
	ok1.CleaningStatus = "in_progress"
	ok2 := availableBed("203", "Med-Surg")
	ok2.UnitStaffRatio = 10
	worst := availableBed("204", "Med-Surg")
	worst.CleaningStatus = "dirty"
	worst.UnitStaffRatio = 10
	repo.beds = []*Bed{worst, ok2, best, ok1}

	recs, err := svc.RecommendBeds(context.Background(), &Requirements{PatientID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected top 3, got %d", len(recs))
	}
	if recs[0].Bed.ID != best.ID {
		t.Error("best bed should rank first")
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Error("recommendations must be score-descending")
		}
	}
}

func TestRecommendBeds_CandidateCap(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	for i := 0; i < 40; i++ {
		repo.beds = append(repo.beds, availableBed("3", "Med-Surg"))
	}

	recs, err := svc.RecommendBeds(context.Background(), &Requirements{PatientID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("expected 3 recommendations, got %d", len(recs))
	}
}

func TestRecommendBeds_EmptyNotError(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{})

	recs, err := svc.RecommendBeds(context.Background(), &Requirements{PatientID: uuid.New()})
	if err != nil {
		t.Fatalf("no candidates must not be an error, got %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty result, got %d", len(recs))
	}
}

func TestRecommendBeds_IsolationTypeValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{})

	_, err := svc.RecommendBeds(context.Background(), &Requirements{
		PatientID:         uuid.New(),
		IsolationRequired: true,
	})
	if !apperror.IsValidation(err) {
		t.Errorf("missing isolation type must fail validation, got %v", err)
	}

	bogus := "reverse"
	_, err = svc.RecommendBeds(context.Background(), &Requirements{
		PatientID:         uuid.New(),
		IsolationRequired: true,
		IsolationType:     &bogus,
	})
	if !apperror.IsValidation(err) {
		t.Errorf("unknown isolation type must fail validation, got %v", err)
	}
}

func TestAssignBed(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})
	fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	contact := "contact"
	patientID := uuid.New()
	repo.patients[patientID] = &PatientPlacement{
		ID: patientID, IsolationRequired: true, IsolationType: &contact,
	}
	bed := availableBed("101", "ICU")
	repo.beds = []*Bed{bed}

	a, err := svc.AssignBed(context.Background(), patientID, bed.ID, "charge.nurse", "closest open ICU bed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.IsolationRequired != true || a.IsolationType == nil || *a.IsolationType != contact {
		t.Error("assignment must snapshot the patient's isolation state")
	}
	if !a.AssignedAt.Equal(fixed) {
		t.Errorf("unexpected assigned_at %v", a.AssignedAt)
	}
	if bed.Status != "occupied" {
		t.Error("bed must flip to occupied")
	}
	if repo.patients[patientID].CurrentBedID == nil || *repo.patients[patientID].CurrentBedID != bed.ID {
		t.Error("patient must be linked to the bed")
	}
	if len(repo.assignments) != 1 {
		t.Errorf("expected one assignment row, got %d", len(repo.assignments))
	}
}

func TestAssignBed_ConflictWhenBedTaken(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	patientID := uuid.New()
	repo.patients[patientID] = &PatientPlacement{ID: patientID}
	bed := availableBed("101", "ICU")
	bed.Status = "occupied"
	repo.beds = []*Bed{bed}

	_, err := svc.AssignBed(context.Background(), patientID, bed.ID, "charge.nurse", "")
	if !apperror.IsConflict(err) {
		t.Errorf("expected conflict for an already-occupied bed, got %v", err)
	}
}

func TestAssignBed_BedNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockFlags{})

	patientID := uuid.New()
	repo.patients[patientID] = &PatientPlacement{ID: patientID}

	_, err := svc.AssignBed(context.Background(), patientID, uuid.New(), "charge.nurse", "")
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found for unknown bed, got %v", err)
	}
}

func TestAssignBed_RequiresAssigner(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockFlags{})

	_, err := svc.AssignBed(context.Background(), uuid.New(), uuid.New(), "", "")
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
