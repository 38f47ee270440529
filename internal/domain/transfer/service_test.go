package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/notify"
)

type mockRepo struct {
	patients       []*EDPatient
	priorities     map[uuid.UUID]*Priority
	availableBeds  map[string]int
	dischargeTimes map[string][]time.Time
	units          map[string]*Unit
	staff          map[uuid.UUID][]*StaffMember
	statuses       map[uuid.UUID]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		priorities:     make(map[uuid.UUID]*Priority),
		availableBeds:  make(map[string]int),
		dischargeTimes: make(map[string][]time.Time),
		units:          make(map[string]*Unit),
		staff:          make(map[uuid.UUID][]*StaffMember),
		statuses:       make(map[uuid.UUID]string),
	}
}

func (m *mockRepo) AwaitingTransfer(_ context.Context, unit *string) ([]*EDPatient, error) {
	var out []*EDPatient
	for _, p := range m.patients {
		if unit != nil && p.TargetUnit != *unit {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) GetAdmission(_ context.Context, admissionID uuid.UUID) (*EDPatient, error) {
	for _, p := range m.patients {
		if p.AdmissionID == admissionID {
			return p, nil
		}
	}
	return nil, apperror.NotFound("admission", admissionID)
}

func (m *mockRepo) UpsertPriority(_ context.Context, p *Priority) error {
	m.priorities[p.AdmissionID] = p
	return nil
}

func (m *mockRepo) AvailableBedCount(_ context.Context, unit string) (int, error) {
	return m.availableBeds[unit], nil
}

func (m *mockRepo) DischargeTimes(_ context.Context, unit string, _ float64) ([]time.Time, error) {
	return m.dischargeTimes[unit], nil
}

func (m *mockRepo) GetUnit(_ context.Context, name string) (*Unit, error) {
	u, ok := m.units[name]
	if !ok {
		return nil, apperror.NotFound("unit", name)
	}
	return u, nil
}

func (m *mockRepo) UnitStaff(_ context.Context, unitID uuid.UUID) ([]*StaffMember, error) {
	return m.staff[unitID], nil
}

func (m *mockRepo) SetAdmissionStatus(_ context.Context, admissionID uuid.UUID, status string) error {
	m.statuses[admissionID] = status
	return nil
}

func (m *mockRepo) Metrics(_ context.Context, since time.Time) (*Metrics, error) {
	return &Metrics{WindowStart: since}, nil
}

type mockOutbox struct {
	created []*notify.Notification
}

func (m *mockOutbox) Create(_ context.Context, n *notify.Notification) error {
	n.CreatedAt = time.Now()
	m.created = append(m.created, n)
	return nil
}

func (m *mockOutbox) CountSince(_ context.Context, admissionID, unitID uuid.UUID, since time.Time) (int, error) {
	count := 0
	for _, n := range m.created {
		if n.AdmissionID != nil && *n.AdmissionID == admissionID &&
			n.UnitID != nil && *n.UnitID == unitID && !n.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockOutbox) ListByRecipient(_ context.Context, _ uuid.UUID, _ int) ([]*notify.Notification, error) {
	return m.created, nil
}

type mockFlags struct {
	disabled bool
}

func (m *mockFlags) IsEnabled(_ context.Context, _ string) bool { return !m.disabled }

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, outbox *mockOutbox, flags *mockFlags) *Service {
	svc := NewService(repo, outbox, flags, zerolog.Nop())
	svc.inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}
	svc.now = func() time.Time { return noon }
	return svc
}

func boardingPatient(acuity int, waitHours float64, unit string) *EDPatient {
	since := noon.Add(-time.Duration(waitHours * float64(time.Hour)))
	return &EDPatient{
		AdmissionID:   uuid.New(),
		PatientID:     uuid.New(),
		Acuity:        acuity,
		TargetUnit:    unit,
		AwaitingSince: &since,
	}
}

func TestPrioritizeEDPatients_FeatureDisabled(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockOutbox{}, &mockFlags{disabled: true})

	_, err := svc.PrioritizeEDPatients(context.Background(), nil)
	if !apperror.IsFeatureDisabled(err) {
		t.Errorf("expected feature-disabled, got %v", err)
	}
}

func TestPrioritizeEDPatients_SortedAndUpserted(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	low := boardingPatient(5, 0, "Med-Surg")
	high := boardingPatient(1, 3, "ICU")
	repo.patients = []*EDPatient{low, high}

	priorities, err := svc.PrioritizeEDPatients(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(priorities) != 2 {
		t.Fatalf("expected 2 priorities, got %d", len(priorities))
	}
	if priorities[0].AdmissionID != high.AdmissionID {
		t.Error("highest score must come first")
	}
	if len(repo.priorities) != 2 {
		t.Errorf("every admission must be upserted, got %d", len(repo.priorities))
	}
}

func TestPrioritizeEDPatients_UnstampedWaitCountsAsZero(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	unstamped := boardingPatient(3, 0, "ICU")
	unstamped.AwaitingSince = nil
	repo.patients = []*EDPatient{unstamped}

	priorities, err := svc.PrioritizeEDPatients(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(priorities) != 1 {
		t.Fatalf("expected 1 priority, got %d", len(priorities))
	}
	if priorities[0].WaitHours != 0 {
		t.Errorf("missing boarding timestamp must count as zero wait, got %.1f", priorities[0].WaitHours)
	}
	if want := scoreTransfer(unstamped, 0); priorities[0].Score != want {
		t.Errorf("score = %.1f, want %.1f", priorities[0].Score, want)
	}
}

func TestPrioritizeEDPatients_UnitFilter(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	repo.patients = []*EDPatient{
		boardingPatient(3, 1, "ICU"),
		boardingPatient(3, 1, "Med-Surg"),
	}

	icu := "ICU"
	priorities, err := svc.PrioritizeEDPatients(context.Background(), &icu)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(priorities) != 1 || priorities[0].TargetUnit != "ICU" {
		t.Errorf("expected only the ICU admission, got %d", len(priorities))
	}
}

func TestPredictAvailability_Buckets(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	repo.availableBeds["ICU"] = 1
	repo.dischargeTimes["ICU"] = []time.Time{
		noon.Add(90 * time.Minute), // inside the 2h bucket
		noon.Add(3 * time.Hour),    // inside the 4h bucket
		noon.Add(7 * time.Hour),    // inside the 8h bucket
	}

	fc, err := svc.PredictAvailability(context.Background(), "ICU", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.CurrentAvailable != 1 {
		t.Errorf("expected 1 bed currently available, got %d", fc.CurrentAvailable)
	}
	if len(fc.Points) != 4 {
		t.Fatalf("expected 4 checkpoints, got %d", len(fc.Points))
	}
	wantPredicted := []int{1, 2, 3, 4}
	for i, p := range fc.Points {
		if p.PredictedAvailable != wantPredicted[i] {
			t.Errorf("checkpoint %dh: predicted %d, want %d", p.HoursAhead, p.PredictedAvailable, wantPredicted[i])
		}
	}
	if fc.Confidence != "high" {
		t.Errorf("final bucket of 4 should be high confidence, got %s", fc.Confidence)
	}
}

func TestPredictAvailability_SparseDataLowConfidence(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	fc, err := svc.PredictAvailability(context.Background(), "ICU", 8)
	if err != nil {
		t.Fatalf("sparse data must not error, got %v", err)
	}
	if fc.Confidence != "low" {
		t.Errorf("empty unit should be low confidence, got %s", fc.Confidence)
	}
}

func TestOptimizeTiming_TiersAndEstimates(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	urgent := boardingPatient(1, 5, "ICU")
	urgent.IsolationRequired = true
	repo.patients = []*EDPatient{urgent}
	repo.dischargeTimes["ICU"] = []time.Time{noon.Add(30 * time.Minute)}

	timings, err := svc.OptimizeTiming(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(timings) != 1 {
		t.Fatalf("expected 1 timing, got %d", len(timings))
	}
	tr := timings[0]
	if tr.Tier != "urgent" {
		t.Errorf("acuity 1 boarding 5h with isolation should be urgent, got %s", tr.Tier)
	}
	if tr.Reasoning == "" {
		t.Error("expected reasoning text")
	}
	if want := noon.Add(1 * time.Hour); !tr.EstimatedBedAvail.Equal(want) {
		t.Errorf("expected bed available at the 1h checkpoint, got %v", tr.EstimatedBedAvail)
	}
}

func TestOptimizeTiming_BedsFreeNow(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	repo.patients = []*EDPatient{boardingPatient(4, 0, "Med-Surg")}
	repo.availableBeds["Med-Surg"] = 0

	timings, err := svc.OptimizeTiming(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No discharges scheduled and no free beds: 8h fallback.
	if want := noon.Add(8 * time.Hour); !timings[0].EstimatedBedAvail.Equal(want) {
		t.Errorf("expected the 8h fallback, got %v", timings[0].EstimatedBedAvail)
	}

	repo.availableBeds["Med-Surg"] = 2
	timings, err = svc.OptimizeTiming(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A bed free right now answers immediately.
	if !timings[0].EstimatedBedAvail.Equal(noon) {
		t.Errorf("free bed should answer now, got %v", timings[0].EstimatedBedAvail)
	}
}

func TestNotifyTransfer(t *testing.T) {
	repo := newMockRepo()
	outbox := &mockOutbox{}
	svc := newTestService(repo, outbox, &mockFlags{})

	patient := boardingPatient(2, 1, "ICU")
	repo.patients = []*EDPatient{patient}
	icu := &Unit{ID: uuid.New(), Name: "ICU"}
	repo.units["ICU"] = icu
	repo.staff[icu.ID] = []*StaffMember{
		{ID: uuid.New(), Name: "A", Role: "nurse"},
		{ID: uuid.New(), Name: "B", Role: "charge_nurse"},
	}

	if err := svc.NotifyTransfer(context.Background(), patient.AdmissionID, "ICU", "ed.charge"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outbox.created) != 2 {
		t.Errorf("expected one notification per staff member, got %d", len(outbox.created))
	}
	if outbox.created[0].Priority != notify.PriorityUrgent {
		t.Errorf("acuity 2 should page urgently, got %s", outbox.created[0].Priority)
	}
	if repo.statuses[patient.AdmissionID] != "transfer_in_progress" {
		t.Error("admission must flip to transfer_in_progress")
	}
}

func TestNotifyTransfer_DedupWindow(t *testing.T) {
	repo := newMockRepo()
	outbox := &mockOutbox{}
	svc := newTestService(repo, outbox, &mockFlags{})

	patient := boardingPatient(3, 1, "ICU")
	repo.patients = []*EDPatient{patient}
	icu := &Unit{ID: uuid.New(), Name: "ICU"}
	repo.units["ICU"] = icu
	repo.staff[icu.ID] = []*StaffMember{{ID: uuid.New(), Name: "A", Role: "nurse"}}

	if err := svc.NotifyTransfer(context.Background(), patient.AdmissionID, "ICU", "ed.charge"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.NotifyTransfer(context.Background(), patient.AdmissionID, "ICU", "ed.charge"); err != nil {
		t.Fatalf("repeat call must not error: %v", err)
	}
	if len(outbox.created) != 1 {
		t.Errorf("repeat call inside the window must not duplicate notifications, got %d", len(outbox.created))
	}
}

func TestNotifyTransfer_UnknownUnit(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockOutbox{}, &mockFlags{})

	patient := boardingPatient(3, 1, "ICU")
	repo.patients = []*EDPatient{patient}

	err := svc.NotifyTransfer(context.Background(), patient.AdmissionID, "Nonexistent", "ed.charge")
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not-found for unknown unit, got %v", err)
	}
}
