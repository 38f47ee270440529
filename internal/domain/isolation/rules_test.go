package isolation

import "testing"

func TestMatchDiagnosis(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"A04.7", TypeContact},
		{"B95.62", TypeContact},
		{"A37.0", TypeDroplet},
		{"J10.1", TypeDroplet},
		{"A15.0", TypeAirborne},
		{"B05.9", TypeAirborne},
		{"C91.0", TypeProtective},
		{"D70.9", TypeProtective},
	}
	for _, c := range cases {
		matched := matchDiagnosis(c.code)
		if len(matched) != 1 || matched[0] != c.want {
			t.Errorf("matchDiagnosis(%s) = %v, want [%s]", c.code, matched, c.want)
		}
	}
}

func TestMatchDiagnosis_NoMatch(t *testing.T) {
	if matched := matchDiagnosis("I10"); len(matched) != 0 {
		t.Errorf("expected no match for hypertension, got %v", matched)
	}
}

func TestMatchLab(t *testing.T) {
	cases := []struct {
		test, result string
		want         string
	}{
		{"Nasal swab culture", "MRSA detected", TypeContact},
		{"Stool PCR", "Clostridioides difficile positive", TypeContact},
		{"Respiratory panel", "Influenza A positive", TypeDroplet},
		{"Sputum AFB", "Mycobacterium tuberculosis isolated", TypeAirborne},
	}
	for _, c := range cases {
		matched := matchLab(c.test, c.result)
		if len(matched) == 0 || matched[0] != c.want {
			t.Errorf("matchLab(%q, %q) = %v, want [%s]", c.test, c.result, matched, c.want)
		}
	}
}

func TestMatchLab_CaseInsensitive(t *testing.T) {
	matched := matchLab("culture", "mrsa")
	if len(matched) != 1 || matched[0] != TypeContact {
		t.Errorf("expected lowercase organism to match, got %v", matched)
	}
}

func TestMostRestrictive(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{TypeContact, TypeAirborne}, TypeAirborne},
		{[]string{TypeProtective, TypeContact}, TypeContact},
		{[]string{TypeDroplet, TypeContact, TypeProtective}, TypeDroplet},
		{[]string{TypeAirborne, TypeDroplet, TypeContact, TypeProtective}, TypeAirborne},
		{[]string{TypeProtective}, TypeProtective},
	}
	for _, c := range cases {
		set := make(map[string]bool)
		for _, s := range c.in {
			set[s] = true
		}
		if got := mostRestrictive(set); got != c.want {
			t.Errorf("mostRestrictive(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}
