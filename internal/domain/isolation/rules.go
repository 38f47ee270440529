package isolation

import "strings"

// Static rule tables mapping chart findings to isolation categories.
// Diagnosis codes are ICD-10 prefixes; lab organisms are lowercase
// substrings checked against the test name and result text.

var diagnosisPrefixes = map[string][]string{
	TypeContact: {
		"A04.7", // C. difficile enterocolitis
		"B95.6", // Staph aureus as cause (MRSA)
		"B96.2", // E. coli as cause (ESBL)
		"L08",   // local skin/soft-tissue infection
		"Z22.32",
	},
	TypeDroplet: {
		"A37", // pertussis
		"A39", // meningococcal infection
		"B26", // mumps
		"J09", "J10", "J11", // influenza
	},
	TypeAirborne: {
		"A15", "A16", "A17", "A18", "A19", // tuberculosis
		"B05", // measles
		"B01", // varicella
	},
	TypeProtective: {
		"C90", "C91", "C92", "C93", "C94", "C95", // leukemias/myeloma
		"D70", // neutropenia
		"Z94", // transplant status
	},
}

var labOrganisms = map[string][]string{
	TypeContact: {
		"mrsa", "vre", "c. diff", "clostridioides", "clostridium difficile", "esbl", "cre",
	},
	TypeDroplet: {
		"influenza", "pertussis", "mumps", "meningitidis", "rsv",
	},
	TypeAirborne: {
		"tuberculosis", "mycobacterium", "measles", "varicella",
	},
}

// severityRank orders categories most-restrictive first for tie-breaking:
// airborne > droplet > contact > protective.
var severityRank = map[string]int{
	TypeAirborne:   4,
	TypeDroplet:    3,
	TypeContact:    2,
	TypeProtective: 1,
}

// matchDiagnosis returns the categories whose code prefixes match.
func matchDiagnosis(code string) []string {
	var matched []string
	for category, prefixes := range diagnosisPrefixes {
		for _, p := range prefixes {
			if strings.HasPrefix(code, p) {
				matched = append(matched, category)
				break
			}
		}
	}
	return matched
}

// matchLab returns the categories whose organism lists appear in the
// test name or result text.
func matchLab(testName, result string) []string {
	haystack := strings.ToLower(testName + " " + result)
	var matched []string
	for category, organisms := range labOrganisms {
		for _, org := range organisms {
			if strings.Contains(haystack, org) {
				matched = append(matched, category)
				break
			}
		}
	}
	return matched
}

// mostRestrictive picks the winning category from a matched set.
func mostRestrictive(categories map[string]bool) string {
	best := ""
	for c := range categories {
		if severityRank[c] > severityRank[best] {
			best = c
		}
	}
	return best
}
