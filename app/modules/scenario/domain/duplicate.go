package scenariodomain

// FindDuplicate returns the earliest record in history carrying fingerprint.
// History is ordered oldest first, so a match means the scenario was seen at
// any point in the past, not only today.
func FindDuplicate(fingerprint string, history []ScenarioRecord) (ScenarioRecord, bool) {
	for _, rec := range history {
		if rec.Fingerprint == fingerprint {
			return rec, true
		}
	}
	return ScenarioRecord{}, false
}

// IsDuplicate reports whether fingerprint already appears in history.
func IsDuplicate(fingerprint string, history []ScenarioRecord) bool {
	_, ok := FindDuplicate(fingerprint, history)
	return ok
}
