package scorer

import "strings"

// Deterministic sub-scores. Pure functions: identical input always
// produces identical output, no external calls.

// ComputeSLAScore maps the average response delay (seconds) onto the
// 0-25 SLA band. No recorded responses scores 0.
func ComputeSLAScore(responseDelays []float64) int {
	if len(responseDelays) == 0 {
		return 0
	}

	var sum float64
	for _, d := range responseDelays {
		sum += d
	}
	avgDelayMin := sum / float64(len(responseDelays)) / 60

	switch {
	case avgDelayMin < 2:
		return 25
	case avgDelayMin < 5:
		return 20
	case avgDelayMin < 10:
		return 15
	case avgDelayMin < 15:
		return 10
	default:
		return 5
	}
}

// ComputeRevenueScore maps the window's transaction total onto the
// 0-15 revenue band.
func ComputeRevenueScore(revenueInWindow float64) int {
	switch {
	case revenueInWindow >= 100:
		return 15
	case revenueInWindow >= 25:
		return 10
	case revenueInWindow >= 1:
		return 5
	default:
		return 0
	}
}

// DetectCopyPaste reports whether more than 30% of chatter messages are
// duplicates after normalization. Fewer than 5 messages is too small a
// sample and always returns false.
func DetectCopyPaste(messages []string) bool {
	if len(messages) < 5 {
		return false
	}
	unique := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		unique[normalize(m)] = struct{}{}
	}
	dupeRatio := 1 - float64(len(unique))/float64(len(messages))
	return dupeRatio > 0.3
}

// DetectSpam reports whether any 3 consecutive chatter messages are
// identical after normalization.
func DetectSpam(messages []string) bool {
	if len(messages) < 3 {
		return false
	}
	for i := 0; i+2 < len(messages); i++ {
		a := normalize(messages[i])
		b := normalize(messages[i+1])
		c := normalize(messages[i+2])
		if a == b && b == c {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
