package similarity

// TyposquatMatch is the best "close but not identical" match of a candidate
// domain against the legitimate set.
type TyposquatMatch struct {
	Domain     string    `json:"domain"`
	Similarity float64   `json:"similarity"`
	Breakdown  Breakdown `json:"breakdown"`
}

// BestTyposquat returns the legitimate domain whose combined similarity to
// candidate falls in [thresholdLow, 1.0) and is the highest such value, or
// nil when no legitimate domain lands in that band. A similarity of exactly
// 1.0 means the strings are identical, which is not a typosquat.
func BestTyposquat(candidate string, legitimate []string, thresholdLow float64, w Weights) *TyposquatMatch {
	var best *TyposquatMatch
	for _, legit := range legitimate {
		d := Combined(candidate, legit, w)
		if d.Weighted < thresholdLow || d.Weighted >= 1.0 {
			continue
		}
		if best == nil || d.Weighted > best.Similarity {
			best = &TyposquatMatch{
				Domain:     legit,
				Similarity: d.Weighted,
				Breakdown:  d,
			}
		}
	}
	return best
}
