package sentiment

import "strings"

// Lexicon scores headlines with a fixed word list, averaged over matched
// words. Scores land in [-1,1] before the category weight is applied.
type Lexicon struct {
	positive map[string]float64
	negative map[string]float64
}

func NewLexicon() *Lexicon {
	return &Lexicon{
		positive: map[string]float64{
			"surge": 1.0, "soar": 1.0, "skyrocket": 1.0, "breakthrough": 1.0,
			"bullish": 0.95, "rally": 0.95, "boom": 0.95, "explode": 0.95,
			"rocket": 0.9, "triumph": 0.9, "outperform": 0.9, "breakout": 0.9,
			"adoption": 0.85, "beat": 0.85, "exceed": 0.85, "upgrade": 0.85,
			"approval": 0.85, "approved": 0.85, "optimistic": 0.85,
			"profit": 0.8, "growth": 0.8, "gain": 0.8, "jump": 0.8,
			"strong": 0.8, "boost": 0.8, "success": 0.8, "win": 0.8,
			"improve": 0.75, "rising": 0.75, "advance": 0.75, "climb": 0.75,
			"expansion": 0.75, "momentum": 0.75, "upside": 0.75, "favorable": 0.75,
			"recover": 0.7, "rebound": 0.7, "stabilize": 0.7, "strength": 0.7,
			"halving": 0.7, "institutional": 0.65, "etf": 0.65,
			"positive": 0.65, "rise": 0.65, "higher": 0.65, "increase": 0.65,
			"better": 0.65, "good": 0.65, "solid": 0.65, "confident": 0.65,
			"opportunity": 0.6, "potential": 0.6, "promising": 0.6, "attractive": 0.6,
			"support": 0.6, "resilient": 0.6, "steady": 0.6,
			"healthy": 0.55, "buying": 0.55, "progress": 0.55, "accumulation": 0.55,
			"innovative": 0.55, "leader": 0.55, "advantage": 0.55,
			"robust": 0.5, "stable": 0.5,
		},
		negative: map[string]float64{
			"crash": 1.0, "plunge": 1.0, "collapse": 1.0, "devastate": 1.0,
			"catastrophic": 1.0, "disaster": 1.0, "crisis": 0.95, "bankruptcy": 0.95,
			"hack": 0.95, "hacked": 0.95, "exploit": 0.95, "plummet": 0.95,
			"tumble": 0.95, "rout": 0.95, "rug": 0.95, "scam": 0.95,
			"hammered": 0.9, "panic": 0.9, "liquidation": 0.9, "liquidations": 0.9,
			"fraud": 0.9, "worst": 0.9,
			"bearish": 0.85, "downgrade": 0.85, "warning": 0.85, "ban": 0.85,
			"banned": 0.85, "lawsuit": 0.85, "lawsuits": 0.85, "crackdown": 0.85,
			"miss": 0.8, "loss": 0.8, "losses": 0.8, "slump": 0.8,
			"decline": 0.8, "deteriorate": 0.8, "underperform": 0.8, "fail": 0.8,
			"struggle": 0.75, "struggles": 0.75, "weak": 0.75, "weakness": 0.75,
			"drop": 0.75, "fall": 0.75, "falls": 0.75, "falling": 0.75,
			"selloff": 0.75, "dump": 0.75,
			"concern": 0.7, "concerns": 0.7, "worry": 0.7, "worries": 0.7,
			"disappoint": 0.7, "uncertain": 0.7, "risky": 0.7, "fear": 0.7,
			"problem": 0.65, "problems": 0.65, "issue": 0.65, "issues": 0.65,
			"risk": 0.65, "risks": 0.65, "threat": 0.65, "volatile": 0.65,
			"uncertainty": 0.65, "doubt": 0.65, "regulation": 0.6,
			"pressure": 0.6, "difficult": 0.6, "hurt": 0.6,
			"lower": 0.6, "negative": 0.6, "poor": 0.6, "slowdown": 0.6,
			"dip": 0.55, "slip": 0.55, "retreat": 0.55, "caution": 0.55,
			"correction": 0.5, "pullback": 0.5, "cut": 0.5, "headwind": 0.5,
		},
	}
}

// Score averages the matched word weights in text, returning 0 when no
// lexicon word appears. Output is in [-1,1].
func (l *Lexicon) Score(text string) float64 {
	var score float64
	var matches int

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?\"'()[]{}:;")
		if v, ok := l.positive[word]; ok {
			score += v
			matches++
		} else if v, ok := l.negative[word]; ok {
			score -= v
			matches++
		}
	}

	if matches == 0 {
		return 0
	}
	return score / float64(matches)
}
