// Package signals derives the composite life signals from the five domain
// means. Everything here is a pure function of its inputs.
package signals

import (
	"bigfive/internal/assessment"
)

// Cutlines for the three-level signal reading.
const (
	CutlineHigh   = 0.67
	CutlineMedMin = 0.33
	CutlineMedMax = 0.66
)

// Pursuit weights over the raw O, E and C means.
const (
	weightO = 0.40
	weightE = 0.35
	weightC = 0.25
)

// Means are the five domain means on the 1..5 scale.
type Means struct {
	O float64 `json:"O"`
	C float64 `json:"C"`
	E float64 `json:"E"`
	A float64 `json:"A"`
	N float64 `json:"N"`
}

// MeansFromSuite reads domain_mean_raw of every domain.
func MeansFromSuite(s assessment.SuiteResult) Means {
	m := s.DomainMeans()
	return Means{
		O: m[assessment.DomainO],
		C: m[assessment.DomainC],
		E: m[assessment.DomainE],
		A: m[assessment.DomainA],
		N: m[assessment.DomainN],
	}
}

// Get returns the mean of domain d.
func (m Means) Get(d assessment.Domain) float64 {
	switch d {
	case assessment.DomainO:
		return m.O
	case assessment.DomainC:
		return m.C
	case assessment.DomainE:
		return m.E
	case assessment.DomainA:
		return m.A
	case assessment.DomainN:
		return m.N
	}
	return 0
}

// Lead labels.
const (
	LeadPursuit  = "pursuit"
	LeadThreat   = "threat"
	LeadBalanced = "balanced"

	AffiliationLed = "affiliation_led"
	AutonomyLed    = "autonomy_led"
	NoveltyLed     = "novelty_led"
	SecurityLed    = "security_led"
	Mixed          = "mixed"
)

// Signals are the sixteen composite scores in [0,1], three signed axes and
// their discrete labels.
type Signals struct {
	T float64 `json:"T"`
	P float64 `json:"P"`
	S float64 `json:"S"`
	B float64 `json:"B"`
	D float64 `json:"D"`
	G float64 `json:"G"`
	R float64 `json:"R"`
	V float64 `json:"V"`
	Y float64 `json:"Y"`
	L float64 `json:"L"`
	F float64 `json:"F"`
	U float64 `json:"U"`
	M float64 `json:"M"`
	I float64 `json:"I"`
	K float64 `json:"K"`
	Q float64 `json:"Q"`

	MotionBalance float64 `json:"motionBalance"`
	SocialStance  float64 `json:"socialStance"`
	StyleAxis     float64 `json:"styleAxis"`

	LeadLabel        string `json:"leadLabel"`
	AffiliationLabel string `json:"affiliationLabel"`
	StyleLabel       string `json:"styleLabel"`
}

// Clamp01 limits x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Z maps a 1..5 score onto [0,1].
func Z(x float64) float64 {
	return Clamp01((x - 1) / 4)
}

// Compute derives every signal from the domain means.
func Compute(m Means) Signals {
	zO, zC, zE, zA, zN := Z(m.O), Z(m.C), Z(m.E), Z(m.A), Z(m.N)

	pursuitRaw := weightO*m.O + weightE*m.E + weightC*m.C
	s := Signals{
		T: zN,
		P: Clamp01((pursuitRaw/5 - 0.2) / 0.8),
		S: zA,
		B: Clamp01(0.8*zA - 0.2*zN),
		D: Clamp01(0.55*zE + 0.45*zC),
		G: Clamp01(0.7*zN - 0.3*zA),
		R: zC,
		V: zO,
		Y: Clamp01(0.6*zE + 0.1*zO),
		L: Clamp01(0.7*zE + 0.3*zO),
		F: Clamp01(0.7*zA + 0.3*zE),
		U: Clamp01(0.6*zC + 0.2*(1-zA)),
		M: Clamp01(0.5*zO + 0.5*zC),
		I: Clamp01(0.6*zA + 0.2*zC - 0.2*zN),
		K: Clamp01(0.6*zE + 0.2*(1-zA) + 0.2*zC),
		Q: Clamp01(0.45*zC + 0.35*(1-zO) + 0.20*(1-zN)),
	}

	s.MotionBalance = s.P - s.T
	s.SocialStance = s.F - s.U
	s.StyleAxis = s.V - s.Q

	s.LeadLabel = label(s.MotionBalance, 0.15, LeadPursuit, LeadThreat, LeadBalanced)
	s.AffiliationLabel = label(s.SocialStance, 0.10, AffiliationLed, AutonomyLed, Mixed)
	s.StyleLabel = label(s.StyleAxis, 0.10, NoveltyLed, SecurityLed, Mixed)
	return s
}

func label(axis, cut float64, pos, neg, neutral string) string {
	switch {
	case axis >= cut:
		return pos
	case axis <= -cut:
		return neg
	default:
		return neutral
	}
}

// Level is the three-level reading of a signal.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// LevelOf buckets a signal value. Values strictly between the medium ceiling
// and the high cutline read Low, as the cutlines leave that gap open.
func LevelOf(v float64) Level {
	if v >= CutlineHigh {
		return LevelHigh
	}
	if v >= CutlineMedMin && v <= CutlineMedMax {
		return LevelMedium
	}
	return LevelLow
}
