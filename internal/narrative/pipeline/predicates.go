package pipeline

import (
	"bigfive/internal/assessment"
	"bigfive/internal/narrative/models"
)

func hi(x float64) bool  { return x >= 3.75 }
func mid(x float64) bool { return x >= 3 && x < 3.75 }
func lo(x float64) bool  { return x < 3 }

// Predicates are boolean facts derived from domain means and a few facet
// buckets. They travel with the prompt as hints.
type Predicates struct {
	OHigh bool `json:"O_high"`
	OMid  bool `json:"O_mid"`
	OLow  bool `json:"O_low"`

	CHigh bool `json:"C_high"`
	CMid  bool `json:"C_mid"`
	CLow  bool `json:"C_low"`

	EHigh      bool `json:"E_high"`
	EMid       bool `json:"E_mid"`
	ELow       bool `json:"E_low"`
	ELowGregar bool `json:"E_lowGregar"`

	AHigh     bool `json:"A_high"`
	AMid      bool `json:"A_mid"`
	ALow      bool `json:"A_low"`
	ALowCoop  bool `json:"A_lowCoop"`
	AHighCoop bool `json:"A_highCoop"`

	NHigh      bool `json:"N_high"`
	NMid       bool `json:"N_mid"`
	NLow       bool `json:"N_low"`
	NLowAnx    bool `json:"N_lowAnx"`
	NHighAnx   bool `json:"N_highAnx"`
	NHighImmod bool `json:"N_highImmod"`
	NLowImmod  bool `json:"N_lowImmod"`

	OHighCHigh bool `json:"O_high_C_high"`
	ELowAHigh  bool `json:"E_low_A_high"`
	EHighALow  bool `json:"E_high_A_low"`
}

// Derive computes the predicates. Conscientiousness uses a lower high
// cutline of 3.6.
func Derive(f models.Facts) Predicates {
	o := f.Mean(assessment.DomainO)
	c := f.Mean(assessment.DomainC)
	e := f.Mean(assessment.DomainE)
	a := f.Mean(assessment.DomainA)
	n := f.Mean(assessment.DomainN)
	is := func(d assessment.Domain, facet string, b assessment.Bucket) bool {
		return f.Bucket(d, facet) == b
	}

	return Predicates{
		OHigh: hi(o),
		OMid:  mid(o),
		OLow:  lo(o),

		CHigh: c >= 3.6,
		CMid:  mid(c),
		CLow:  lo(c),

		EHigh:      hi(e),
		EMid:       mid(e),
		ELow:       lo(e),
		ELowGregar: is(assessment.DomainE, "Gregariousness", assessment.BucketLow),

		AHigh:     hi(a),
		AMid:      mid(a),
		ALow:      lo(a),
		ALowCoop:  is(assessment.DomainA, "Cooperation", assessment.BucketLow),
		AHighCoop: is(assessment.DomainA, "Cooperation", assessment.BucketHigh),

		NHigh:      hi(n),
		NMid:       mid(n),
		NLow:       lo(n),
		NLowAnx:    is(assessment.DomainN, "Anxiety", assessment.BucketLow),
		NHighAnx:   is(assessment.DomainN, "Anxiety", assessment.BucketHigh),
		NHighImmod: is(assessment.DomainN, "Immoderation", assessment.BucketHigh),
		NLowImmod:  is(assessment.DomainN, "Immoderation", assessment.BucketLow),

		OHighCHigh: hi(o) && c >= 3.6,
		ELowAHigh:  lo(e) && hi(a),
		EHighALow:  hi(e) && lo(a),
	}
}
