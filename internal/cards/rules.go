package cards

// Polarity is the direction a rule side must lean.
type Polarity string

const (
	Up   Polarity = "up"
	Down Polarity = "down"
)

// Tier is a rule side threshold.
type Tier string

const (
	TierH Tier = "H"
	TierM Tier = "M"
	TierL Tier = "L"
)

// Threshold returns the minimum side score for the tier.
func (t Tier) Threshold() float64 {
	switch t {
	case TierH:
		return 0.60
	case TierM:
		return 0.50
	default:
		return 0.40
	}
}

// relax lowers H sides to M for the second selection pass.
func (t Tier) relax() Tier {
	if t == TierH {
		return TierM
	}
	return t
}

// Side is one trait of a conflict rule. Trait names either a domain
// (Openness, Conscientiousness, ...) or a facet.
type Side struct {
	Trait    string
	Polarity Polarity
	Tier     Tier
}

// Copy is the fixed text attached to a conflict rule.
type Copy struct {
	How   string `json:"how"`
	Helps string `json:"helps"`
	Hurts string `json:"hurts"`
	Tip   string `json:"tip"`
}

// Rule is a named tension between two traits.
type Rule struct {
	ID   string
	A, B Side
	Copy Copy
}

func up(trait string) Side   { return Side{Trait: trait, Polarity: Up, Tier: TierH} }
func down(trait string) Side { return Side{Trait: trait, Polarity: Down, Tier: TierH} }

// Rules is the conflict catalog. Order matters: the earliest rule wins ties.
var Rules = []Rule{
	{ID: "oc_ideas_vs_routine", A: up("Openness"), B: down("Orderliness"), Copy: Copy{
		How: "You dream up more ideas than you can neatly store.", Helps: "sparking new concepts.",
		Hurts: "keeping things organized.", Tip: "keep one steady container for repeats.",
	}},
	{ID: "oc_explore_check", A: up("Openness"), B: up("Cautiousness"), Copy: Copy{
		How: "You generate, then slam the brakes.", Helps: "catching risks.",
		Hurts: "momentum.", Tip: "set a short time box, then review.",
	}},
	{ID: "cn_capability_dread", A: up("Self-Efficacy"), B: up("Depression"), Copy: Copy{
		How: "You know you can, but your mood slows the push.", Helps: "quick, small wins.",
		Hurts: "long, fuzzy goals.", Tip: "give yourself a daily finish line.",
	}},
	{ID: "cn_ambition_overwhelm", A: up("Achievement-Striving"), B: up("Vulnerability"), Copy: Copy{
		How: "Ambition meets overwhelm.", Helps: "clear sub-goals.",
		Hurts: "big undefined pushes.", Tip: "split the goal into two sub-wins and schedule recovery.",
	}},
	{ID: "en_drive_strain", A: up("Assertiveness"), B: up("Anxiety"), Copy: defaultCopy},
	{ID: "en_go_fragile", A: up("Activity Level"), B: up("Vulnerability"), Copy: Copy{
		How: "Go-now meets fragile state.", Helps: "short sprints.",
		Hurts: "sustained load.", Tip: "alternate 25-minute sprints with safety checks.",
	}},
	{ID: "ae_lead_sync", A: down("Cooperation"), B: up("Assertiveness"), Copy: Copy{
		How: "You lean toward leading, not syncing.", Helps: "clear ownership.",
		Hurts: "team consensus.", Tip: "add one shared win to every ask.",
	}},
	{ID: "ae_warm_guarded", A: down("Trust"), B: up("Gregariousness"), Copy: Copy{
		How: "You’re warm but guarded.", Helps: "boundary setting.",
		Hurts: "fast trust.", Tip: "ask constraints before conclusions.",
	}},
	{ID: "an_guarded_reactive", A: down("Trust"), B: up("Anger"), Copy: Copy{
		How: "You’re guarded and quick to flare.", Helps: "setting hard rules.",
		Hurts: "heated threads.", Tip: "name the trigger and wait 90 seconds.",
	}},
	{ID: "an_understate_push", A: up("Modesty"), B: up("Assertiveness"), Copy: Copy{
		How: "You understate then push.", Helps: "humble asks.",
		Hurts: "high-stakes meetings.", Tip: "make an explicit ask after your summary.",
	}},
	{ID: "e_solo_driver", A: up("Assertiveness"), B: down("Gregariousness"), Copy: Copy{
		How: "You push alone more than with groups.", Helps: "direct action.",
		Hurts: "team buy-in.", Tip: "recruit 1:1 before the group push.",
	}},
	{ID: "c_neat_inconsistent", A: up("Orderliness"), B: down("Self-Discipline"), Copy: Copy{
		How: "Neat but inconsistent.", Helps: "prep phases.",
		Hurts: "follow-through.", Tip: "protect a fixed daily slot.",
	}},
	{ID: "a_truth_vs_care", A: down("Morality"), B: up("Sympathy"), Copy: Copy{
		How: "Blunt truth meets care.", Helps: "hard calls.",
		Hurts: "soft landings.", Tip: "rule → reason → option.",
	}},
	{ID: "on_curiosity_risk", A: up("Openness"), B: up("Anxiety"), Copy: Copy{
		How: "Curiosity meets risk.", Helps: "small probes.",
		Hurts: "big unknowns.", Tip: "pre-commit to a small probe and log risk notes.",
	}},
	{ID: "oe_depth_vs_novelty", A: up("Intellect"), B: up("Excitement-Seeking"), Copy: Copy{
		How: "Deep dive vs novelty chase.", Helps: "dual-track work.",
		Hurts: "single-rail focus.", Tip: "use the two-tab rule — one explore, one finish.",
	}},
	{ID: "ce_checklists_thrills", A: up("Cautiousness"), B: up("Excitement-Seeking"), Copy: Copy{
		How: "Checklists vs thrills.", Helps: "earned reward.",
		Hurts: "impulse switches.", Tip: "earn thrills after the checklist.",
	}},
}

var defaultCopy = Copy{
	How: "Gas pedal meets brake.", Helps: "quick crisis moves.",
	Hurts: "long uncertainty.", Tip: "pause for 2 beats, then pick one next step.",
}
