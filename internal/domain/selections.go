package domain

// Region keys for signals and regional summaries. The set is closed; the
// order here is the rendering order.
const (
	RegionAmericas         = "americas"
	RegionEurope           = "europe"
	RegionAsiaPacific      = "asia_pacific"
	RegionMiddleEastAfrica = "middle_east_africa"
	RegionTech             = "tech"
)

// DefaultRegion receives the whole text when the agent returns a single
// string instead of a per-region mapping.
const DefaultRegion = RegionAmericas

// Regions returns the closed region set in rendering order.
func Regions() []string {
	return []string{
		RegionAmericas,
		RegionEurope,
		RegionAsiaPacific,
		RegionMiddleEastAfrica,
		RegionTech,
	}
}

// RegionTitle maps a region key to its display heading.
func RegionTitle(region string) string {
	switch region {
	case RegionAmericas:
		return "Americas"
	case RegionEurope:
		return "Europe"
	case RegionAsiaPacific:
		return "Asia-Pacific"
	case RegionMiddleEastAfrica:
		return "Middle East & Africa"
	case RegionTech:
		return "Tech"
	default:
		return region
	}
}

// Tier names for curated stories.
const (
	TierMustKnow   = "must_know"
	TierShouldKnow = "should_know"
	TierSignals    = "signals"
)

// StorySource attributes one story to one outlet.
type StorySource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Bias string `json:"bias,omitempty"`
}

// Framing captures how one outlet's angle on a story diverges.
type Framing struct {
	Source string `json:"source"`
	Angle  string `json:"angle"`
	Bias   string `json:"bias"`
}

// Story is one curated item in the must-know or should-know tier.
type Story struct {
	Headline        string        `json:"headline"`
	Summary         string        `json:"summary"`
	WhyItMatters    string        `json:"why_it_matters"`
	Sources         []StorySource `json:"sources"`
	ReportingVaries []Framing     `json:"reporting_varies,omitempty"`
}

// Signal is a one-liner regional item.
type Signal struct {
	Headline string      `json:"headline"`
	Source   StorySource `json:"source"`
}

// Selections is the agent's curated output after repair and validation.
// It is never persisted or rendered unless it fully validates.
type Selections struct {
	MustKnow        []Story             `json:"must_know"`
	ShouldKnow      []Story             `json:"should_know"`
	Signals         map[string][]Signal `json:"signals"`
	RegionalSummary map[string]string   `json:"regional_summary"`
}

// ShownHeadlines flattens the selections into dedup bookkeeping rows.
func (s *Selections) ShownHeadlines() []ShownHeadline {
	var shown []ShownHeadline
	for _, story := range s.MustKnow {
		shown = append(shown, ShownHeadline{Headline: story.Headline, Tier: TierMustKnow})
	}
	for _, story := range s.ShouldKnow {
		shown = append(shown, ShownHeadline{Headline: story.Headline, Tier: TierShouldKnow})
	}
	for _, region := range Regions() {
		for _, sig := range s.Signals[region] {
			shown = append(shown, ShownHeadline{Headline: sig.Headline, Tier: TierSignals})
		}
	}
	return shown
}
