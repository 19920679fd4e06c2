package jurisdiction

// RGFeature describes one responsible-gambling feature requirement.
type RGFeature struct {
	Required        bool   `yaml:"required"`
	IntervalMinutes int    `yaml:"interval_minutes,omitempty"`
	Customizable    bool   `yaml:"customizable,omitempty"`
	Integration     string `yaml:"integration,omitempty"`
}

// Profile is the structured regulatory constraint set for one market.
// MaxWinCap is nil when the regulator imposes no hard cap.
type Profile struct {
	Name                string               `yaml:"name"`
	Authority           string               `yaml:"authority"`
	Standard            string               `yaml:"standard"`
	RTPMin              float64              `yaml:"rtp_min"`
	RTPMax              float64              `yaml:"rtp_max"`
	RTPDisplayRequired  bool                 `yaml:"rtp_display_required"`
	MaxWinCap           *int                 `yaml:"max_win_cap,omitempty"`
	BannedFeatures      []string             `yaml:"banned_features,omitempty"`
	RestrictedFeatures  []string             `yaml:"restricted_features,omitempty"`
	RequiredFeatures    []string             `yaml:"required_features,omitempty"`
	FeatureNotes        string               `yaml:"feature_notes,omitempty"`
	ResponsibleGambling map[string]RGFeature `yaml:"responsible_gambling,omitempty"`
	MinCycleTimeMS      int                  `yaml:"min_cycle_time_ms,omitempty"`
	RNGCertification    string               `yaml:"rng_certification,omitempty"`
	TestingLabs         []string             `yaml:"testing_labs,omitempty"`
	ContentRestrictions []string             `yaml:"content_restrictions,omitempty"`
	DataPrivacy         string               `yaml:"data_privacy,omitempty"`
	SubmissionDocuments []string             `yaml:"submission_documents,omitempty"`
}

func capX(v int) *int { return &v }

// builtinProfiles encodes GLI-11 era requirements for the major regulated
// markets. Sources: UKGC RTS, MGA technical standards, AGCO iGaming
// standards, Spelinspektionen regulations, NJ DGE, DGOJ.
var builtinProfiles = map[string]Profile{
	"uk": {
		Name:               "UK",
		Authority:          "UK Gambling Commission (UKGC)",
		Standard:           "RTS (Remote Technical Standards) + GLI-11",
		RTPMin:             70.0,
		RTPMax:             99.9,
		RTPDisplayRequired: true,
		MaxWinCap:          capX(10000),
		BannedFeatures:     []string{"bonus_buy"},
		RestrictedFeatures: []string{"autoplay_speed_over_2.5s"},
		FeatureNotes:       "Bonus buy (feature buy) banned since Oct 2021 per UKGC update",
		ResponsibleGambling: map[string]RGFeature{
			"reality_check":  {Required: true, IntervalMinutes: 60, Customizable: true},
			"session_timer":  {Required: true},
			"net_position":   {Required: true},
			"loss_limits":    {Required: true},
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "GAMSTOP"},
			"panic_button":   {Required: true},
			"rg_messaging":   {Required: true},
		},
		MinCycleTimeMS:   2500,
		RNGCertification: "ISO 17025 certified RNG or equivalent",
		TestingLabs:      []string{"GLI", "BMM Testlabs", "eCOGRA", "NMi Gaming"},
		ContentRestrictions: []string{
			"No content appealing to under-18s (cartoons, toys, youth culture)",
			"No glorification of gambling / implied guaranteed wins",
			"Free play/demo mode must NOT require registration",
			"Win celebrations must not be disproportionate to actual win amount",
		},
		DataPrivacy: "GDPR",
		SubmissionDocuments: []string{
			"Game rules document (player-facing)",
			"PAR sheet (RTP breakdown, hit frequency, volatility)",
			"Complete paytable with all pay combinations",
			"Reel strip data (all reel sets)",
			"Feature description with trigger rates and expected value",
			"RNG certificate",
			"Responsible gambling implementation details",
		},
	},
	"malta": {
		Name:               "Malta",
		Authority:          "Malta Gaming Authority (MGA)",
		Standard:           "MGA Technical Standards + GLI-11",
		RTPMin:             85.0,
		RTPMax:             99.9,
		RTPDisplayRequired: true,
		MaxWinCap:          capX(50000),
		FeatureNotes:       "Most permissive major jurisdiction. Bonus buy allowed.",
		ResponsibleGambling: map[string]RGFeature{
			"reality_check":  {Required: true, IntervalMinutes: 60},
			"session_timer":  {Required: true},
			"loss_limits":    {Required: true},
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "operator-managed"},
			"rg_messaging":   {Required: true},
		},
		MinCycleTimeMS:   1000,
		RNGCertification: "Certified RNG (GLI-11 or equivalent)",
		TestingLabs:      []string{"GLI", "BMM Testlabs", "iTech Labs", "Gaming Associates"},
		ContentRestrictions: []string{
			"No offensive or discriminatory content",
			"No false or misleading information about winning probability",
		},
		DataPrivacy: "GDPR",
		SubmissionDocuments: []string{
			"Game rules", "PAR sheet", "Paytable", "Reel strips",
			"RNG certificate", "Feature documentation",
		},
	},
	"ontario": {
		Name:               "Ontario",
		Authority:          "Alcohol and Gaming Commission of Ontario (AGCO)",
		Standard:           "AGCO iGaming Standards + GLI-11",
		RTPMin:             85.0,
		RTPMax:             99.9,
		RTPDisplayRequired: true,
		MaxWinCap:          capX(10000),
		RestrictedFeatures: []string{"bonus_buy"},
		FeatureNotes:       "Bonus buy allowed but under enhanced scrutiny. Must clearly disclose cost.",
		ResponsibleGambling: map[string]RGFeature{
			"reality_check":        {Required: true, IntervalMinutes: 60, Customizable: true},
			"session_timer":        {Required: true},
			"net_position":         {Required: true},
			"loss_limits":          {Required: true},
			"deposit_limits":       {Required: true},
			"self_exclusion":       {Required: true, Integration: "ConnexOntario"},
			"panic_button":         {Required: true},
			"rg_messaging":         {Required: true},
			"play_break_reminders": {Required: true, IntervalMinutes: 60},
		},
		MinCycleTimeMS:   2000,
		RNGCertification: "GLI-11 certified",
		TestingLabs:      []string{"GLI", "BMM Testlabs", "iTech Labs", "Gaming Associates"},
		ContentRestrictions: []string{
			"No content targeting minors",
			"No inducement to problem gambling",
			"Must comply with Canadian advertising standards",
		},
		DataPrivacy: "PIPEDA",
		SubmissionDocuments: []string{
			"Game rules", "PAR sheet", "Paytable", "Reel strips",
			"RNG certificate", "RG implementation details", "Feature documentation",
		},
	},
	"sweden": {
		Name:               "Sweden",
		Authority:          "Spelinspektionen (Swedish Gambling Authority)",
		Standard:           "Swedish Gambling Act + GLI-11",
		RTPMin:             80.0,
		RTPMax:             99.9,
		RTPDisplayRequired: true,
		MaxWinCap:          capX(10000),
		BannedFeatures:     []string{"bonus_buy", "autoplay"},
		RestrictedFeatures: []string{"turbo_spin"},
		FeatureNotes:       "BOTH bonus buy AND autoplay fully banned. Turbo spin restricted.",
		ResponsibleGambling: map[string]RGFeature{
			"reality_check":  {Required: true, IntervalMinutes: 60, Customizable: true},
			"session_timer":  {Required: true},
			"net_position":   {Required: true},
			"loss_limits":    {Required: true},
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "Spelpaus.se"},
			"panic_button":   {Required: true},
			"rg_messaging":   {Required: true},
		},
		MinCycleTimeMS:   3000,
		RNGCertification: "GLI-11 certified",
		TestingLabs:      []string{"GLI", "BMM Testlabs"},
		ContentRestrictions: []string{
			"No content appealing to minors",
			"No gambling glorification",
			"Moderate advertising only — no aggressive promotions",
		},
		DataPrivacy: "GDPR",
		SubmissionDocuments: []string{
			"Game rules", "PAR sheet", "Paytable", "Reel strips",
			"RNG certificate", "RG implementation", "Autoplay removal proof",
		},
	},
	"new jersey": {
		Name:               "New Jersey",
		Authority:          "NJ Division of Gaming Enforcement (DGE)",
		Standard:           "NJ Technical Standards + GLI-11",
		RTPMin:             83.0,
		RTPMax:             99.9,
		MaxWinCap:          capX(50000),
		RequiredFeatures:   []string{"geolocation"},
		FeatureNotes:       "Geolocation verification mandatory on every session.",
		ResponsibleGambling: map[string]RGFeature{
			"session_timer":  {Required: true},
			"loss_limits":    {Required: true},
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "NJ Self-Exclusion Program"},
			"rg_messaging":   {Required: true},
		},
		MinCycleTimeMS:   1500,
		RNGCertification: "GLI-11 certified",
		TestingLabs:      []string{"GLI", "BMM Testlabs"},
		ContentRestrictions: []string{
			"Standard gaming content rules",
			"No content targeting minors",
		},
		DataPrivacy: "NJ privacy laws",
		SubmissionDocuments: []string{
			"Game rules", "PAR sheet", "Paytable", "Reel strips",
			"RNG certificate", "Geolocation implementation details",
		},
	},
	"spain": {
		Name:               "Spain",
		Authority:          "DGOJ (Direccion General de Ordenacion del Juego)",
		Standard:           "DGOJ Technical Standards + GLI-11",
		RTPMin:             85.0,
		RTPMax:             99.9,
		RTPDisplayRequired: true,
		BannedFeatures:     []string{"bonus_buy"},
		RestrictedFeatures: []string{"autoplay"},
		FeatureNotes:       "Bonus buy banned. Autoplay restricted (max 25 spins, mandatory stop on win).",
		ResponsibleGambling: map[string]RGFeature{
			"reality_check":  {Required: true, IntervalMinutes: 60},
			"session_timer":  {Required: true},
			"loss_limits":    {Required: true},
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "RGIAJ"},
			"rg_messaging":   {Required: true},
		},
		RNGCertification: "GLI-11 certified",
		TestingLabs:      []string{"GLI", "BMM Testlabs"},
		ContentRestrictions: []string{
			"No content appealing to minors",
			"No celebrity or influencer endorsements",
			"Advertising heavily restricted (hours, channels, content)",
		},
		DataPrivacy: "GDPR + LOPDGDD",
		SubmissionDocuments: []string{
			"Game rules (Spanish translation required)", "PAR sheet", "Paytable",
			"Reel strips", "RNG certificate", "RG implementation",
		},
	},
	"curacao": {
		Name:      "Curacao",
		Authority: "Curacao Gaming Control Board (GCB)",
		Standard:  "Curacao National Ordinance on Offshore Games of Hazard",
		RTPMin:    75.0,
		RTPMax:    99.9,
		ResponsibleGambling: map[string]RGFeature{
			"deposit_limits": {Required: true},
			"self_exclusion": {Required: true, Integration: "operator-managed"},
			"rg_messaging":   {Required: true},
		},
		MinCycleTimeMS:      500,
		RNGCertification:    "Third-party certified RNG",
		TestingLabs:         []string{"GLI", "iTech Labs", "Gaming Associates"},
		ContentRestrictions: []string{"Basic decency standards"},
		DataPrivacy:         "Curacao data protection regulations",
		SubmissionDocuments: []string{"Game rules", "RNG certificate", "Basic paytable"},
	},
	"georgia": {
		Name:      "Georgia",
		Authority: "Georgia Lottery Commission / Tribal compacts",
		Standard:  "State-specific (varies by operator type)",
		RTPMin:    75.0,
		RTPMax:    99.9,
		ResponsibleGambling: map[string]RGFeature{
			"rg_messaging":   {Required: true},
			"self_exclusion": {Required: true, Integration: "operator-managed"},
		},
		RNGCertification:    "GLI-11 certified",
		TestingLabs:         []string{"GLI", "BMM Testlabs"},
		ContentRestrictions: []string{"No content appealing to minors", "Standard decency"},
		DataPrivacy:         "US state privacy laws",
		SubmissionDocuments: []string{"Game rules", "PAR sheet", "Paytable", "RNG certificate"},
	},
	"texas": {
		Name:      "Texas",
		Authority: "Texas Racing Commission / Tribal gaming authorities",
		Standard:  "State-specific + tribal compact requirements",
		RTPMin:    75.0,
		RTPMax:    99.9,
		ResponsibleGambling: map[string]RGFeature{
			"rg_messaging":   {Required: true},
			"self_exclusion": {Required: true, Integration: "operator-managed"},
		},
		RNGCertification:    "GLI-11 certified",
		TestingLabs:         []string{"GLI", "BMM Testlabs"},
		ContentRestrictions: []string{"Standard decency"},
		DataPrivacy:         "Texas state privacy laws",
		SubmissionDocuments: []string{"Game rules", "PAR sheet", "Paytable", "RNG certificate"},
	},
}
