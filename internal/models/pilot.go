package models

// PilotStrategy is one (tier, sub-budget) hypothesis produced by the
// Producer. Several pilots compete on a short test slice.
type PilotStrategy struct {
	PilotID         string         `json:"pilot_id"`
	Tier            ProductionTier `json:"tier"`
	AllocatedBudget float64        `json:"allocated_budget"`
	TestSceneCount  int            `json:"test_scene_count"`
	FullSceneCount  int            `json:"full_scene_count"`
	Rationale       string         `json:"rationale"`
}

// SceneResult is the Pilot Runner's per-scene outcome: the best
// variation by QA score, plus the cumulative generation cost across
// all variations attempted for that scene.
type SceneResult struct {
	SceneID        string   `json:"scene_id"`
	Description    string   `json:"description"`
	VideoURL       string   `json:"video_url"`
	QAScore        float64  `json:"qa_score"`
	QAPassed       bool     `json:"qa_passed"`
	QAThreshold    int      `json:"qa_threshold"`
	QAIssues       []string `json:"qa_issues,omitempty"`
	GenerationCost float64  `json:"generation_cost"`
}

// PilotRunResult is what one run of the Pilot Runner returns — either
// for the test phase or for a continuation.
type PilotRunResult struct {
	PilotID     string           `json:"pilot_id"`
	Scenes      []SceneResult    `json:"scenes"`
	BudgetSpent float64          `json:"budget_spent"`
	RawVideos   []GeneratedVideo `json:"raw_videos,omitempty"`
	RawQA       []QAResult       `json:"raw_qa,omitempty"`
	// InputScenes is the ScriptWriter output this run generated videos
	// for. It is not part of the pilot-runner operation's literal
	// return contract but is carried along so a caller assembling an
	// EDL over the winning pilot doesn't have to reconstruct Scene data
	// from the lossy SceneResult summaries.
	InputScenes []Scene `json:"input_scenes,omitempty"`
}

// PilotResults is the Critic's evaluation of a pilot.
type PilotResults struct {
	PilotID            string         `json:"pilot_id"`
	Tier               ProductionTier `json:"tier"`
	ScenesGenerated    []SceneResult  `json:"scenes_generated"`
	TotalCost          float64        `json:"total_cost"`
	AvgQAScore         float64        `json:"avg_qa_score"`
	CriticScore        float64        `json:"critic_score"`
	Approved           bool           `json:"approved"`
	BudgetRemaining    float64        `json:"budget_remaining"`
	GapAnalysis        string         `json:"gap_analysis"`
	CriticReasoning    string         `json:"critic_reasoning"`
	AdjustmentsNeeded  []string       `json:"adjustments_needed,omitempty"`
	QAFailuresCount    int            `json:"qa_failures_count"`
	QAOverrideReasoning string        `json:"qa_override_reasoning,omitempty"`
}

// ProductionResult is the Orchestrator's final output.
type ProductionResult struct {
	Status          string         `json:"status"` // "success" | "failed"
	BestPilot       *PilotResults  `json:"best_pilot,omitempty"`
	AllPilots       []PilotResults `json:"all_pilots"`
	BudgetUsed      float64        `json:"budget_used"`
	BudgetRemaining float64        `json:"budget_remaining"`
	TotalScenes     int            `json:"total_scenes"`
	FailureReason   string         `json:"failure_reason,omitempty"`
}

// ProviderKnowledge is a lightweight, optional summary a caller may
// hand to the Producer to bias tier/provider selection based on prior
// runs. It never overrides the budget constraint.
type ProviderKnowledge struct {
	Provider    string         `json:"provider"`
	Tier        ProductionTier `json:"tier"`
	SampleCount int            `json:"sample_count"`
	AvgQAScore  float64        `json:"avg_qa_score"`
	AvgCost     float64        `json:"avg_cost"`
	Notes       string         `json:"notes,omitempty"`
}
