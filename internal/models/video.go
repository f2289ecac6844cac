package models

// VideoProvider names the generation backend behind the Video
// Provider contract.
type VideoProvider string

const (
	ProviderLuma   VideoProvider = "luma"
	ProviderRunway VideoProvider = "runway"
	ProviderGemini VideoProvider = "gemini"
	ProviderMock   VideoProvider = "mock"
)

// GeneratedVideo is one variation produced by the VideoGenerator for a
// single scene. contains_previous/new_content_start/total_video_duration
// describe a provider artifact: some chained-generation backends
// literally prepend the previous scene's frames to the new clip, and
// downstream trims must offset by new_content_start rather than trust
// any caller-supplied metadata about where the new content begins.
type GeneratedVideo struct {
	SceneID           string        `json:"scene_id"`
	VariationID       int           `json:"variation_id"`
	VideoURL          string        `json:"video_url"`
	Duration          float64       `json:"duration"`
	GenerationCost    float64       `json:"generation_cost"`
	Provider          VideoProvider `json:"provider"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	QualityScore      *float64      `json:"quality_score,omitempty"`
	ContainsPrevious  bool          `json:"contains_previous"`
	NewContentStart   float64       `json:"new_content_start"`
	TotalVideoDuration float64      `json:"total_video_duration"`
	IsChained         bool          `json:"is_chained"`
	ChainGroup        string        `json:"chain_group,omitempty"`
}
