package models

import "time"

type AssetType string

const (
	AssetTypeAudio  AssetType = "audio"
	AssetTypeImage  AssetType = "image"
	AssetTypeFigure AssetType = "figure"
	AssetTypeVideo  AssetType = "video"
)

// Prefix returns the asset-ID prefix used by the Content
// Library's type-scoped monotonic counters.
func (t AssetType) Prefix() string {
	switch t {
	case AssetTypeAudio:
		return "aud"
	case AssetTypeImage:
		return "img"
	case AssetTypeFigure:
		return "fig"
	case AssetTypeVideo:
		return "vid"
	default:
		return "ast"
	}
}

type AssetStatus string

const (
	AssetStatusDraft    AssetStatus = "draft"
	AssetStatusReview   AssetStatus = "review"
	AssetStatusApproved AssetStatus = "approved"
	AssetStatusRejected AssetStatus = "rejected"
	AssetStatusRevised  AssetStatus = "revised"
)

// AssetSource is the closed set of origins an asset may have been
// produced by.
type AssetSource string

const (
	SourceDallE        AssetSource = "dalle"
	SourceElevenLabs    AssetSource = "elevenlabs"
	SourceOpenAITTS     AssetSource = "openai_tts"
	SourceLuma          AssetSource = "luma"
	SourceRunway        AssetSource = "runway"
	SourceKBExtraction  AssetSource = "kb_extraction"
	SourceWeb           AssetSource = "web"
	SourceFFmpeg        AssetSource = "ffmpeg"
	SourceManual        AssetSource = "manual"
)

// AssetRecord is one entry in the Content Library.
type AssetRecord struct {
	AssetID        string      `json:"asset_id"`
	Type           AssetType   `json:"type"`
	Source         AssetSource `json:"source"`
	Status         AssetStatus `json:"status"`
	Path           string      `json:"path"`
	SegmentIdx     *int        `json:"segment_idx,omitempty"`
	UsedInSegments []int       `json:"used_in_segments,omitempty"`
	FigureNumber   *int        `json:"figure_number,omitempty"`
	TextContent    string      `json:"text_content,omitempty"`
	Voice          string      `json:"voice,omitempty"`
	DurationSec    *float64    `json:"duration_sec,omitempty"`
	Prompt         string      `json:"prompt,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	OriginRunID    string      `json:"origin_run_id,omitempty"`
	GeneratedAt    time.Time   `json:"generated_at"`
	ApprovedAt     *time.Time  `json:"approved_at,omitempty"`
	RejectedReason string      `json:"rejected_reason,omitempty"`
	RevisionOf     string      `json:"revision_of,omitempty"`
}
