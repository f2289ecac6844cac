package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// ScriptWriter breaks a high-level video concept into individual
// Scenes with detailed visual and audio direction.
type ScriptWriter struct {
	Text llm.TextCompletion
}

func NewScriptWriter(text llm.TextCompletion) *ScriptWriter {
	return &ScriptWriter{Text: text}
}

type scriptWriterResponse struct {
	Scenes []struct {
		SceneID         string   `json:"scene_id"`
		Title           string   `json:"title"`
		Description     string   `json:"description"`
		Duration        float64  `json:"duration"`
		VisualElements  []string `json:"visual_elements"`
		AudioNotes      string   `json:"audio_notes"`
		TransitionIn    string   `json:"transition_in"`
		TransitionOut   string   `json:"transition_out"`
		PromptHints     []string `json:"prompt_hints"`
		VoiceoverText   string   `json:"voiceover_text"`
		SyncPoints      []struct {
			Timestamp   float64 `json:"timestamp"`
			VisualCue   string  `json:"visual_cue"`
		} `json:"sync_points"`
		MusicTransition string   `json:"music_transition"`
		SFXCues         []string `json:"sfx_cues"`
		TextOverlay     string   `json:"text_overlay"`
	} `json:"scenes"`
}

// Write breaks video_concept into scenes targeting target_duration
// seconds, under the given production tier. When numScenes is 0, the
// count is derived as clamp(ceil(target_duration/5), 8, 20) — a
// scene every five seconds of runway, rounded up so a partial scene's
// worth of content always gets its own scene rather than being
// silently absorbed into the prior one.
func (w *ScriptWriter) Write(ctx context.Context, videoConcept string, targetDurationSec float64, tier models.ProductionTier, numScenes int) ([]models.Scene, error) {
	if strings.TrimSpace(videoConcept) == "" {
		return nil, fmt.Errorf("%w: video concept must not be empty", errs.ErrInvalidInput)
	}
	if targetDurationSec <= 0 {
		return nil, fmt.Errorf("%w: target duration must be positive", errs.ErrInvalidInput)
	}

	if numScenes == 0 {
		numScenes = clampInt(int(math.Ceil(targetDurationSec/5.0)), 8, 20)
	}

	prompt := buildScriptWriterPrompt(videoConcept, targetDurationSec, tier, numScenes)
	response, err := w.Text.Complete(ctx, scriptWriterSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed scriptWriterResponse
	if err := llm.ExtractJSON(response, &parsed); err != nil {
		return nil, err
	}

	scenes := make([]models.Scene, 0, len(parsed.Scenes))
	for _, s := range parsed.Scenes {
		var syncPoints []models.SyncPoint
		for _, sp := range s.SyncPoints {
			syncPoints = append(syncPoints, models.SyncPoint{TimeSec: sp.Timestamp, Description: sp.VisualCue})
		}
		musicTransition := s.MusicTransition
		if musicTransition == "" {
			musicTransition = "continue"
		}
		scenes = append(scenes, models.Scene{
			SceneID:         s.SceneID,
			Title:           s.Title,
			Description:     s.Description,
			DurationSec:     s.Duration,
			VisualElements:  s.VisualElements,
			PromptHints:     s.PromptHints,
			TransitionIn:    s.TransitionIn,
			TransitionOut:   s.TransitionOut,
			VoiceoverText:   s.VoiceoverText,
			SyncPoints:      syncPoints,
			MusicTransition: musicTransition,
			SFXCues:         s.SFXCues,
			TextOverlay:     s.TextOverlay,
			AudioNotes:      s.AudioNotes,
		})
	}

	return scenes, nil
}

// TotalDuration sums scene durations.
func TotalDuration(scenes []models.Scene) float64 {
	var total float64
	for _, s := range scenes {
		total += s.DurationSec
	}
	return total
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const scriptWriterSystemPrompt = "You are a professional video scriptwriter and production planner."

var tierGuidance = map[models.ProductionTier]string{
	models.TierStaticImages:   "Focus on simple, clear compositions; minimize motion; emphasize clarity.",
	models.TierMotionGraphics: "Favor infographic-style visuals, clean animations, charts and diagrams.",
	models.TierAnimated:       "Allow character animation, dynamic camera movement, varied stylized visuals.",
	models.TierPhotorealistic: "Aim for cinematic realism, detailed environments, sophisticated camera work.",
}

func buildScriptWriterPrompt(videoConcept string, targetDurationSec float64, tier models.ProductionTier, numScenes int) string {
	return fmt.Sprintf(`VIDEO CONCEPT: %s
TARGET DURATION: %.0f seconds
PRODUCTION TIER: %s
ESTIMATED SCENES: %d

%s

Break this concept into individual scenes. Each scene should:
- Be 3-8 seconds long (total should sum to approximately %.0f seconds)
- Have a clear visual focus and flow naturally into the next
- Include specific visual elements and prompt hints for AI video generation
- Include audio specifications (voiceover text, sync points, music, sound effects)

CRITICAL - TEXT IN VISUALS: AI video models cannot render readable text. Do not put
text, words, or readable writing into descriptions or prompt hints; put any on-screen
text into "text_overlay" instead.

Return ONLY valid JSON (no markdown, no explanation):
{
  "scenes": [
    {
      "scene_id": "scene_1",
      "title": "Opening Scene Title",
      "description": "What happens in this scene (no readable text)",
      "duration": 5.0,
      "visual_elements": ["element1", "element2"],
      "audio_notes": "Background music style, sound effect notes",
      "transition_in": "fade_in",
      "transition_out": "cut",
      "prompt_hints": ["visual style", "lighting", "camera angle"],
      "voiceover_text": "The exact words spoken in this scene",
      "sync_points": [{"timestamp": 2.0, "visual_cue": "button click animation"}],
      "music_transition": "continue",
      "sfx_cues": ["notification_sound"],
      "text_overlay": "Text to display on screen, or empty string"
    }
  ]
}`, videoConcept, targetDurationSec, tier, numScenes, tierGuidance[tier], targetDurationSec)
}
