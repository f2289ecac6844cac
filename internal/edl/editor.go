// Package edl implements the Editor: it turns a winning pilot's scenes,
// video variations, and QA results into an Edit Decision List with
// several candidate cuts, and exports a chosen candidate to the
// deliverable formats downstream NLEs expect.
package edl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Editor assembles Edit Decision Lists from scene, video, and QA data.
type Editor struct {
	Text llm.TextCompletion
}

func NewEditor(text llm.TextCompletion) *Editor {
	return &Editor{Text: text}
}

type editCandidateResponse struct {
	CandidateID      string  `json:"candidate_id"`
	Name             string  `json:"name"`
	EditorialApproach string `json:"editorial_approach"`
	Reasoning        string  `json:"reasoning"`
	EstimatedQuality float64 `json:"estimated_quality"`
	Edits            []struct {
		SceneID               string  `json:"scene_id"`
		SelectedVariation     int     `json:"selected_variation"`
		InPoint               float64 `json:"in_point"`
		OutPoint              float64 `json:"out_point"`
		Duration              float64 `json:"duration"`
		TransitionIn          string  `json:"transition_in"`
		TransitionOut         string  `json:"transition_out"`
	} `json:"edits"`
}

type editingResponse struct {
	Candidates []editCandidateResponse `json:"candidates"`
}

// CreateEDL builds an EDL for scenes: it generates numCandidates
// editorial approaches and picks the recommended one. sceneAudio is
// optional (nil is fine) — when supplied, each decision's AudioURL is
// filled in from the matching scene's voiceover.
func (e *Editor) CreateEDL(ctx context.Context, scenes []models.Scene, videoCandidates map[string][]models.GeneratedVideo, qaResults map[string][]models.QAResult, sceneAudio map[string]models.SceneAudio, originalRequest string, numCandidates int) (models.EDL, error) {
	if len(scenes) == 0 {
		return models.EDL{}, fmt.Errorf("%w: scenes must not be empty", errs.ErrInvalidInput)
	}
	if numCandidates <= 0 {
		numCandidates = 3
	}

	candidates, err := e.GenerateCandidates(ctx, scenes, videoCandidates, qaResults, sceneAudio, originalRequest, numCandidates)
	if err != nil {
		return models.EDL{}, err
	}

	recommended := e.SelectRecommended(candidates)

	return models.EDL{
		EDLID:                  "edl_" + uuid.New().String()[:8],
		Candidates:             candidates,
		RecommendedCandidateID: recommended,
		ExportFormats:          []models.ExportFormat{models.ExportJSON, models.ExportFCPXML, models.ExportCMX3600},
		TotalScenes:            len(scenes),
		OriginalRequest:        originalRequest,
	}, nil
}

// GenerateCandidates asks the driver for numCandidates editorial
// approaches (conventionally safe/creative/balanced) and resolves each
// into concrete EditDecisions. Trim points on a chained video are
// offset by its NewContentStart so the cut always lands in the new
// content, not the prepended previous-scene frames the provider
// stitched in.
func (e *Editor) GenerateCandidates(ctx context.Context, scenes []models.Scene, videoCandidates map[string][]models.GeneratedVideo, qaResults map[string][]models.QAResult, sceneAudio map[string]models.SceneAudio, originalRequest string, numCandidates int) ([]models.EditCandidate, error) {
	prompt := buildEditingPrompt(scenes, videoCandidates, qaResults, originalRequest, numCandidates)
	response, err := e.Text.Complete(ctx, editorSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed editingResponse
	if err := llm.ExtractJSON(response, &parsed); err != nil {
		return nil, err
	}

	sceneLookup := make(map[string]models.Scene, len(scenes))
	for _, s := range scenes {
		sceneLookup[s.SceneID] = s
	}

	candidates := make([]models.EditCandidate, 0, len(parsed.Candidates))
	for _, cd := range parsed.Candidates {
		var decisions []models.EditDecision
		currentTime := 0.0

		for _, ed := range cd.Edits {
			videos := videoCandidates[ed.SceneID]
			var video *models.GeneratedVideo
			var videoURL string
			duration := ed.Duration
			if ed.SelectedVariation >= 0 && ed.SelectedVariation < len(videos) {
				video = &videos[ed.SelectedVariation]
				videoURL = video.VideoURL
				if duration == 0 {
					duration = video.Duration
				}
			} else if duration == 0 {
				duration = 5.0
			}

			inPoint := ed.InPoint
			outPoint := ed.OutPoint
			if outPoint == 0 {
				outPoint = duration
			}

			if video != nil && video.ContainsPrevious && video.NewContentStart > 0 {
				offset := video.NewContentStart
				inPoint += offset
				outPoint += offset
				if video.TotalVideoDuration > 0 && outPoint > video.TotalVideoDuration {
					outPoint = video.TotalVideoDuration
				}
			}

			actualDuration := outPoint - inPoint

			transitionIn := ed.TransitionIn
			if transitionIn == "" {
				transitionIn = "cut"
			}
			transitionOut := ed.TransitionOut
			if transitionOut == "" {
				transitionOut = "cut"
			}

			var textOverlay string
			if scene, ok := sceneLookup[ed.SceneID]; ok {
				textOverlay = scene.TextOverlay
			}

			var audioURL string
			if audio, ok := sceneAudio[ed.SceneID]; ok {
				audioURL = audio.VoiceoverURL
			}

			decisions = append(decisions, models.EditDecision{
				SceneID:       ed.SceneID,
				VariationID:   ed.SelectedVariation,
				VideoURL:      videoURL,
				InPoint:       inPoint,
				OutPoint:      outPoint,
				TransitionIn:  transitionIn,
				TransitionOut: transitionOut,
				StartTime:     currentTime,
				Duration:      actualDuration,
				TextOverlay:   textOverlay,
				AudioURL:      audioURL,
			})
			currentTime += actualDuration
		}

		candidates = append(candidates, models.EditCandidate{
			CandidateID:      cd.CandidateID,
			Name:             cd.Name,
			Style:            models.CandidateStyle(cd.EditorialApproach),
			Decisions:        decisions,
			TotalDuration:    currentTime,
			EstimatedQuality: cd.EstimatedQuality,
			Reasoning:        cd.Reasoning,
		})
	}

	return candidates, nil
}

// SelectRecommended prefers the "balanced" candidate; absent one, it
// falls back to the highest estimated quality. Returns "" if candidates
// is empty.
func (e *Editor) SelectRecommended(candidates []models.EditCandidate) string {
	if len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		if c.Style == models.StyleBalanced {
			return c.CandidateID
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.EstimatedQuality > best.EstimatedQuality {
			best = c
		}
	}
	return best.CandidateID
}

const editorSystemPrompt = "You are a professional video editor creating an Edit Decision List."

func buildEditingPrompt(scenes []models.Scene, videoCandidates map[string][]models.GeneratedVideo, qaResults map[string][]models.QAResult, originalRequest string, numCandidates int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ORIGINAL REQUEST:\n%s\n\nSCENES AND CANDIDATES:\n", originalRequest)

	for _, scene := range scenes {
		fmt.Fprintf(&b, "\nScene %s: %s (%.1fs)\n  Description: %s\n", scene.SceneID, scene.Title, scene.DurationSec, scene.Description)

		videos := videoCandidates[scene.SceneID]
		qas := qaResults[scene.SceneID]
		for idx, video := range videos {
			var score float64
			var issues []string
			if idx < len(qas) {
				score = qas[idx].OverallScore
				issues = qas[idx].Issues
			}
			fmt.Fprintf(&b, "  - Variation %d: QA %.1f/100", idx, score)
			if len(issues) > 0 {
				n := len(issues)
				if n > 2 {
					n = 2
				}
				fmt.Fprintf(&b, " (Issues: %s)", strings.Join(issues[:n], ", "))
			}
			_ = video
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, `
Create %d different edit candidates:
1. SAFE: Highest quality, standard editing - picks highest QA scores, uses simple cuts
2. CREATIVE: Most visually interesting, artistic choices - may pick lower QA if more interesting
3. BALANCED: Best overall narrative flow - weighs quality + visual interest (RECOMMENDED)

For each candidate, select one variation per scene and specify trim points and transitions.

Return ONLY valid JSON (no markdown, no explanation):
{
  "candidates": [
    {
      "candidate_id": "safe_cut",
      "name": "Safe Cut",
      "editorial_approach": "safe",
      "reasoning": "Selected highest QA scores throughout for reliability",
      "estimated_quality": 88,
      "edits": [
        {"scene_id": "scene_1", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0, "transition_in": "fade_in", "transition_out": "cut"}
      ]
    }
  ]
}`, numCandidates)

	return b.String()
}
