package agents

import (
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

const wordsPerSecond = 2.5

// AudioGenerator produces tier-gated audio for a scene: NONE yields
// nothing, MUSIC_ONLY a music bed, SIMPLE_OVERLAY adds a voiceover,
// TIME_SYNCED adds sync-point-aware word timings, and FULL_PRODUCTION
// adds sound effect cues on top.
type AudioGenerator struct{}

func NewAudioGenerator() *AudioGenerator {
	return &AudioGenerator{}
}

// GenerateSceneAudio builds a SceneAudio for scene at the given audio
// tier. Word timings assign a uniform per-word interval across the
// voiceover's estimated duration — real sync accuracy is a downstream
// provider concern this system does not perform.
func (a *AudioGenerator) GenerateSceneAudio(scene models.Scene, tier models.AudioTier) models.SceneAudio {
	audio := models.SceneAudio{SceneID: scene.SceneID, Tier: tier, DurationSec: scene.DurationSec}

	if tier == models.AudioTierNone {
		return audio
	}

	audio.MusicURL = mockURL(scene.SceneID, "music")

	if tier == models.AudioTierMusicOnly {
		return audio
	}

	if scene.VoiceoverText != "" {
		audio.VoiceoverURL = mockURL(scene.SceneID, "vo")
	}

	if tier == models.AudioTierTimeSynced || tier == models.AudioTierFullProduction {
		audio.WordTimings = wordTimingsFor(scene.VoiceoverText)
	}

	if tier == models.AudioTierFullProduction {
		for range scene.SFXCues {
			audio.SFXUrls = append(audio.SFXUrls, mockURL(scene.SceneID, "sfx"))
		}
	}

	return audio
}

func wordTimingsFor(text string) []models.WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	interval := 1.0 / wordsPerSecond
	timings := make([]models.WordTiming, len(words))
	for i, w := range words {
		start := float64(i) * interval
		timings[i] = models.WordTiming{Word: w, StartSec: start, EndSec: start + interval}
	}
	return timings
}

func mockURL(sceneID, kind string) string {
	return "mock://" + sceneID + "/" + kind + ".mp3"
}
