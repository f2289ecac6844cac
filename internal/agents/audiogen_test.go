package agents

import (
	"testing"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

func TestAudioGeneratorNoneTierProducesNoURLs(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, VoiceoverText: "hello world", SFXCues: []string{"click"}}

	audio := a.GenerateSceneAudio(scene, models.AudioTierNone)

	if audio.MusicURL != "" || audio.VoiceoverURL != "" || len(audio.WordTimings) != 0 || len(audio.SFXUrls) != 0 {
		t.Fatalf("expected no audio assets at none tier, got %+v", audio)
	}
}

func TestAudioGeneratorMusicOnlyTier(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, VoiceoverText: "hello world"}

	audio := a.GenerateSceneAudio(scene, models.AudioTierMusicOnly)

	if audio.MusicURL == "" {
		t.Fatalf("expected music url at music_only tier")
	}
	if audio.VoiceoverURL != "" {
		t.Fatalf("expected no voiceover at music_only tier, got %q", audio.VoiceoverURL)
	}
}

func TestAudioGeneratorSimpleOverlayAddsVoiceoverWithoutTimings(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, VoiceoverText: "hello world"}

	audio := a.GenerateSceneAudio(scene, models.AudioTierSimpleOverlay)

	if audio.VoiceoverURL == "" {
		t.Fatalf("expected voiceover url at simple_overlay tier")
	}
	if len(audio.WordTimings) != 0 {
		t.Fatalf("expected no word timings at simple_overlay tier, got %+v", audio.WordTimings)
	}
}

func TestAudioGeneratorSimpleOverlaySkipsVoiceoverWhenTextEmpty(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{SceneID: "scene_1", DurationSec: 5}

	audio := a.GenerateSceneAudio(scene, models.AudioTierSimpleOverlay)

	if audio.VoiceoverURL != "" {
		t.Fatalf("expected no voiceover url when voiceover text is empty, got %q", audio.VoiceoverURL)
	}
}

func TestAudioGeneratorTimeSyncedProducesWordTimings(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, VoiceoverText: "hello brave new world"}

	audio := a.GenerateSceneAudio(scene, models.AudioTierTimeSynced)

	if len(audio.WordTimings) != 4 {
		t.Fatalf("expected 4 word timings, got %d", len(audio.WordTimings))
	}
	first := audio.WordTimings[0]
	if first.Word != "hello" || first.StartSec != 0 {
		t.Fatalf("unexpected first timing: %+v", first)
	}
	interval := 1.0 / wordsPerSecond
	if first.EndSec != interval {
		t.Fatalf("expected end %f, got %f", interval, first.EndSec)
	}
	last := audio.WordTimings[3]
	expectedStart := interval * 3
	if last.StartSec != expectedStart {
		t.Fatalf("expected last start %f, got %f", expectedStart, last.StartSec)
	}
}

func TestAudioGeneratorFullProductionAddsSFX(t *testing.T) {
	a := NewAudioGenerator()
	scene := models.Scene{
		SceneID:       "scene_1",
		DurationSec:   5,
		VoiceoverText: "a narrated moment",
		SFXCues:       []string{"door_slam", "footsteps"},
	}

	audio := a.GenerateSceneAudio(scene, models.AudioTierFullProduction)

	if len(audio.SFXUrls) != 2 {
		t.Fatalf("expected 2 sfx urls, got %d", len(audio.SFXUrls))
	}
	if len(audio.WordTimings) != 3 {
		t.Fatalf("expected 3 word timings, got %d", len(audio.WordTimings))
	}
}
