package studyassist

import "testing"

func TestVoiceStoreDefaultsToEnglish(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices([]Voice{
		{Name: "Hana", Lang: "ko-KR"},
		{Name: "Daniel", Lang: "en-GB"},
		{Name: "Samantha", Lang: "en-US"},
	})

	if got := vs.Selected(); got != "Daniel" {
		t.Errorf("expected first English voice as default, got %q", got)
	}
}

func TestVoiceStoreFallsBackToFirstVoice(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices([]Voice{
		{Name: "Hana", Lang: "ko-KR"},
		{Name: "Yuna", Lang: "ja-JP"},
	})

	if got := vs.Selected(); got != "Hana" {
		t.Errorf("expected first voice as fallback default, got %q", got)
	}
}

func TestVoiceStoreSelectionSurvivesUpdates(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices([]Voice{
		{Name: "Daniel", Lang: "en-GB"},
		{Name: "Samantha", Lang: "en-US"},
	})
	if err := vs.Select("Samantha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Platform reports a changed list; explicit selection must stick.
	vs.SetVoices([]Voice{{Name: "Daniel", Lang: "en-GB"}})
	if got := vs.Selected(); got != "Samantha" {
		t.Errorf("selection lost on voice list update: %q", got)
	}
}

func TestVoiceStoreSelectUnknown(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices([]Voice{{Name: "Daniel", Lang: "en-GB"}})

	if err := vs.Select("Ghost"); err == nil {
		t.Error("expected error selecting unknown voice")
	}
	if got := vs.Selected(); got != "Daniel" {
		t.Errorf("failed select must not change the preference, got %q", got)
	}
}

func TestVoiceStoreSnapshotIsCopy(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices([]Voice{{Name: "Daniel", Lang: "en-GB"}})

	voices, _ := vs.Snapshot()
	voices[0].Name = "mutated"

	fresh, _ := vs.Snapshot()
	if fresh[0].Name != "Daniel" {
		t.Errorf("snapshot mutation leaked into the store: %q", fresh[0].Name)
	}
}

func TestVoiceStoreEmptyList(t *testing.T) {
	vs := NewVoiceStore()
	vs.SetVoices(nil)

	if got := vs.Selected(); got != "" {
		t.Errorf("expected no selection with no voices, got %q", got)
	}
}
