package studyassist

import (
	"fmt"
	"strings"
	"sync"
)

// Voice describes one speech voice offered by the platform
type Voice struct {
	Name string
	Lang string
}

// Speaker is the platform text-to-speech capability. Implementations are
// injected; the library never synthesizes audio itself.
type Speaker interface {
	Speak(text, voiceName string) error
	Stop()
}

// VoiceStore holds the page-wide voice preference. The platform's
// voices-changed notification feeds SetVoices; playback actions read a
// snapshot rather than holding references.
type VoiceStore struct {
	mu       sync.RWMutex
	voices   []Voice
	selected string
}

// NewVoiceStore creates an empty voice store
func NewVoiceStore() *VoiceStore {
	return &VoiceStore{}
}

// Voices is the process-wide store read by every playback action.
var Voices = NewVoiceStore()

// SetVoices replaces the available voices. When nothing has been selected
// yet it picks a default, preferring the first English voice. An explicit
// selection survives updates even if the voice is no longer listed.
func (vs *VoiceStore) SetVoices(voices []Voice) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	vs.voices = make([]Voice, len(voices))
	copy(vs.voices, voices)

	if vs.selected != "" || len(vs.voices) == 0 {
		return
	}
	vs.selected = vs.voices[0].Name
	for _, v := range vs.voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			vs.selected = v.Name
			break
		}
	}
}

// Select sets the preferred voice by name
func (vs *VoiceStore) Select(name string) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for _, v := range vs.voices {
		if v.Name == name {
			vs.selected = name
			return nil
		}
	}
	return fmt.Errorf("unknown voice: %s", name)
}

// Snapshot returns a copy of the available voices and the selected name.
func (vs *VoiceStore) Snapshot() ([]Voice, string) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	out := make([]Voice, len(vs.voices))
	copy(out, vs.voices)
	return out, vs.selected
}

// Selected returns the currently selected voice name, or "" when none.
func (vs *VoiceStore) Selected() string {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.selected
}
