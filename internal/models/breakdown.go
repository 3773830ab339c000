// internal/models/breakdown.go
package models

// ScriptBreakdown is the structured result of one generation call.
// A value is never mutated after it is handed to the controller; callers
// that need to change it work on a Clone.
type ScriptBreakdown struct {
	Scenes []Scene `json:"scenes" jsonschema_description:"An array of scene breakdowns."`
}

// Normalize replaces nil slices with empty ones so the serialized form
// carries [] instead of null.
func (b *ScriptBreakdown) Normalize() *ScriptBreakdown {
	if b == nil {
		return nil
	}
	if b.Scenes == nil {
		b.Scenes = []Scene{}
	}
	for i := range b.Scenes {
		if b.Scenes[i].VoiceoverPrompt == nil {
			b.Scenes[i].VoiceoverPrompt = []Voiceover{}
		}
	}
	return b
}

// Clone returns a deep copy
func (b *ScriptBreakdown) Clone() *ScriptBreakdown {
	if b == nil {
		return nil
	}

	out := &ScriptBreakdown{Scenes: make([]Scene, len(b.Scenes))}
	for i, scene := range b.Scenes {
		scene.VoiceoverPrompt = append([]Voiceover{}, scene.VoiceoverPrompt...)
		out.Scenes[i] = scene
	}
	return out
}

// SceneCount returns the number of scenes
func (b *ScriptBreakdown) SceneCount() int {
	if b == nil {
		return 0
	}
	return len(b.Scenes)
}

// DialogueCount returns the number of voiceover lines across all scenes
func (b *ScriptBreakdown) DialogueCount() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, scene := range b.Scenes {
		total += len(scene.VoiceoverPrompt)
	}
	return total
}

// IrregularSceneNumbers returns scene numbers that repeat or break the 1..n sequence.
// Used for diagnostics only; the numbering is not enforced.
func (b *ScriptBreakdown) IrregularSceneNumbers() []int {
	if b == nil {
		return nil
	}

	var irregular []int
	seen := make(map[int]bool, len(b.Scenes))
	for i, scene := range b.Scenes {
		if seen[scene.SceneNumber] || scene.SceneNumber != i+1 {
			irregular = append(irregular, scene.SceneNumber)
		}
		seen[scene.SceneNumber] = true
	}
	return irregular
}
