// internal/models/scene.go
package models

// Scene is one scene of a script breakdown
type Scene struct {
	SceneNumber     int         `json:"scene_number" jsonschema_description:"The sequential number of the scene."`
	SceneSummary    string      `json:"scene_summary" jsonschema_description:"A short overview of what happens in the scene."`
	ImagePrompt     string      `json:"image_prompt" jsonschema_description:"A highly detailed cinematic realistic description of the visuals, including lighting, mood, environment, characters, costumes, camera angle, and action. Maintain visual and character consistency across all scenes."`
	MotionPrompt    string      `json:"motion_prompt" jsonschema_description:"A detailed description of how the camera and characters move (e.g., camera pans left, close-up on the actor’s face, slow motion, drone shot, emotional tone)."`
	VoiceoverPrompt []Voiceover `json:"voiceover_prompt" jsonschema_description:"Voice lines for each speaking character."`
}

// Voiceover is one spoken line with the inferred delivery style
type Voiceover struct {
	Character  string `json:"character" jsonschema_description:"Name of the character or inferred role."`
	Dialogue   string `json:"dialogue" jsonschema_description:"The actual line of dialogue."`
	VoiceStyle string `json:"voice_style" jsonschema_description:"The inferred voice style (e.g., Calm, serious, or emotional tone)."`
}
