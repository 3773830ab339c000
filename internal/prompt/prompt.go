// internal/prompt/prompt.go
package prompt

import (
	"sync"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/Corphon/ScriptBreakdown/internal/models"
)

const (
	// Temperature is the sampling temperature sent with every request
	Temperature float32 = 0.7

	// ResponseMIMEType asks the model for a raw JSON body
	ResponseMIMEType = "application/json"

	// SchemaName identifies the response schema for providers that need a name
	SchemaName = "script_breakdown"

	scriptSeparator = "\n\n---\n\nSCRIPT:\n\n"
)

// Instruction is the fixed analyst instruction placed ahead of the script
const Instruction = `
You are an expert film director and script analyst. Your task is to break down a video script into a detailed, scene-by-scene production plan in JSON format. Maintain strict consistency for characters and environments across all scenes.

Analyze the following script and generate a JSON object containing an array of scenes. For each scene, provide:
1.  **scene_number**: An integer for the scene sequence.
2.  **scene_summary**: A brief one-sentence overview of what happens in the scene.
3.  **image_prompt**: A highly detailed, cinematic, and realistic description suitable for an image generation AI. It must be at least 3-5 sentences long. Include specifics on lighting (e.g., 'golden hour lighting casting long shadows'), mood ('tense and suspenseful'), environment, character appearance (ensure faces, costumes, and props are consistent with previous scenes), camera angle (e.g., 'low-angle shot looking up at the character'), and any key actions.
4.  **motion_prompt**: A detailed description of all camera and character movements, at least 3-5 sentences long. Be specific (e.g., 'The camera dollies backward slowly as the character walks towards it, maintaining a medium close-up. A subtle handheld shake adds to the tension.').
5.  **voiceover_prompt**: An array of objects for each line of dialogue. For each line, identify the speaking character, provide the exact dialogue, and infer a suitable 'voice_style' (e.g., 'Whispering, urgent tone', 'Confident, booming voice'). Automatically assign consistent voice characteristics (gender, accent, general tone) to each character throughout the script.
`

// Build returns the single text message sent to the model.
// The script is appended verbatim.
func Build(script string) string {
	return Instruction + scriptSeparator + script
}

var (
	sceneFields     = []string{"scene_number", "scene_summary", "image_prompt", "motion_prompt", "voiceover_prompt"}
	voiceoverFields = []string{"character", "dialogue", "voice_style"}
)

// GeminiSchema returns the structured-output schema for the Gemini API.
// A fresh value is returned on each call.
func GeminiSchema() *genai.Schema {
	voiceover := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"character": {
				Type:        genai.TypeString,
				Description: "Name of the character or inferred role.",
			},
			"dialogue": {
				Type:        genai.TypeString,
				Description: "The actual line of dialogue.",
			},
			"voice_style": {
				Type:        genai.TypeString,
				Description: "The inferred voice style (e.g., Calm, serious, or emotional tone).",
			},
		},
		Required:         append([]string(nil), voiceoverFields...),
		PropertyOrdering: append([]string(nil), voiceoverFields...),
	}

	scene := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scene_number": {
				Type:        genai.TypeInteger,
				Description: "The sequential number of the scene.",
			},
			"scene_summary": {
				Type:        genai.TypeString,
				Description: "A short overview of what happens in the scene.",
			},
			"image_prompt": {
				Type:        genai.TypeString,
				Description: "A highly detailed cinematic realistic description of the visuals, including lighting, mood, environment, characters, costumes, camera angle, and action. Maintain visual and character consistency across all scenes.",
			},
			"motion_prompt": {
				Type:        genai.TypeString,
				Description: "A detailed description of how the camera and characters move (e.g., camera pans left, close-up on the actor’s face, slow motion, drone shot, emotional tone).",
			},
			"voiceover_prompt": {
				Type:        genai.TypeArray,
				Description: "Voice lines for each speaking character.",
				Items:       voiceover,
			},
		},
		Required:         append([]string(nil), sceneFields...),
		PropertyOrdering: append([]string(nil), sceneFields...),
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scenes": {
				Type:        genai.TypeArray,
				Description: "An array of scene breakdowns.",
				Items:       scene,
			},
		},
		Required: []string{"scenes"},
	}
}

var (
	jsonSchemaOnce sync.Once
	jsonSchema     *jsonschema.Schema
)

// JSONSchema returns the same contract as GeminiSchema, reflected from the
// models as a standard JSON Schema document. The result is shared; callers
// must not modify it.
func JSONSchema() *jsonschema.Schema {
	jsonSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
			Anonymous:                 true,
		}
		jsonSchema = reflector.Reflect(&models.ScriptBreakdown{})
		jsonSchema.Version = ""
	})
	return jsonSchema
}
