// internal/services/validation.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/models"
)

// The wire types mirror models.ScriptBreakdown with pointer fields so a
// missing key can be told apart from a zero value.
type wireBreakdown struct {
	Scenes []wireScene `json:"scenes" validate:"required,dive"`
}

type wireScene struct {
	SceneNumber     *int            `json:"scene_number" validate:"required,min=1"`
	SceneSummary    *string         `json:"scene_summary" validate:"required"`
	ImagePrompt     *string         `json:"image_prompt" validate:"required"`
	MotionPrompt    *string         `json:"motion_prompt" validate:"required"`
	VoiceoverPrompt []wireVoiceover `json:"voiceover_prompt" validate:"required,dive"`
}

type wireVoiceover struct {
	Character  *string `json:"character" validate:"required"`
	Dialogue   *string `json:"dialogue" validate:"required"`
	VoiceStyle *string `json:"voice_style" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeBreakdown parses the model's response text into a breakdown.
// Empty text and malformed JSON are parse errors; well-formed JSON of the
// wrong shape is a schema mismatch. Unknown keys are ignored.
func DecodeBreakdown(text string) (*models.ScriptBreakdown, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewParseError("model returned an empty response", nil)
	}

	var wire wireBreakdown
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, apperrors.NewSchemaMismatchError("response does not match the breakdown schema", err)
		}
		return nil, apperrors.NewParseError("response is not valid JSON", err)
	}

	if err := validate.Struct(&wire); err != nil {
		return nil, apperrors.NewSchemaMismatchError("response does not match the breakdown schema", describeValidation(err))
	}

	return wire.toModel().Normalize(), nil
}

// describeValidation flattens validator output into one readable error
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// drop the root type name from the namespace
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		} else {
			path = fe.Field()
		}

		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", path))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", path, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", path, fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}

func (w *wireBreakdown) toModel() *models.ScriptBreakdown {
	out := &models.ScriptBreakdown{Scenes: make([]models.Scene, 0, len(w.Scenes))}
	for _, s := range w.Scenes {
		scene := models.Scene{
			SceneNumber:     *s.SceneNumber,
			SceneSummary:    *s.SceneSummary,
			ImagePrompt:     *s.ImagePrompt,
			MotionPrompt:    *s.MotionPrompt,
			VoiceoverPrompt: make([]models.Voiceover, 0, len(s.VoiceoverPrompt)),
		}
		for _, v := range s.VoiceoverPrompt {
			scene.VoiceoverPrompt = append(scene.VoiceoverPrompt, models.Voiceover{
				Character:  *v.Character,
				Dialogue:   *v.Dialogue,
				VoiceStyle: *v.VoiceStyle,
			})
		}
		out.Scenes = append(out.Scenes, scene)
	}
	return out
}
