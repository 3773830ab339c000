// internal/api/view.go
package api

import (
	"strings"

	"github.com/Corphon/ScriptBreakdown/internal/models"
	"github.com/Corphon/ScriptBreakdown/internal/services"
)

// Page labels shared by the template and the state stream
const (
	SubmitLabel       = "Generate Scene Prompts"
	SubmitBusyLabel   = "Generating..."
	CopyLabel         = "Copy"
	CopiedLabel       = "Copied!"
	DownloadLabel     = "Download JSON"
	DownloadedLabel   = "Downloaded!"
	AckRevertMillis   = 2000
	ErrorPrefixLabel  = "Error: "
	OutputHeading     = "Generated Breakdown"
	WelcomeHeading    = "Ready to bring your script to life?"
	WelcomeBody       = "Your generated JSON breakdown will appear here once you submit a script."
	ScriptPlaceholder = "Paste your full video script here...\n\nExample:\n\nSCENE 1\nINT. COFFEE SHOP - DAY\n\nSunlight streams through the large window of a bustling cafe. ANNA (20s), looking anxious, sips her latte. Across from her sits MARK (30s), calm and composed.\n\nMARK\n(softly)\nYou came. I wasn't sure you would.\n\nANNA\n(avoiding eye contact)\nWell, you said it was important."
)

// Region names which of the result regions is visible
type Region string

const (
	RegionLoading     Region = "loading"
	RegionError       Region = "error"
	RegionOutput      Region = "output"
	RegionPlaceholder Region = "placeholder"
)

// View is what the page renders for one state
type View struct {
	Region         Region `json:"region"`
	ShowError      bool   `json:"show_error"`
	ErrorMessage   string `json:"error_message,omitempty"`
	SubmitDisabled bool   `json:"submit_disabled"`
	InputDisabled  bool   `json:"input_disabled"`
	SubmitLabel    string `json:"submit_label"`
	OutputJSON     string `json:"output_json,omitempty"`
	SceneCount     int    `json:"scene_count"`
}

// StatePayload pairs a state snapshot with its view
type StatePayload struct {
	State models.AppState `json:"state"`
	View  View            `json:"view"`
}

// BuildView derives the page from state. The error alert shows whenever a
// message is present, even during loading; the output shows only when
// idle with a breakdown and no error; otherwise the placeholder shows.
func BuildView(state models.AppState) View {
	v := View{
		ShowError:      state.HasError(),
		ErrorMessage:   state.ErrorMessage,
		InputDisabled:  state.IsLoading,
		SubmitDisabled: state.IsLoading || strings.TrimSpace(state.ScriptText) == "",
		SubmitLabel:    SubmitLabel,
	}
	if state.IsLoading {
		v.SubmitLabel = SubmitBusyLabel
	}

	switch {
	case state.IsLoading:
		v.Region = RegionLoading
	case state.HasError():
		v.Region = RegionError
	case state.Breakdown != nil:
		v.Region = RegionOutput
		if out, err := services.RenderBreakdown(state.Breakdown); err == nil {
			v.OutputJSON = string(out)
		}
		v.SceneCount = state.Breakdown.SceneCount()
	default:
		v.Region = RegionPlaceholder
	}
	return v
}

// NewStatePayload builds the payload sent for state
func NewStatePayload(state models.AppState) StatePayload {
	return StatePayload{State: state, View: BuildView(state)}
}
