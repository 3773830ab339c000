package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/mocks"
	"github.com/Corphon/ScriptBreakdown/internal/models"
	"github.com/Corphon/ScriptBreakdown/internal/services"
)

func sampleBreakdown() *models.ScriptBreakdown {
	return &models.ScriptBreakdown{Scenes: []models.Scene{{
		SceneNumber:  1,
		SceneSummary: "Anna waits in the café.",
		ImagePrompt:  "Warm morning light.",
		MotionPrompt: "Slow push in.",
	}}}
}

func factoryFor(gen services.Generator) generatorFactory {
	return func(*generateOptions) (services.Generator, func(), error) {
		return gen, func() {}, nil
	}
}

func execute(t *testing.T, factory generatorFactory, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(factory)
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateWritesFile(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "INT. CAFE - DAY\n").Return(sampleBreakdown(), nil).Once()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(scriptPath, []byte("INT. CAFE - DAY\n"), 0644))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, factoryFor(gen), "", "generate", "--script-file", scriptPath, "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 scenes")

	written, err := os.ReadFile(filepath.Join(outDir, services.ExportFileName))
	require.NoError(t, err)
	want, err := services.RenderBreakdown(sampleBreakdown())
	require.NoError(t, err)
	assert.Equal(t, want, written)
}

func TestGenerateReadsStdinAndPrints(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "EXT. PARK").Return(sampleBreakdown(), nil).Once()

	out, err := execute(t, factoryFor(gen), "EXT. PARK", "generate", "--stdout")
	require.NoError(t, err)

	want, err := services.RenderBreakdown(sampleBreakdown())
	require.NoError(t, err)
	assert.Equal(t, string(want)+"\n", out)
}

func TestGenerateRejectsBlankScript(t *testing.T) {
	called := false
	factory := func(*generateOptions) (services.Generator, func(), error) {
		called = true
		return nil, func() {}, nil
	}

	_, err := execute(t, factory, "  \n\t", "generate", "--stdout")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, apperrors.EmptyScriptMessage, apperrors.UserMessage(err))
	assert.False(t, called, "no generator is built for a blank script")
}

func TestGenerateMissingFile(t *testing.T) {
	_, err := execute(t, factoryFor(mocks.NewMockGenerator(t)), "", "generate", "--script-file", filepath.Join(t.TempDir(), "none.txt"))

	assert.True(t, apperrors.IsValidationError(err))
}

func TestGeneratePropagatesGenerationError(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "script").
		Return(nil, apperrors.NewParseError("model returned an empty response", nil)).Once()

	_, err := execute(t, factoryFor(gen), "script", "generate", "--stdout")

	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
	assert.Equal(t,
		"An error occurred: model returned an empty response. Please check your connection and API key, then try again.",
		apperrors.UserMessage(err))
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, factoryFor(nil), "", "schema")
	require.NoError(t, err)

	assert.Contains(t, out, `"scene_number"`)
	assert.Contains(t, out, `"voiceover_prompt"`)
}
