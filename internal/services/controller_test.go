package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/llm"
	"github.com/Corphon/ScriptBreakdown/internal/mocks"
	"github.com/Corphon/ScriptBreakdown/internal/models"
)

func breakdownWithSummary(summary string) *models.ScriptBreakdown {
	return &models.ScriptBreakdown{Scenes: []models.Scene{{
		SceneNumber:  1,
		SceneSummary: summary,
	}}}
}

func TestSubmitEmptyScriptSkipsGenerator(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "valid").Return(breakdownWithSummary("kept"), nil).Once()
	c := NewController(gen, nil)

	c.SetScript("valid")
	require.NoError(t, c.Submit(context.Background()))

	for _, blank := range []string{"", "   \n\t  "} {
		c.SetScript(blank)
		err := c.Submit(context.Background())

		require.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
		state := c.State()
		assert.Equal(t, "Script cannot be empty.", state.ErrorMessage)
		assert.False(t, state.IsLoading)
		require.NotNil(t, state.Breakdown, "breakdown is left untouched")
		assert.Equal(t, "kept", state.Breakdown.Scenes[0].SceneSummary)
		assert.Equal(t, blank, state.ScriptText)
	}
}

func TestSubmitSuccess(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, coffeeShopScript).Return(breakdownWithSummary("Anna meets Mark."), nil).Once()
	c := NewController(gen, nil)
	c.SetScript(coffeeShopScript)

	require.NoError(t, c.Submit(context.Background()))

	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.ErrorMessage)
	require.NotNil(t, state.Breakdown)
	assert.Equal(t, "Anna meets Mark.", state.Breakdown.Scenes[0].SceneSummary)
	assert.NotNil(t, state.Breakdown.Scenes[0].VoiceoverPrompt)
	assert.Equal(t, uint64(1), state.RequestID)
}

func TestSubmitFailureSetsCompositeMessage(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewParseError(generateFailure, errors.New("unexpected end of JSON input"))).Once()
	c := NewController(gen, nil)
	c.SetScript("INT. HALLWAY - NIGHT")

	err := c.Submit(context.Background())

	assert.True(t, apperrors.IsParseError(err))
	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Breakdown)
	assert.Equal(t, "An error occurred: Failed to generate scene prompts: unexpected end of JSON input. Please check your connection and API key, then try again.", state.ErrorMessage)
	assert.Equal(t, string(apperrors.ErrorTypeParse), state.ErrorKind)
}

func TestSubmitMinimalScriptThroughGeneration(t *testing.T) {
	const script = "SCENE 1\nINT. ROOM\nHELLO"
	svc, provider, _, _ := newTestGenerationService(t, time.Minute)
	provider.On("CompleteText", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return strings.Contains(req.Prompt, script)
	})).Return(&llm.CompletionResponse{
		Text: `{"scenes":[{"scene_number":1,"scene_summary":"Someone says hello in a room.","image_prompt":"A bare room.","motion_prompt":"Static shot.","voiceover_prompt":[]}]}`,
	}, nil).Once()

	c := NewController(svc, nil)
	c.SetScript(script)
	require.NoError(t, c.Submit(context.Background()))

	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.ErrorMessage)
	require.NotNil(t, state.Breakdown)
	require.Len(t, state.Breakdown.Scenes, 1)
	assert.Equal(t, 1, state.Breakdown.Scenes[0].SceneNumber)
}

func TestSubmitTransportFailureThroughGeneration(t *testing.T) {
	svc, provider, _, _ := newTestGenerationService(t, time.Minute)
	provider.On("CompleteText", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	c := NewController(svc, nil)
	c.SetScript("INT. ROOM - DAY")
	err := c.Submit(context.Background())

	assert.True(t, apperrors.IsTransportError(err))
	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Breakdown)
	assert.Contains(t, state.ErrorMessage, "timeout")
	assert.True(t, strings.HasPrefix(state.ErrorMessage, "An error occurred: "))
}

func TestSubmitClearsPreviousResultWhileLoading(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "one").Return(breakdownWithSummary("one"), nil).Once()
	release := make(chan struct{})
	started := make(chan struct{})
	gen.On("Generate", mock.Anything, "two").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(breakdownWithSummary("two"), nil).Once()

	c := NewController(gen, nil)
	c.SetScript("one")
	require.NoError(t, c.Submit(context.Background()))

	c.SetScript("two")
	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	state := c.State()
	assert.True(t, state.IsLoading)
	assert.Nil(t, state.Breakdown)
	assert.Empty(t, state.ErrorMessage)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "two", c.State().Breakdown.Scenes[0].SceneSummary)
}

func TestLatestSubmissionWins(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	release := make(chan struct{})
	started := make(chan struct{})
	gen.On("Generate", mock.Anything, "first").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(breakdownWithSummary("first"), nil).Once()
	gen.On("Generate", mock.Anything, "second").Return(breakdownWithSummary("second"), nil).Once()

	c := NewController(gen, nil)
	c.SetScript("first")
	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Submit(context.Background()) }()
	<-started

	c.SetScript("second")
	require.NoError(t, c.Submit(context.Background()))

	close(release)
	assert.ErrorIs(t, <-firstDone, ErrSuperseded)

	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Equal(t, "second", state.Breakdown.Scenes[0].SceneSummary)
	assert.Equal(t, uint64(2), state.RequestID)
}

func TestSupersededRequestIsCanceled(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	started := make(chan struct{})
	canceled := make(chan struct{})
	gen.On("Generate", mock.Anything, "first").Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
		close(canceled)
	}).Return(nil, apperrors.NewCanceledError(generateFailure, context.Canceled)).Once()
	gen.On("Generate", mock.Anything, "second").Return(breakdownWithSummary("second"), nil).Once()

	c := NewController(gen, nil)
	c.SetScript("first")
	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Submit(context.Background()) }()
	<-started

	c.SetScript("second")
	require.NoError(t, c.Submit(context.Background()))

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("first request was not canceled")
	}
	assert.ErrorIs(t, <-firstDone, ErrSuperseded)
	assert.Equal(t, "second", c.State().Breakdown.Scenes[0].SceneSummary)
}

func TestCancelReturnsToUsableState(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	started := make(chan struct{})
	gen.On("Generate", mock.Anything, "slow").Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, apperrors.NewCanceledError(generateFailure, context.Canceled)).Once()

	c := NewController(gen, nil)
	assert.False(t, c.Cancel(), "nothing to cancel")

	c.SetScript("slow")
	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	assert.True(t, c.Cancel())
	assert.ErrorIs(t, <-done, ErrSuperseded)

	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Breakdown)
	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, "slow", state.ScriptText)
}

func TestCallerCancellationLeavesEmptyState(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	gen.On("Generate", mock.Anything, "x").Run(func(mock.Arguments) { cancel() }).
		Return(nil, apperrors.NewCanceledError(generateFailure, context.Canceled)).Once()

	c := NewController(gen, nil)
	c.SetScript("x")
	err := c.Submit(ctx)

	assert.True(t, apperrors.IsCanceledError(err))
	state := c.State()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.ErrorMessage)
}

func TestResetClearsEverything(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "x").Return(breakdownWithSummary("x"), nil).Once()
	c := NewController(gen, nil)
	c.SetScript("x")
	require.NoError(t, c.Submit(context.Background()))

	c.Reset()

	state := c.State()
	assert.Empty(t, state.ScriptText)
	assert.Nil(t, state.Breakdown)
	assert.Empty(t, state.ErrorMessage)
	assert.False(t, state.IsLoading)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "x").Return(breakdownWithSummary("original"), nil).Once()
	c := NewController(gen, nil)
	c.SetScript("x")
	require.NoError(t, c.Submit(context.Background()))

	snap := c.State()
	snap.Breakdown.Scenes[0].SceneSummary = "mutated"

	assert.Equal(t, "original", c.State().Breakdown.Scenes[0].SceneSummary)
}

func TestSubscribeReceivesStateChanges(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, "x").Return(breakdownWithSummary("x"), nil).Once()
	c := NewController(gen, nil)

	ch := c.Subscribe()
	initial := <-ch
	assert.Empty(t, initial.ScriptText)

	c.SetScript("x")
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, "x", (<-ch).ScriptText)
	assert.True(t, (<-ch).IsLoading)
	final := <-ch
	assert.False(t, final.IsLoading)
	require.NotNil(t, final.Breakdown)

	c.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestCloseRejectsFurtherWork(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	c := NewController(gen, nil)
	ch := c.Subscribe()
	<-ch

	c.Close()
	c.Close()

	_, open := <-ch
	assert.False(t, open)

	c.SetScript("late")
	assert.ErrorIs(t, c.Submit(context.Background()), ErrSuperseded)

	late := c.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
