// internal/services/controller.go
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/models"
)

const subscriberBuffer = 8

// ErrSuperseded is returned by Submit when a later submission, Cancel,
// Reset or Close made its result irrelevant.
var ErrSuperseded = apperrors.NewCanceledError("request was superseded", context.Canceled)

// Controller owns the page state of one session and runs submissions.
// Each submission carries a token; only the latest token may write its
// result, so the last submission wins.
type Controller struct {
	mu          sync.Mutex
	generator   Generator
	logger      *zap.Logger
	state       models.AppState
	token       uint64
	cancel      context.CancelFunc
	closed      bool
	subscribers map[chan models.AppState]bool
}

// NewController creates a controller in the initial state
func NewController(generator Generator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		generator:   generator,
		logger:      logger.Named("controller"),
		state:       models.AppState{UpdatedAt: time.Now()},
		subscribers: make(map[chan models.AppState]bool),
	}
}

// SetScript replaces the script text; nothing else changes
func (c *Controller) SetScript(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ScriptText == text {
		return
	}
	c.state.ScriptText = text
	c.touchLocked()
}

// State returns a snapshot safe to read after the lock is released
func (c *Controller) State() models.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Submit runs one generation for the current script and blocks until it
// settles. A blank script only sets the validation message. The returned
// error is the one recorded in the state, or ErrSuperseded.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSuperseded
	}

	script := c.state.ScriptText
	if strings.TrimSpace(script) == "" {
		err := apperrors.NewValidationError(apperrors.EmptyScriptMessage, nil)
		c.state.ErrorMessage = err.Message
		c.state.ErrorKind = string(err.Type)
		c.touchLocked()
		c.mu.Unlock()
		return err
	}

	if c.cancel != nil {
		c.logger.Debug("superseding in-flight request", zap.Uint64("request_id", c.token))
		c.cancel()
	}
	c.token++
	token := c.token
	genCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.state.IsLoading = true
	c.state.ErrorMessage = ""
	c.state.ErrorKind = ""
	c.state.Breakdown = nil
	c.state.RequestID = token
	c.touchLocked()
	c.mu.Unlock()

	breakdown, err := c.generator.Generate(genCtx, script)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || token != c.token {
		c.logger.Debug("discarding stale result", zap.Uint64("request_id", token), zap.Uint64("current", c.token))
		return ErrSuperseded
	}

	c.cancel = nil
	c.state.IsLoading = false
	switch {
	case err == nil:
		c.state.Breakdown = breakdown.Clone().Normalize()
		if c.state.Breakdown == nil {
			c.state.Breakdown = (&models.ScriptBreakdown{}).Normalize()
		}
		c.state.ErrorMessage = ""
		c.state.ErrorKind = ""
	case apperrors.IsCanceledError(err):
		// the caller went away; leave the page in its empty state
		c.state.Breakdown = nil
		c.state.ErrorMessage = ""
		c.state.ErrorKind = ""
	default:
		c.state.Breakdown = nil
		c.state.ErrorMessage = apperrors.UserMessage(err)
		c.state.ErrorKind = string(apperrors.TypeOf(err))
	}
	c.touchLocked()
	return err
}

// Cancel abandons the in-flight request, if any, and reports whether one
// was running. The page returns to its empty state.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsLoading {
		return false
	}
	c.abortLocked()
	c.state.IsLoading = false
	c.touchLocked()
	return true
}

// Reset abandons any request and clears the whole state, script included
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortLocked()
	c.state = models.AppState{RequestID: c.token}
	c.touchLocked()
}

// Close abandons any request and closes every subscriber channel.
// The controller rejects submissions afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.abortLocked()
	c.state.IsLoading = false
	c.closed = true
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// Subscribe returns a channel that receives every state change, starting
// with the current state. Slow readers only miss intermediate states.
func (c *Controller) Subscribe() chan models.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan models.AppState, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch
	}
	c.subscribers[ch] = true
	ch <- c.snapshotLocked()
	return ch
}

// Unsubscribe removes and closes ch
func (c *Controller) Unsubscribe(ch chan models.AppState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subscribers[ch]; !ok {
		return
	}
	delete(c.subscribers, ch)
	close(ch)
}

// abortLocked invalidates the current token and cancels its context
func (c *Controller) abortLocked() {
	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) snapshotLocked() models.AppState {
	snap := c.state
	snap.Breakdown = c.state.Breakdown.Clone()
	return snap
}

// touchLocked stamps the state and notifies subscribers
func (c *Controller) touchLocked() {
	c.state.UpdatedAt = time.Now()
	snap := c.snapshotLocked()

	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest queued state so the newest always lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
