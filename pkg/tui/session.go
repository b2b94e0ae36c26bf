// Package tui drives the submission wizard from a terminal. Prompts go through
// a PromptDriver so sessions can be scripted in tests.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/submit"
	"github.com/goliatone/go-dosimetry/pkg/wizard"
)

// Navigation labels offered after each step.
const (
	ActionContinue = "Continue"
	ActionEdit     = "Edit again"
	ActionBack     = "Back"
	ActionJump     = "Jump to a previous step"
	ActionSubmit   = "Submit"
	ActionSave     = "Save to batch"
	ActionQuit     = "Quit"
)

// Session runs a wizard.Controller interactively.
type Session struct {
	wizard  *wizard.Controller
	driver  PromptDriver
	out     io.Writer
	theme   Theme
	logger  *zap.Logger
	summary *Summary
	repeat  bool
}

// NewSession prepares a session over c. The survey driver is used unless
// WithPromptDriver replaces it.
func NewSession(c *wizard.Controller, opts ...Option) (*Session, error) {
	if c == nil {
		return nil, errors.New("tui: wizard controller is required")
	}
	summary, err := NewSummary()
	if err != nil {
		return nil, err
	}
	s := &Session{
		wizard:  c,
		out:     os.Stdout,
		theme:   DefaultTheme(),
		logger:  zap.NewNop(),
		summary: summary,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	return s, nil
}

// Run prompts step by step until the user quits or a submission completes.
// With WithRepeat the user may start over after each submission. ErrAborted
// is returned on Ctrl+C.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.header(ctx); err != nil {
			return err
		}
		if err := s.edit(ctx); err != nil {
			return err
		}

		action, err := s.navigate(ctx)
		if err != nil {
			return err
		}
		switch action {
		case ActionContinue:
			s.wizard.Next()
		case ActionBack:
			s.wizard.Prev()
		case ActionJump:
			if err := s.jump(ctx); err != nil {
				return err
			}
		case ActionSubmit, ActionSave:
			done, err := s.submit(ctx)
			if err != nil || done {
				return err
			}
		case ActionQuit:
			return nil
		}
	}
}

func (s *Session) header(ctx context.Context) error {
	step := s.wizard.CurrentStep()
	msg := fmt.Sprintf("Step %d/%d: %s (%s)", s.wizard.Current(), len(s.wizard.Steps()), step.Name, step.Description)
	return s.driver.Info(ctx, join(s.theme.InfoPrefix, msg))
}

// actions lists the navigation choices for the showing step.
func (s *Session) actions() []string {
	var out []string
	if s.wizard.CanContinue() {
		out = append(out, ActionContinue)
	}
	if s.wizard.Last() {
		if _, ok := s.wizard.Mode().(wizard.DraftMode); ok {
			out = append(out, ActionSave)
		} else {
			out = append(out, ActionSubmit)
		}
	}
	out = append(out, ActionEdit)
	if s.wizard.Current() > 1 {
		out = append(out, ActionBack, ActionJump)
	}
	return append(out, ActionQuit)
}

func (s *Session) navigate(ctx context.Context) (string, error) {
	options := s.actions()
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Next", Options: options})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return ActionEdit, nil
	}
	return options[idx], nil
}

func (s *Session) jump(ctx context.Context) error {
	steps := s.wizard.Steps()[:s.wizard.Current()]
	options := make([]string, len(steps))
	for i, step := range steps {
		options[i] = fmt.Sprintf("%d. %s", i+1, step.Name)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Go to step",
		Options:      options,
		DefaultIndex: len(options) - 1,
	})
	if err != nil {
		return err
	}
	s.wizard.GoTo(idx + 1)
	return nil
}

// submit reports done when the session should end.
func (s *Session) submit(ctx context.Context) (bool, error) {
	_, err := s.wizard.Submit(ctx)
	var failure *submit.Failure
	switch {
	case errors.As(err, &failure):
		s.logger.Debug("submission failed", zap.Error(err))
		step := s.wizard.CurrentStep()
		msg := fmt.Sprintf("%s Returning to %s.", failure.Message, step.Name)
		return false, s.driver.Info(ctx, join(s.theme.ErrorPrefix, msg))
	case err != nil:
		return true, err
	}

	if !s.repeat {
		return true, nil
	}
	again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Start another experiment?"})
	if err != nil {
		return true, err
	}
	return !again, nil
}
