package tui

import (
	"io"

	"go.uber.org/zap"
)

// Theme captures optional formatting hints applied when printing messages.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "::", SuccessPrefix: "OK", ErrorPrefix: "!!"}
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints informational messages.
func WithOutput(out io.Writer) Option {
	return func(s *Session) {
		if out != nil {
			s.out = out
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRepeat asks whether to start another experiment after each successful
// submission instead of ending the session.
func WithRepeat(enabled bool) Option {
	return func(s *Session) {
		s.repeat = enabled
	}
}
