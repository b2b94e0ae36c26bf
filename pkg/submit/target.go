package submit

import (
	"fmt"
	"strings"
)

// Target says where the experience goes. It is either NewArticle or
// ExistingArticle.
type Target interface {
	isTarget()
}

// NewArticle creates the article described by the draft.
type NewArticle struct{}

// ExistingArticle attaches the experience to a stored article.
type ExistingArticle struct {
	ID int64
}

func (NewArticle) isTarget()      {}
func (ExistingArticle) isTarget() {}

// Strategy selects how a draft is sent.
type Strategy int

const (
	Atomic Strategy = iota
	Decomposed
)

func (s Strategy) String() string {
	switch s {
	case Atomic:
		return "atomic"
	case Decomposed:
		return "decomposed"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "atomic" or "decomposed" in any case; empty means
// Atomic.
func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "atomic":
		return Atomic, nil
	case "decomposed":
		return Decomposed, nil
	default:
		return Atomic, fmt.Errorf("submit: unknown strategy %q", raw)
	}
}
