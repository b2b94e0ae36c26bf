package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goliatone/go-dosimetry/pkg/submit"
)

// Notifier prints submission outcomes to a terminal.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	theme Theme
}

var _ submit.Notifier = (*Notifier)(nil)

// NewNotifier writes to out, or stderr when out is nil.
func NewNotifier(out io.Writer, theme Theme) *Notifier {
	if out == nil {
		out = os.Stderr
	}
	return &Notifier{out: out, theme: theme}
}

func (n *Notifier) Notify(kind submit.Kind, title, message string) {
	prefix := n.theme.SuccessPrefix
	if kind == submit.KindError {
		prefix = n.theme.ErrorPrefix
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, join(prefix, title))
	if message != "" {
		fmt.Fprintln(n.out, "   "+message)
	}
}

func join(prefix, msg string) string {
	if prefix == "" {
		return msg
	}
	return prefix + " " + msg
}
