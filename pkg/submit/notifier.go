package submit

// Kind is the severity of a user notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier surfaces submission outcomes to the user.
type Notifier interface {
	Notify(kind Kind, title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind Kind, title, message string)

func (f NotifierFunc) Notify(kind Kind, title, message string) {
	f(kind, title, message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Kind, string, string) {}
