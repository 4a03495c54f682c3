package therapist

// NotificationKind classifies a user-facing message
type NotificationKind string

const (
	NotifyError   NotificationKind = "error"
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
)

// Notifier surfaces messages to the user
type Notifier interface {
	Notify(message string, kind NotificationKind)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string, kind NotificationKind)

// Notify calls f
func (f NotifierFunc) Notify(message string, kind NotificationKind) {
	f(message, kind)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, NotificationKind) {}
