package reconciler

import "github.com/cbodonnell/fakegame/pkg/entitlements"

// Notifier receives the UI signals of the reconciler.
// Methods are called from the reconciler loop and must not block.
type Notifier interface {
	// NotifyBusy shows or hides the busy overlay around gateway calls.
	NotifyBusy(busy bool)
	// NotifyUpdate asks the UI to redraw with the current record.
	NotifyUpdate(data entitlements.GameData)
	// NotifyError surfaces a gateway failure to the player.
	NotifyError(err error)
	NotifyRestoreEmpty()
	NotifyRestoreDone()
}

// NopNotifier discards all signals.
type NopNotifier struct{}

func (NopNotifier) NotifyBusy(bool)                    {}
func (NopNotifier) NotifyUpdate(entitlements.GameData) {}
func (NopNotifier) NotifyError(error)                  {}
func (NopNotifier) NotifyRestoreEmpty()                {}
func (NopNotifier) NotifyRestoreDone()                 {}

// Notifiers fans every signal out to each notifier in order.
type Notifiers []Notifier

func (n Notifiers) NotifyBusy(busy bool) {
	for _, notifier := range n {
		notifier.NotifyBusy(busy)
	}
}

func (n Notifiers) NotifyUpdate(data entitlements.GameData) {
	for _, notifier := range n {
		notifier.NotifyUpdate(data)
	}
}

func (n Notifiers) NotifyError(err error) {
	for _, notifier := range n {
		notifier.NotifyError(err)
	}
}

func (n Notifiers) NotifyRestoreEmpty() {
	for _, notifier := range n {
		notifier.NotifyRestoreEmpty()
	}
}

func (n Notifiers) NotifyRestoreDone() {
	for _, notifier := range n {
		notifier.NotifyRestoreDone()
	}
}
