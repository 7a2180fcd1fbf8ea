package escswitch

// Notifier is a StateObserver that coalesces notifications into a channel
// with room for one pending change.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

func (n *Notifier) OnStateChanged() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *Notifier) C() <-chan struct{} {
	return n.ch
}
