package compare

// Status captures the progress state of one dataset.
type Status string

const (
	// StatusQueued indicates the dataset is waiting to be loaded.
	StatusQueued Status = "queued"
	// StatusWorking indicates the dataset reports are being loaded.
	StatusWorking Status = "working"
	// StatusDone indicates the dataset was compared.
	StatusDone Status = "done"
	// StatusError indicates the dataset reports could not be read.
	StatusError Status = "error"
)

// Event reports progress for a dataset.
type Event struct {
	Dataset string
	Status  Status
	Err     error
}

// ProgressSink consumes progress events. OnEvent may be called concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
