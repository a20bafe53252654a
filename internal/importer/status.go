package importer

import "sync"

const EventStatus = "import:status"

const EventNotification = "import:notification"

const (
	PhaseReading = "Reading metadata"
	PhaseWriting = "Writing to library"
	PhaseAlbums  = "Processing albums"
)

type Emitter func(eventName string, payload any)

// Status is the process-wide import state read by observers. The zero value
// is the idle variant.
type Status struct {
	IsImporting      bool   `json:"isImporting"`
	BackgroundImport bool   `json:"backgroundImport"`
	Percent          int    `json:"percent"`
	Status           string `json:"status"`
	CurrentFolder    string `json:"currentFolder"`
	TotalTracks      int    `json:"totalTracks"`
	ImportedTracks   int    `json:"importedTracks"`
}

// Notification is a transient observer-facing message. A nil payload on the
// notification event clears the current message. TimeoutMS of zero means the
// message stays until replaced or cleared.
type Notification struct {
	Text      string `json:"text"`
	TimeoutMS int    `json:"timeout,omitempty"`
}

// Tracker owns the import status. Single instance per process, mutated only
// through its methods; every mutation publishes a fresh snapshot through the
// emitter.
type Tracker struct {
	mu     sync.Mutex
	status Status
	emit   Emitter
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) SetEmitter(emitter Emitter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit = emitter
}

// Snapshot returns the current status; safe to call at any time.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// StartRun resets to the importing variant for a fresh run.
func (t *Tracker) StartRun(currentFolder string, background bool) {
	t.update(func(status *Status) {
		*status = Status{
			IsImporting:      true,
			BackgroundImport: background,
			Status:           PhaseReading,
			CurrentFolder:    currentFolder,
		}
	})
}

func (t *Tracker) SetPhase(phase string) {
	t.update(func(status *Status) {
		status.Status = phase
	})
}

func (t *Tracker) SetPercent(percent int) {
	t.update(func(status *Status) {
		// Progress only moves forward within a run.
		if percent > status.Percent {
			status.Percent = percent
		}
	})
}

func (t *Tracker) AddTotal(count int) {
	t.update(func(status *Status) {
		status.TotalTracks += count
	})
}

func (t *Tracker) AddImported(count int) {
	t.update(func(status *Status) {
		status.ImportedTracks += count
	})
}

// FinishRun publishes the terminal 100% state of a run, then resets to idle.
func (t *Tracker) FinishRun() {
	t.update(func(status *Status) {
		status.IsImporting = false
		status.BackgroundImport = false
		status.Percent = 100
		status.Status = PhaseAlbums
	})
	t.Reset()
}

// Reset returns the tracker to the idle variant.
func (t *Tracker) Reset() {
	t.update(func(status *Status) {
		*status = Status{}
	})
}

func (t *Tracker) update(mutate func(*Status)) {
	t.mu.Lock()
	mutate(&t.status)
	snapshot := t.status
	emitter := t.emit
	t.mu.Unlock()

	if emitter != nil {
		emitter(EventStatus, snapshot)
	}
}

// Notify publishes a transient notification to observers.
func (t *Tracker) Notify(text string, timeoutMS int) {
	t.mu.Lock()
	emitter := t.emit
	t.mu.Unlock()

	if emitter != nil {
		emitter(EventNotification, Notification{Text: text, TimeoutMS: timeoutMS})
	}
}

// ClearNotification dismisses the current notification.
func (t *Tracker) ClearNotification() {
	t.mu.Lock()
	emitter := t.emit
	t.mu.Unlock()

	if emitter != nil {
		emitter(EventNotification, nil)
	}
}
