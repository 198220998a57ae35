package kycflow

import (
	"context"
	"errors"
	"sync"

	"verifix/models"
)

var (
	// ErrStaleResponse means a newer upload started before this one settled; its
	// response was discarded.
	ErrStaleResponse = errors.New("kycflow: response superseded by a newer upload")
	ErrFlowClosed    = errors.New("kycflow: flow is closed")
)

type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
)

// Verifier is the relay call the flow drives; *Client implements it
type Verifier interface {
	Verify(ctx context.Context, up Upload) (models.VerificationResult, error)
}

// Event is one state transition of an upload cycle
type Event struct {
	Generation uint64
	State      State
	Err        error
}

// Display is what a dashboard shows for the latest verified document
type Display struct {
	DocumentType models.DocumentType
	FileName     string
	Result       models.VerificationResult
	Status       models.StatusInfo
}

// Flow drives document uploads: Idle, Uploading, then Verified or Failed,
// then back to Idle. Uploads are tagged with increasing generations and only
// the newest one may change the display state.
type Flow struct {
	verifier Verifier
	onEvent  func(Event)

	mu         sync.Mutex
	generation uint64
	inFlight   int
	state      State
	preview    *Preview
	display    *Display
	closed     bool
}

type FlowOption func(*Flow)

// WithEvents registers a hook called for every transition, outside the flow's lock
func WithEvents(fn func(Event)) FlowOption {
	return func(f *Flow) { f.onEvent = fn }
}

func NewFlow(verifier Verifier, opts ...FlowOption) *Flow {
	f := &Flow{verifier: verifier, state: StateIdle}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit selects up and uploads it. The preview is replaced before the relay
// is called. On failure the previous display state is kept.
func (f *Flow) Submit(ctx context.Context, up Upload, release func()) (Display, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Display{}, ErrFlowClosed
	}
	f.generation++
	gen := f.generation
	old := f.preview
	f.preview = NewPreview(up, release)
	f.inFlight++
	f.state = StateUploading
	f.mu.Unlock()

	old.Release()
	f.emit(Event{Generation: gen, State: StateUploading})

	result, err := f.verifier.Verify(ctx, up)

	f.mu.Lock()
	f.inFlight--
	stale := gen != f.generation
	var disp Display
	if !stale && err == nil {
		disp = Display{
			DocumentType: up.DeclaredType,
			FileName:     up.FileName,
			Result:       result,
			Status:       models.StatusForScore(result.FraudScore),
		}
		f.display = &disp
	}
	if f.inFlight == 0 {
		f.state = StateIdle
	}
	f.mu.Unlock()

	if stale {
		if err != nil {
			return Display{}, errors.Join(ErrStaleResponse, err)
		}
		return Display{}, ErrStaleResponse
	}
	if err != nil {
		f.emit(Event{Generation: gen, State: StateFailed, Err: err})
		f.emit(Event{Generation: gen, State: StateIdle})
		return Display{}, err
	}
	f.emit(Event{Generation: gen, State: StateVerified})
	f.emit(Event{Generation: gen, State: StateIdle})
	return disp, nil
}

// State is Uploading while any upload is in flight, Idle otherwise.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Display returns the latest verified result.
func (f *Flow) Display() (Display, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.display == nil {
		return Display{}, false
	}
	return *f.display, true
}

func (f *Flow) Preview() *Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// Close releases the current preview. Uploads still in flight settle as stale.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.generation++
	p := f.preview
	f.preview = nil
	f.mu.Unlock()

	p.Release()
}

func (f *Flow) emit(e Event) {
	if f.onEvent != nil {
		f.onEvent(e)
	}
}
