package delivery

import (
	"context"
	"time"

	"llmcord/internal/render"
)

// CancelledMessage is the text of the unit appended when a job is cancelled.
const CancelledMessage = "The generation was cancelled."

// Options configures an Outputter.
type Options struct {
	// UserID is the requesting user; only they may use the cancel control.
	UserID  string
	Prompts render.Prompts
	// ChunkSize bounds each unit's text; zero selects render.DefaultChunkSize.
	ChunkSize int
	// UpdateInterval throttles synchronization while tokens stream in: a pass
	// runs once more than the interval has elapsed, or on every fragment when zero.
	UpdateInterval time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Outputter renders one job's token stream and keeps the Sink's units in
// step with the rendered chunks.
type Outputter struct {
	sink   Sink
	userID string
	state  *render.State

	units    []UnitID
	contents []string
	// affordance is the index of the unit carrying the cancel control, or -1.
	affordance int
	errorUnit  UnitID
	// placeholder is set while the root unit still shows the struck prompt.
	placeholder bool
	started     bool
	terminal    bool

	interval   time.Duration
	lastUpdate time.Time
	now        func() time.Time
}

// New creates the job's root unit, showing the prompt struck through until
// output arrives. The root unit's id is the job id.
func New(ctx context.Context, sink Sink, opts Options) (*Outputter, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id, err := sink.CreateUnit(ctx, "~~"+opts.Prompts.Display()+"~~")
	if err != nil {
		return nil, transportErr("create unit", err)
	}
	return &Outputter{
		sink:        sink,
		userID:      opts.UserID,
		state:       render.NewState(opts.Prompts, opts.ChunkSize),
		units:       []UnitID{id},
		contents:    []string{"~~" + opts.Prompts.Display() + "~~"},
		affordance:  -1,
		placeholder: true,
		interval:    opts.UpdateInterval,
		lastUpdate:  now(),
		now:         now,
	}, nil
}

// JobID returns the id of the root unit.
func (o *Outputter) JobID() string { return string(o.units[0]) }

// Units returns the delivered units in order.
func (o *Outputter) Units() []UnitID { return append([]UnitID(nil), o.units...) }

// Contents returns the last text written to each unit.
func (o *Outputter) Contents() []string { return append([]string(nil), o.contents...) }

// AffordanceIndex returns the index of the unit carrying the cancel control, or -1.
func (o *Outputter) AffordanceIndex() int { return o.affordance }

// ErrorUnit returns the unit holding the error text after Error or Cancelled.
func (o *Outputter) ErrorUnit() UnitID { return o.errorUnit }

// State returns the render state.
func (o *Outputter) State() *render.State { return o.state }

// Terminal reports whether the job has finished, failed or been cancelled.
func (o *Outputter) Terminal() bool { return o.terminal }

// NewToken folds a fragment into the render state and synchronizes when the
// update interval has elapsed. Fragments after a terminal event are ignored.
func (o *Outputter) NewToken(ctx context.Context, fragment string) error {
	if o.terminal {
		return nil
	}
	if !o.started {
		// The cancel control appears with the first fragment.
		o.started = true
		if err := o.setAffordance(ctx, 0); err != nil {
			return err
		}
	}
	o.state.Push(fragment)

	if o.interval <= 0 || o.now().Sub(o.lastUpdate) > o.interval {
		if err := o.sync(ctx, true); err != nil {
			return err
		}
		o.lastUpdate = o.now()
	}
	return nil
}

// Sync performs one synchronization pass immediately.
func (o *Outputter) Sync(ctx context.Context) error {
	if o.terminal {
		return nil
	}
	return o.sync(ctx, true)
}

// Finish ends the job normally: the cancel control is removed and the final
// chunks are delivered.
func (o *Outputter) Finish(ctx context.Context) error {
	if o.terminal {
		return nil
	}
	o.terminate()
	if err := o.clearAffordances(ctx); err != nil {
		return err
	}
	return o.sync(ctx, false)
}

// Cancelled ends the job after a cancellation.
func (o *Outputter) Cancelled(ctx context.Context) error {
	return o.fail(ctx, CancelledMessage)
}

// Error ends the job with a backend failure message.
func (o *Outputter) Error(ctx context.Context, message string) error {
	return o.fail(ctx, message)
}

// fail withdraws everything delivered so far and appends message as a new unit.
func (o *Outputter) fail(ctx context.Context, message string) error {
	if o.terminal {
		return nil
	}
	o.terminate()
	if err := o.clearAffordances(ctx); err != nil {
		return err
	}
	if err := o.sync(ctx, false); err != nil {
		return err
	}
	for i := range o.units {
		if i == 0 && o.placeholder {
			continue
		}
		if err := o.edit(ctx, i, "~~"+o.contents[i]+"~~"); err != nil {
			return err
		}
	}
	id, err := o.sink.ReplyAsNewUnit(ctx, o.units[len(o.units)-1], message)
	if err != nil {
		return transportErr("reply", err)
	}
	o.errorUnit = id
	return nil
}

func (o *Outputter) terminate() {
	o.terminal = true
	o.state.Terminate()
}

// sync reconciles units with chunks. The last existing unit receives the
// freshest text for its index; chunks beyond the unit count become new units
// anchored to the root unit, and the cancel control moves to the newest one
// when attach is set.
func (o *Outputter) sync(ctx context.Context, attach bool) error {
	chunks := o.state.Chunks()
	if len(chunks) > 0 {
		i := min(len(o.units), len(chunks)) - 1
		if err := o.edit(ctx, i, chunks[i]); err != nil {
			return err
		}
	}
	if len(chunks) <= len(o.units) {
		return nil
	}

	if err := o.clearAffordances(ctx); err != nil {
		return err
	}
	root := o.units[0]
	for _, chunk := range chunks[len(o.units):] {
		id, err := o.sink.ReplyAsNewUnit(ctx, root, chunk)
		if err != nil {
			return transportErr("reply", err)
		}
		o.units = append(o.units, id)
		o.contents = append(o.contents, chunk)
	}
	if attach {
		return o.setAffordance(ctx, len(o.units)-1)
	}
	return nil
}

// edit overwrites unit i, skipping the call when the text is unchanged.
func (o *Outputter) edit(ctx context.Context, i int, text string) error {
	if o.contents[i] == text {
		return nil
	}
	if err := o.sink.EditUnit(ctx, o.units[i], text); err != nil {
		return transportErr("edit unit", err)
	}
	o.contents[i] = text
	if i == 0 {
		o.placeholder = false
	}
	return nil
}

func (o *Outputter) setAffordance(ctx context.Context, i int) error {
	a := CancelAffordance{JobID: o.JobID(), UserID: o.userID}
	if err := o.sink.SetCancelAffordance(ctx, o.units[i], a); err != nil {
		return transportErr("set cancel", err)
	}
	o.affordance = i
	return nil
}

// clearAffordances removes the cancel control from every unit.
func (o *Outputter) clearAffordances(ctx context.Context) error {
	for _, id := range o.units {
		if err := o.sink.ClearCancelAffordance(ctx, id); err != nil {
			return transportErr("clear cancel", err)
		}
	}
	o.affordance = -1
	return nil
}
