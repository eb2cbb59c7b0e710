package dashboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"pulse-service/internal/protocol"
	"pulse-service/internal/schedule"
)

// Snapshot is one derived dashboard frame: the resolved slot, both raw
// activity labels and the coordination state at a single instant.
type Snapshot struct {
	At         time.Time                  `json:"at"`
	Day        string                     `json:"day"`
	HasSlot    bool                       `json:"has_slot"`
	SlotStart  string                     `json:"slot_start,omitempty"`
	SlotEnd    string                     `json:"slot_end,omitempty"`
	SlotTag    string                     `json:"slot_tag,omitempty"`
	Activities [2]string                  `json:"activities"`
	State      protocol.CoordinationState `json:"state"`
}

// Renderer receives every published snapshot. Implementations must not block;
// the poller calls them on its own goroutine between ticks.
type Renderer interface {
	Render(Snapshot)
}

type Poller struct {
	log        *slog.Logger
	week       *schedule.Weekly
	classifier *protocol.Classifier
	interval   time.Duration
	now        func() time.Time
	renderer   Renderer
	latest     atomic.Pointer[Snapshot]
}

// New builds a poller. now may be nil, in which case time.Now is used;
// renderer may be nil when only Latest is consumed.
func New(log *slog.Logger, week *schedule.Weekly, classifier *protocol.Classifier, interval time.Duration, now func() time.Time, renderer Renderer) *Poller {
	if now == nil {
		now = time.Now
	}

	return &Poller{
		log:        log,
		week:       week,
		classifier: classifier,
		interval:   interval,
		now:        now,
		renderer:   renderer,
	}
}

// Compute derives the snapshot for an instant. Pure function of the instant
// and the immutable schedule table.
func (p *Poller) Compute(at time.Time) Snapshot {
	snap := Snapshot{
		At:  at,
		Day: at.Weekday().String(),
	}

	slot, ok := p.week.Resolve(at.Weekday(), schedule.ClockOf(at))
	if !ok {
		snap.Activities = [2]string{"FREE", "FREE"}
		snap.State = p.classifier.ClassifyNoSlot()
		return snap
	}

	snap.HasSlot = true
	snap.SlotStart = slot.Start.String()
	snap.SlotEnd = slot.End.String()
	snap.SlotTag = slot.Tag
	snap.Activities = [2]string{slot.A, slot.B}
	snap.State = p.classifier.Classify(slot.A, slot.B)

	return snap
}

// Latest returns the most recently published snapshot, computing one on
// demand before the first tick.
func (p *Poller) Latest() Snapshot {
	if snap := p.latest.Load(); snap != nil {
		return *snap
	}

	return p.Compute(p.now())
}

// Run recomputes and publishes a snapshot every interval until ctx is
// cancelled. The ticker is stopped on exit; nothing leaks.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("Dashboard poller started", slog.String("interval", p.interval.String()))

	p.publish(p.Compute(p.now()))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Dashboard poller stopped")
			return
		case <-ticker.C:
			p.publish(p.Compute(p.now()))
		}
	}
}

func (p *Poller) publish(snap Snapshot) {
	p.latest.Store(&snap)

	if p.renderer != nil {
		p.renderer.Render(snap)
	}
}
