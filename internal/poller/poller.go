// Turn an asynchronous submission job into a bounded sequence of progress
// snapshots for callers that cannot hold a persistent connection.

package poller

import (
	"context"
	"sync"
	"time"

	"go-applypilot-automation/internal/metrics"
	"go-applypilot-automation/internal/models"
)

// Phase is the polling cadence, derived purely from the cumulative poll
// count. There is no separately mutated phase flag to race against the
// interval scheduling.
type Phase string

const (
	PhaseFast   Phase = "fast"   //polls 1-10
	PhaseSlow   Phase = "slow"   //polls 11-20
	PhaseManual Phase = "manual" //polls beyond 20: no automatic scheduling
)

const (
	fastInterval = 2 * time.Second
	slowInterval = 5 * time.Second

	fastPollLimit = 10
	slowPollLimit = 20

	//consecutive not_found responses before the job is declared gone
	maxConsecutiveMisses = 3
)

// PhaseFor is the immutable phase transition table.
func PhaseFor(pollCount int) Phase {
	switch {
	case pollCount <= fastPollLimit:
		return PhaseFast
	case pollCount <= slowPollLimit:
		return PhaseSlow
	default:
		return PhaseManual
	}
}

// IntervalFor returns the delay before the given poll number, 0 when
// automatic polling must stop.
func IntervalFor(pollCount int) time.Duration {
	switch PhaseFor(pollCount) {
	case PhaseFast:
		return fastInterval
	case PhaseSlow:
		return slowInterval
	default:
		return 0
	}
}

// StatusFunc queries the status contract for one application id.
type StatusFunc func(ctx context.Context, applicationID string) (models.StatusResponse, error)

// Callbacks receive poll outcomes. None of them fires after Stop returns.
type Callbacks struct {
	//OnProgress fires for every pending/processing snapshot
	OnProgress func(models.StatusResponse)
	//OnComplete fires once for a completed job, then polling stops
	OnComplete func(models.StatusResponse)
	//OnFailed fires once for a failed job, then polling stops
	OnFailed func(models.StatusResponse)
	//OnNotFound fires once when the job record is declared unreachable,
	//a terminal state distinct from failed
	OnNotFound func()
	//OnManualRequired fires once when automatic polling hands over to
	//explicit Refresh calls
	OnManualRequired func()
}

// Poller drives the adaptive polling loop for one application.
type Poller struct {
	applicationID string
	fetch         StatusFunc
	cb            Callbacks

	ctx    context.Context
	cancel context.CancelFunc

	dispatching sync.WaitGroup //polls that may still invoke callbacks

	mu        sync.Mutex
	timer     *time.Timer
	pollCount int
	misses    int
	started   time.Time
	stopped   bool
	inFlight  bool
	notified  bool //OnManualRequired already delivered
}

func New(applicationID string, fetch StatusFunc, cb Callbacks) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		applicationID: applicationID,
		fetch:         fetch,
		cb:            cb,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start fires the first poll immediately and schedules from there.
func (p *Poller) Start() {
	go p.poll()
}

// Refresh requests one explicit poll. Meant for the manual phase, harmless
// in any other: an automatic poll already in flight wins.
func (p *Poller) Refresh() {
	p.mu.Lock()
	if p.stopped || p.inFlight {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	go p.poll()
}

// Stop cancels the in-flight request, clears the timer and waits for any
// dispatch already past the stopped check. Once Stop returns no further
// callbacks fire. Must not be called from inside a callback.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.cancel()
	p.dispatching.Wait()
}

// Elapsed is wall-clock processing time, tracked independently of poll
// count for "processing for Ns" display.
func (p *Poller) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.IsZero() {
		return 0
	}
	return time.Since(p.started)
}

// Phase reports the cadence governing the next poll, so it reads manual as
// soon as automatic scheduling has handed over.
func (p *Poller) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PhaseFor(p.pollCount + 1)
}

// PollCount reports how many polls have run.
func (p *Poller) PollCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pollCount
}

func (p *Poller) poll() {
	p.mu.Lock()
	if p.stopped || p.inFlight {
		p.mu.Unlock()
		return
	}
	if p.started.IsZero() {
		p.started = time.Now()
	}
	p.pollCount++
	count := p.pollCount
	p.inFlight = true
	p.dispatching.Add(1)
	p.mu.Unlock()
	defer p.dispatching.Done()

	metrics.PollsTotal.WithLabelValues(string(PhaseFor(count))).Inc()

	resp, err := p.fetch(p.ctx, p.applicationID)

	p.mu.Lock()
	p.inFlight = false
	if p.stopped {
		p.mu.Unlock()
		return
	}

	if err != nil {
		//cancellation lands here too; treat transport errors like a miss
		if p.ctx.Err() != nil {
			p.mu.Unlock()
			return
		}
		resp = models.StatusResponse{Status: models.StatusNotFound, ErrorMessage: err.Error()}
	}

	switch resp.Status {
	case models.StatusNotFound:
		p.misses++
		//three consecutive misses, or any miss once automatic polling is
		//over, means the record itself is unreachable
		if p.misses >= maxConsecutiveMisses || PhaseFor(count) == PhaseManual {
			p.stopLocked()
			p.mu.Unlock()
			p.fire(p.cb.OnNotFound)
			return
		}
		p.scheduleLocked(count + 1)
		p.mu.Unlock()
		return

	case models.StatusCompleted:
		p.stopLocked()
		p.mu.Unlock()
		if p.cb.OnComplete != nil {
			p.cb.OnComplete(resp)
		}
		return

	case models.StatusFailed:
		p.stopLocked()
		p.mu.Unlock()
		if p.cb.OnFailed != nil {
			p.cb.OnFailed(resp)
		}
		return
	}

	p.misses = 0
	manual := PhaseFor(count+1) == PhaseManual
	notify := manual && !p.notified
	if notify {
		p.notified = true
	}
	if !manual {
		p.scheduleLocked(count + 1)
	}
	p.mu.Unlock()

	if p.cb.OnProgress != nil {
		p.cb.OnProgress(resp)
	}
	if notify {
		p.fire(p.cb.OnManualRequired)
	}
}

// scheduleLocked arms the timer for the next poll. Caller holds the lock.
func (p *Poller) scheduleLocked(nextPoll int) {
	interval := IntervalFor(nextPoll)
	if interval == 0 {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(interval, p.poll)
}

// stopLocked mirrors Stop for terminal transitions discovered inside a
// poll. Caller holds the lock.
func (p *Poller) stopLocked() {
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Poller) fire(fn func()) {
	if fn != nil {
		fn()
	}
}
