// Package playback contains the orchestrator that drives the host media
// slot: a controller ticked by the host, one handler per reported media
// status, and the selection policy for what plays next.
package playback

import (
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loophost/rotator/internal/overlay"
	"github.com/loophost/rotator/internal/sched"
	"github.com/loophost/rotator/internal/source"
	"github.com/loophost/rotator/internal/store"
)

// Options are the controller policy knobs.
type Options struct {
	RetryCap        int           // bounded retries before giving up
	GracePeriod     time.Duration // tolerated host lag after a start
	SeekJump        time.Duration // forward position jump treated as a seek
	ClearWindow     time.Duration // margin over the clear lead for (re)arming
	RestartDelay    time.Duration // settle time before a loop restart
	PauseWhenHidden bool          // stop Continuous mode when not visible
}

// DefaultOptions returns the recommended policy values.
func DefaultOptions() Options {
	return Options{
		RetryCap:     3,
		GracePeriod:  5 * time.Second,
		SeekJump:     5 * time.Second,
		ClearWindow:  5 * time.Second,
		RestartDelay: time.Second,
	}
}

// Snapshot is the persistable rotation state.
type Snapshot struct {
	Mode       Mode
	LoopItemID string
	Played     []string
}

// Persister saves rotation state across sessions. Implementations must not
// block the caller.
type Persister interface {
	SaveRotation(s Snapshot)
}

// Controller owns the orchestrator state. All methods must run on the
// single scheduler loop; nothing here takes a lock.
type Controller struct {
	opts    Options
	lib     *store.Library
	src     source.Interface
	titles  *overlay.Titles
	sched   sched.Scheduler
	rng     *rand.Rand
	persist Persister // optional
	log     *logrus.Entry
	now     func() time.Time

	mode            Mode
	isPlaying       bool
	currentID       string
	loopID          string
	firstItemPlayed bool
	lastPos         time.Duration
	retryCount      int
	manualStop      bool // we issued the last stop ourselves
	restartPending  bool // a loop restart is already scheduled
	restartTimer    sched.Handle
	clearScheduled  bool // overlay clear armed for this approach-to-end
	startedAt       time.Time

	visible    bool
	shutdown   bool
	reconciled bool // pre-existing host playback checked since sinks came up
	waitLogged bool // "waiting for library" emitted once
}

// New creates a controller. rng drives selection; pass a seeded source for
// deterministic tests. persist may be nil.
func New(lib *store.Library, src source.Interface, titles *overlay.Titles, s sched.Scheduler, rng *rand.Rand, opts Options, persist Persister) *Controller {
	return &Controller{
		opts:    opts,
		lib:     lib,
		src:     src,
		titles:  titles,
		sched:   s,
		rng:     rng,
		persist: persist,
		log:     logrus.WithField("component", "playback"),
		now:     time.Now,
		visible: true,
	}
}

// Mode returns the active playback mode.
func (c *Controller) Mode() Mode { return c.mode }

// IsPlaying returns the controller's belief about whether the host is
// actively playing.
func (c *Controller) IsPlaying() bool { return c.isPlaying }

// CurrentItemID returns the id believed to be playing, "" if none.
func (c *Controller) CurrentItemID() string { return c.currentID }

// LoopItemID returns the pinned loop item, "" if none.
func (c *Controller) LoopItemID() string { return c.loopID }

// SetVisible records the host's scene-visibility signal.
func (c *Controller) SetVisible(v bool) { c.visible = v }

// Shutdown flags the controller for an orderly stop on the next tick.
func (c *Controller) Shutdown() { c.shutdown = true }

// Restore applies a persisted snapshot before the first tick.
func (c *Controller) Restore(s Snapshot) {
	c.mode = s.Mode
	c.loopID = s.LoopItemID
	c.lib.SetPlayed(s.Played)
}

// SetMode switches the playback mode. Mode-entry side effects apply at the
// moment of the change, not on the next tick.
func (c *Controller) SetMode(m Mode) {
	if m == c.mode {
		return
	}
	prev := c.mode
	c.mode = m
	c.log.WithFields(logrus.Fields{"from": prev, "to": m}).Info("mode change")

	switch prev {
	case Loop:
		c.loopID = ""
		sched.Stop(c.restartTimer)
		c.restartTimer = nil
		c.restartPending = false
	case Single:
		c.firstItemPlayed = false
	}

	switch m {
	case Single:
		if c.isPlaying {
			// The running item counts as the one allowed item.
			c.firstItemPlayed = true
		}
	case Loop:
		if c.isPlaying {
			id := c.currentID
			if id == "" {
				id = c.identifyCurrent()
			}
			if id != "" {
				c.loopID = id
			}
		}
	}
	c.save()
}

// Tick is the single entry point, invoked by the host on a fixed interval.
// Errors and panics inside a tick degrade to a no-op for that tick.
func (c *Controller) Tick() {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"panic":  r,
				"mode":   c.mode,
				"item":   c.currentID,
				"status": c.src.Status(),
			}).Error("tick recovered")
		}
	}()

	if c.shutdown {
		if c.isPlaying {
			c.fullStop()
		}
		return
	}

	if !c.src.Available() || !c.titles.Available() {
		// Sinks gone: re-check next tick, and reconcile again once they
		// come back.
		c.reconciled = false
		return
	}

	if !c.visible && c.stopWhenHidden() {
		if c.isPlaying {
			c.fullStop()
		}
		if c.mode == Loop {
			c.loopID = ""
			c.firstItemPlayed = false
		}
		return
	}

	if c.lib.IsEmpty() {
		if !c.waitLogged {
			c.log.Info("library empty, waiting for items")
			c.waitLogged = true
		}
		return
	}
	c.waitLogged = false

	if !c.reconciled {
		c.reconciled = true
		if c.reconcile() {
			return
		}
	}

	if c.visible && !c.isPlaying && !(c.mode == Single && c.firstItemPlayed) {
		// Host status lags true state near boundaries: start regardless
		// of the raw status value.
		c.startNext()
		return
	}

	switch c.src.Status() {
	case source.StatusPlaying:
		c.handlePlaying()
	case source.StatusEnded:
		c.handleEnded()
	case source.StatusStopped:
		c.handleStopped()
	case source.StatusNone:
		c.handleNone()
	}
}

// stopWhenHidden reports whether losing visibility stops playback under the
// current mode. Continuous keeps playing (background-audio behavior) unless
// configured otherwise.
func (c *Controller) stopWhenHidden() bool {
	if c.mode == Continuous {
		return c.opts.PauseWhenHidden
	}
	return true
}

// reconcile adopts a playback the host was already running before we came
// up (e.g. left over from a previous session). Returns true if the tick is
// consumed.
func (c *Controller) reconcile() bool {
	if c.src.Status() != source.StatusPlaying || c.isPlaying {
		return false
	}
	if c.src.Duration() <= 0 {
		// No duration: nothing usable is loaded, request a fresh start.
		c.log.Debug("reconcile: host playing without duration, restarting")
		return false
	}
	c.isPlaying = true
	c.startedAt = c.now()
	c.lastPos = c.src.Position()
	c.clearScheduled = false
	if item, ok := c.lib.ByPath(c.src.ActiveLocalPath()); ok {
		c.currentID = item.ID
		c.lib.SetCurrent(item.ID)
	}
	c.log.WithFields(logrus.Fields{"item": c.currentID}).Info("adopted pre-existing playback")
	c.handlePlaying()
	return true
}

// startNext picks and starts the next item. Items whose local file vanished
// are dropped and selection re-runs, bounded by the library size.
func (c *Controller) startNext() {
	if c.mode == Single && c.firstItemPlayed {
		return
	}
	for attempts := c.lib.Len(); attempts > 0; attempts-- {
		id, ok := Next(c.rng, c.lib, c.mode, c.loopID)
		if !ok {
			return
		}
		if c.mode == Loop && c.loopID == "" {
			c.loopID = id
		}
		if !c.lib.ContainsValidFile(id) {
			c.log.WithFields(logrus.Fields{"item": id, "mode": c.mode}).Warn("item file missing, skipping")
			if c.loopID == id {
				c.loopID = ""
			}
			c.lib.Remove(id)
			continue
		}
		c.startItem(id, false)
		return
	}
}

// startItem loads id into the media slot and begins the overlay sequence.
func (c *Controller) startItem(id string, forceReload bool) {
	item, ok := c.lib.Get(id)
	if !ok {
		return
	}

	if !c.src.SetLocalFile(item.Path, forceReload) {
		c.retryCount++
		// A failed load from the loop-restart path must not leave the
		// pending flag set, or the next Ended tick would never reschedule.
		c.restartPending = false
		c.log.WithFields(logrus.Fields{
			"item":  id,
			"mode":  c.mode,
			"retry": c.retryCount,
		}).Warn("media load failed")
		if c.retryCount > c.opts.RetryCap {
			c.fullStop()
		}
		return
	}

	c.retryCount = 0
	c.manualStop = false
	c.isPlaying = true
	c.currentID = id
	c.lib.SetCurrent(id)
	c.startedAt = c.now()
	c.lastPos = 0
	c.clearScheduled = false
	c.restartPending = false
	if c.mode == Single {
		c.firstItemPlayed = true
	}

	c.titles.Begin(overlay.Title{
		Title:    item.Title,
		Artist:   item.Artist,
		Degraded: item.MetadataDegraded,
	}, c.remaining)

	c.log.WithFields(logrus.Fields{"item": id, "mode": c.mode, "path": item.Path}).Info("playback started")
	c.save()
}

// remaining reports time left in the current item, false while the host
// has no duration yet.
func (c *Controller) remaining() (time.Duration, bool) {
	d := c.src.Duration()
	if d <= 0 {
		return 0, false
	}
	rem := d - c.src.Position()
	if rem < 0 {
		rem = 0
	}
	return rem, true
}

// fullStop stops the media slot, clears the overlay and cancels every
// pending callback. The manual-stop flag marks the stop as ours.
func (c *Controller) fullStop() {
	c.src.StopAndClear()
	c.titles.Reset()
	sched.Stop(c.restartTimer)
	c.restartTimer = nil
	c.restartPending = false
	c.clearScheduled = false
	c.retryCount = 0
	c.manualStop = true
	c.isPlaying = false
	c.currentID = ""
	c.lib.SetCurrent("")
	c.log.WithField("mode", c.mode).Info("playback stopped")
}

// identifyCurrent resolves the playing item from the adapter's active path.
func (c *Controller) identifyCurrent() string {
	if item, ok := c.lib.ByPath(c.src.ActiveLocalPath()); ok {
		return item.ID
	}
	return ""
}

func (c *Controller) save() {
	if c.persist == nil {
		return
	}
	played := c.lib.Played()
	ids := make([]string, 0, len(played))
	for id := range played {
		ids = append(ids, id)
	}
	c.persist.SaveRotation(Snapshot{Mode: c.mode, LoopItemID: c.loopID, Played: ids})
}
