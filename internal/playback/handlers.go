package playback

import (
	"github.com/sirupsen/logrus"

	"github.com/loophost/rotator/internal/source"
)

// One handler per host-reported media status. The handlers encode the
// status x mode transition table; seek detection and manual-stop detection
// are the named guards on the Playing/Stopped transitions.

// handlePlaying syncs belief with the host, detects seeks, and arms the
// overlay clear as the item approaches its end.
func (c *Controller) handlePlaying() {
	c.manualStop = false
	c.restartPending = false

	if !c.isPlaying {
		// Host is ahead of us: adopt its state.
		c.isPlaying = true
		c.startedAt = c.now()
		if c.currentID == "" {
			c.currentID = c.identifyCurrent()
			c.lib.SetCurrent(c.currentID)
		}
		if c.mode == Loop && c.loopID == "" && c.currentID != "" {
			c.loopID = c.currentID
		}
		return
	}

	pos := c.src.Position()
	if pos > c.lastPos+c.opts.SeekJump {
		// Forward seek: the armed clear time is stale, allow re-arming.
		c.log.WithFields(logrus.Fields{"item": c.currentID, "pos": pos}).Debug("seek detected")
		c.titles.CancelClear()
		c.clearScheduled = false
	}
	c.lastPos = pos

	rem, ok := c.remaining()
	if !ok {
		return
	}
	if rem < c.titles.Lead()+c.opts.ClearWindow && !c.clearScheduled {
		c.titles.ScheduleClear(rem)
		c.clearScheduled = true
	}
}

// handleEnded decides what follows a finished item under the current mode.
func (c *Controller) handleEnded() {
	c.lastPos = 0

	if c.mode == Loop {
		if c.restartPending {
			// Repeated Ended reports for the same finish.
			return
		}
		id := c.currentID
		if id == "" {
			id = c.identifyCurrent()
		}
		if c.loopID == "" && id != "" {
			c.loopID = id
		}
		if c.loopID == "" {
			return
		}
		c.restartPending = true
		loopID := c.loopID
		c.restartTimer = c.sched.After(c.opts.RestartDelay, func() {
			c.restartTimer = nil
			if !c.restartPending || c.mode != Loop {
				return
			}
			if _, ok := c.lib.Get(loopID); !ok {
				c.restartPending = false
				c.loopID = ""
				return
			}
			// Same path reload must detach and reattach.
			c.startItem(loopID, true)
		})
		c.log.WithField("item", loopID).Debug("loop restart scheduled")
		return
	}

	if c.mode == Single && c.firstItemPlayed {
		c.fullStop()
		return
	}

	c.startNext()
}

// handleStopped distinguishes a user stop from our own, and retries a
// bounded number of times when our own stop sticks.
func (c *Controller) handleStopped() {
	if c.isPlaying && !c.manualStop {
		// First Stopped observation we did not cause: treat as
		// user-initiated and stand down.
		c.log.WithFields(logrus.Fields{"item": c.currentID, "mode": c.mode}).Info("external stop detected")
		if c.mode == Loop {
			c.loopID = ""
		}
		c.fullStop()
		return
	}

	if c.manualStop {
		c.retryCount++
		if c.retryCount > c.opts.RetryCap {
			c.log.WithField("retries", c.retryCount).Warn("stuck in stopped state, giving up")
			c.fullStop()
			return
		}
		c.startNext()
	}
}

// handleNone starts playback when idle, and resolves the desync where the
// host reports no media while we believe we are playing.
func (c *Controller) handleNone() {
	if c.visible && !c.isPlaying && !c.lib.IsEmpty() {
		if c.mode == Single && c.firstItemPlayed {
			return
		}
		if c.mode == Loop {
			// Fresh start in loop mode picks a fresh random item.
			c.loopID = ""
		}
		c.startNext()
		return
	}

	if c.isPlaying {
		if c.now().Sub(c.startedAt) <= c.opts.GracePeriod {
			// Loading lag: the host needs a moment after a start.
			return
		}
		c.log.WithFields(logrus.Fields{
			"item":   c.currentID,
			"status": source.StatusNone,
		}).Warn("host lost media, resetting state")
		c.isPlaying = false
		c.currentID = ""
		c.lib.SetCurrent("")
	}
}
