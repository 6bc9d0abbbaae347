// Copyright (c) 2024, The OpenThread Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package thread

import (
	"github.com/openthread/ot-link/config"
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/message"
	"github.com/openthread/ot-link/timer"
)

// ChildSupervisor ensures that every sleepy child receives at least one MAC
// frame within its supervision interval, sending an empty supervision
// message when no other downlink traffic did the job. FTD only.
type ChildSupervisor struct {
	mle        Mle
	childTable *ChildTable
	forwarder  *MeshForwarder
	pool       *message.Pool
	timer      *timer.Timer
}

func NewChildSupervisor(sched *timer.Scheduler, mle Mle, childTable *ChildTable,
	forwarder *MeshForwarder, pool *message.Pool) *ChildSupervisor {
	s := &ChildSupervisor{
		mle:        mle,
		childTable: childTable,
		forwarder:  forwarder,
		pool:       pool,
	}
	s.timer = sched.NewTimer(s.handleTimer)
	return s
}

// GetDestination returns the destination child of a supervision message,
// read back from the child index stored in the message.
func (s *ChildSupervisor) GetDestination(msg *message.Message) *Child {
	if msg.Type() != message.TypeSupervision {
		return nil
	}

	childIndex, ok := msg.ReadByte(0)
	if !ok {
		return nil
	}
	return s.childTable.GetChildAtIndex(childIndex)
}

// UpdateOnSend is invoked by any downlink emission path for the child.
func (s *ChildSupervisor) UpdateOnSend(child *Child) {
	child.ResetUnitsSinceLastSupervision()
}

// IsRunning reports whether the supervision timer is running.
func (s *ChildSupervisor) IsRunning() bool {
	return s.timer.IsRunning()
}

func (s *ChildSupervisor) sendMessage(child *Child) {
	if child.IndirectMessageCount() > 0 {
		// Any queued traffic to the child already satisfies liveness.
		return
	}

	msg, err := s.pool.Allocate(message.TypeSupervision)
	if err != nil {
		return // retried on the next tick
	}

	// A supervision message is an empty-payload 15.4 data frame. The child
	// index is stored in the message content so that the destination can be
	// retrieved later using GetDestination.
	msg.SetLinkSecurityEnabled(true)
	msg.AppendByte(s.childTable.GetChildIndex(child))
	s.forwarder.SendMessage(msg)

	logger.Infof("Sending supervision message to child 0x%04x", child.Rloc16())
}

func (s *ChildSupervisor) getInterval() uint32 {
	interval := uint32(1000)

	if s.mle.IsCslPeripheralPresent() {
		// A CSL central with a CSL peripheral child does not have any more
		// children, so the supervision interval is counted in units of
		// 100 ms instead of 1 s.
		interval = 100
	}

	return interval
}

func (s *ChildSupervisor) handleTimer() {
	for _, child := range s.childTable.Iterate(NeighborStateValid) {
		if child.IsRxOnWhenIdle() || child.SupervisionInterval() == 0 {
			continue
		}

		child.IncrementUnitsSinceLastSupervision()

		if child.UnitsSinceLastSupervision() >= child.SupervisionInterval() {
			s.sendMessage(child)
		}
	}

	s.timer.Start(s.getInterval())
}

// CheckState starts or stops supervision to match the current stack state.
// It is idempotent.
func (s *ChildSupervisor) CheckState() {
	// Child supervision runs iff Thread MLE operation is enabled and there is
	// at least one valid child in the child table.
	shouldRun := !s.mle.IsDisabled() && s.childTable.HasChildren(NeighborStateValid)

	if shouldRun && !s.timer.IsRunning() {
		s.timer.Start(s.getInterval())
		logger.Infof("Starting Child Supervision")
	}

	if !shouldRun && s.timer.IsRunning() {
		s.timer.Stop()
		logger.Infof("Stopping Child Supervision")
	}
}

func (s *ChildSupervisor) HandleNotifierEvents(events Events) {
	if events.ContainsAny(EventThreadRoleChanged | EventThreadChildAdded | EventThreadChildRemoved) {
		s.CheckState()
	}
}

// SupervisionListener is the child-side watchdog: it detects loss of contact
// with the parent and requests recovery.
type SupervisionListener struct {
	mle           Mle
	neighborTable NeighborTable
	forwarder     *MeshForwarder

	timeout     uint16 // seconds
	interval    uint16 // seconds
	worInterval uint16 // units of 100 ms, used while a CSL central is tracked
	worTimeout  uint16 // units of 100 ms, used while a CSL central is tracked
	counter     uint32
	timer       *timer.Timer
}

func NewSupervisionListener(sched *timer.Scheduler, mle Mle, neighborTable NeighborTable,
	forwarder *MeshForwarder, cfg config.Config) *SupervisionListener {
	l := &SupervisionListener{
		mle:           mle,
		neighborTable: neighborTable,
		forwarder:     forwarder,
		interval:      cfg.SupervisionIntervalSecs,
		worInterval:   cfg.WorInterval,
		worTimeout:    cfg.WorTimeout,
	}
	l.timer = sched.NewTimer(l.handleTimer)
	l.SetTimeout(cfg.SupervisionTimeoutSecs)
	return l
}

func (l *SupervisionListener) Start() {
	l.restartTimer()
}

func (l *SupervisionListener) Stop() {
	l.timer.Stop()
}

// SetInterval propagates a changed supervision interval to the parent via a
// Child Update Request.
func (l *SupervisionListener) SetInterval(interval uint16) {
	if l.interval == interval {
		return
	}

	logger.Infof("Interval: %d -> %d", l.interval, interval)
	l.interval = interval

	if l.mle.IsChild() {
		_ = l.mle.SendChildUpdateRequest()
	}
}

func (l *SupervisionListener) Interval() uint16 {
	return l.interval
}

func (l *SupervisionListener) SetTimeout(timeout uint16) {
	if l.timeout != timeout {
		logger.Infof("Timeout: %d -> %d", l.timeout, timeout)

		l.timeout = timeout
		l.restartTimer()
	}
}

func (l *SupervisionListener) Timeout() uint16 {
	return l.timeout
}

// Counter returns the number of supervision timeouts since start.
func (l *SupervisionListener) Counter() uint32 {
	return l.counter
}

func (l *SupervisionListener) ResetCounter() {
	l.counter = 0
}

// UpdateOnReceive restarts the watchdog when a secure frame from the current
// parent arrives while the listener is running.
func (l *SupervisionListener) UpdateOnReceive(sourceAddress mac.Address, isSecure bool) {
	if !l.timer.IsRunning() || !isSecure || !l.mle.IsChild() ||
		l.neighborTable.FindNeighbor(sourceAddress) != l.mle.Parent() {
		return
	}

	l.restartTimer()
}

// GetCurrentInterval returns the effective supervision interval: the WOR
// interval while a CSL central is tracked, else the configured interval.
func (l *SupervisionListener) GetCurrentInterval() uint16 {
	if l.mle.IsCslCentralPresent() {
		return l.worInterval
	}
	return l.interval
}

// GetCurrentTimeoutMs returns the effective watchdog timeout in milliseconds.
func (l *SupervisionListener) GetCurrentTimeoutMs() uint32 {
	if l.mle.IsCslCentralPresent() {
		return uint32(l.worTimeout) * 100
	}
	return uint32(l.timeout) * 1000
}

// IsRunning reports whether the watchdog timer is running.
func (l *SupervisionListener) IsRunning() bool {
	return l.timer.IsRunning()
}

func (l *SupervisionListener) restartTimer() {
	timeoutMs := l.GetCurrentTimeoutMs()

	if timeoutMs != 0 && !l.mle.IsDisabled() && !l.forwarder.GetRxOnWhenIdle() {
		l.timer.Start(timeoutMs)
	} else {
		l.timer.Stop()
	}
}

func (l *SupervisionListener) handleTimer() {
	if l.mle.IsChild() && !l.forwarder.GetRxOnWhenIdle() {
		logger.Warnf("Supervision timeout. No frame from parent in %d ms", l.GetCurrentTimeoutMs())
		l.counter++

		if l.mle.IsCslCentralPresent() {
			// When sync with the wake-up coordinator is lost, a Child Update
			// Request is unlikely to succeed. Tearing the connection down and
			// sniffing for wake-up frames again recovers the link faster.
			l.mle.BecomeDetached()
		} else {
			_ = l.mle.SendChildUpdateRequest()
		}
	}

	l.restartTimer()
}
