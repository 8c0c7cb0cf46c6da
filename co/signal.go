// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides a channel to wait on.
// A true value is a Signal, a closed channel is a Broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal is a channel based condition variable, usable in select statements.
// The zero value is ready to use.
type Signal struct {
	mu sync.Mutex
	ch chan bool
}

func (s *Signal) chanLocked() chan bool {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
	return s.ch
}

// Signal wakes at most one waiter. The wakeup is kept if nobody is waiting yet.
func (s *Signal) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.chanLocked() <- true:
	default:
	}
}

// Broadcast wakes every waiter currently holding the channel.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.chanLocked())
	s.ch = make(chan bool, 1)
}

// NewWaiter returns a Waiter. Each call to C hands out the channel observed
// at the previous call, so a broadcast between two waits is never missed.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	ref := s.chanLocked()
	s.mu.Unlock()

	return waiterFunc(func() <-chan bool {
		ch := ref

		s.mu.Lock()
		ref = s.chanLocked()
		s.mu.Unlock()

		return ch
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool {
	return w()
}
