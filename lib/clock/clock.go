// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time source used for version timestamps.
// Production code injects Real(); tests inject a Fake with explicit
// time control so history assertions are deterministic.
//
// The vault only ever reads the current instant — it never sleeps,
// ticks, or schedules — so the interface is a single method.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the creation instant recorded on new versions.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by time.Now.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake is a Clock whose current time only moves when told to. Safe
// for concurrent use.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake pinned to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake's current time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set pins the fake's current time to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
