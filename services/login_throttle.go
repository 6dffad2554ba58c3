package services

import (
	"math"
	"sync"
	"time"
)

const ThrottleCooldownCapSeconds = 30

// LoginThrottle slows down repeated failed sign-ins from one chat. After the
// n-th consecutive failure the chat waits min(30, 2^n) seconds.
type LoginThrottle struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[int64]*throttleEntry
}

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

func NewLoginThrottle(now func() time.Time) *LoginThrottle {
	if now == nil {
		now = time.Now
	}
	return &LoginThrottle{now: now, entries: make(map[int64]*throttleEntry)}
}

// WaitSeconds returns how many seconds the chat must wait before trying again (0 if no cooldown).
func (l *LoginThrottle) WaitSeconds(chatID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[chatID]
	if e == nil {
		return 0
	}
	now := l.now()
	if now.Before(e.cooldownUntil) {
		return int(math.Ceil(e.cooldownUntil.Sub(now).Seconds()))
	}
	return 0
}

// RecordFailure increments the fail count and starts the next cooldown.
func (l *LoginThrottle) RecordFailure(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[chatID]
	if e == nil {
		e = &throttleEntry{}
		l.entries[chatID] = e
	}
	e.failCount++
	e.cooldownUntil = l.now().Add(time.Duration(CooldownSecondsForFailCount(e.failCount)) * time.Second)
}

// RecordSuccess forgets the chat's failures.
func (l *LoginThrottle) RecordSuccess(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, chatID)
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return s
}
