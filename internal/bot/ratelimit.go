package bot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterSweepInterval = time.Minute

type chatEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// chatLimiter throttles updates per chat. Chats idle for longer than
// expiry are dropped by sweep; their bucket would be full again anyway.
type chatLimiter struct {
	mu     sync.Mutex
	every  rate.Limit
	burst  int
	expiry time.Duration
	chats  map[int64]*chatEntry
	now    func() time.Time
}

func newChatLimiter(interval time.Duration, burst int) *chatLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &chatLimiter{
		every:  limit,
		burst:  burst,
		expiry: max(interval*time.Duration(burst)*3, time.Minute),
		chats:  make(map[int64]*chatEntry),
		now:    time.Now,
	}
}

func (l *chatLimiter) allow(chatID int64) bool {
	l.mu.Lock()
	e, ok := l.chats[chatID]
	if !ok {
		e = &chatEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.chats[chatID] = e
	}
	e.lastSeen = l.now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// sweep drops idle chats and returns how many remain.
func (l *chatLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, e := range l.chats {
		if now.Sub(e.lastSeen) > l.expiry {
			delete(l.chats, id)
		}
	}
	return len(l.chats)
}

// run sweeps every interval until ctx is done.
func (l *chatLimiter) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}
