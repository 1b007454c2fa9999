package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userLocks serialises work per user. Entries are removed once nobody holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*userLock
}

type userLock struct {
	ch   chan struct{}
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[primitive.ObjectID]*userLock)}
}

func (l *userLocks) acquire(ctx context.Context, userID primitive.ObjectID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{ch: make(chan struct{}, 1)}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
		return func() {
			<-lock.ch
			l.unref(userID, lock)
		}, nil
	case <-ctx.Done():
		l.unref(userID, lock)
		return nil, ctx.Err()
	}
}

func (l *userLocks) unref(userID primitive.ObjectID, lock *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, userID)
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
