package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing fires until
// Advance or RunAll is called; callbacks run on the caller's goroutine.
type Manual struct {
	mutex  sync.Mutex
	now    time.Duration
	queue  TimerQueue
	nextId int64
	epoch  time.Time

	// KeepGroups makes RemoveGroup a no-op so that stale callbacks still fire.
	KeepGroups bool
}

var _ Scheduler = (*Manual)(nil)

func NewManual() *Manual {
	return &Manual{nextId: 1, epoch: time.Unix(0, 0)}
}

func (m *Manual) AddTimer(group uint64, delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if delay < 0 {
		delay = 0
	}
	task := &TimerTask{
		Id:       m.nextId,
		Group:    group,
		Execute:  m.epoch.Add(m.now + delay),
		Callback: callback,
	}
	m.nextId++
	heap.Push(&m.queue, task)
	return task.Id
}

func (m *Manual) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.queue.removeWhere(func(t *TimerTask) bool { return t.Id == timerId })
}

func (m *Manual) RemoveGroup(group uint64) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.KeepGroups {
		return 0
	}
	return m.queue.removeWhere(func(t *TimerTask) bool { return t.Group == group })
}

// Now returns the virtual time elapsed since the Manual was created.
func (m *Manual) Now() time.Duration {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

// Pending reports the number of queued tasks.
func (m *Manual) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Advance moves the clock forward by d, firing every task that falls due on
// the way, including tasks scheduled by those callbacks.
func (m *Manual) Advance(d time.Duration) int {
	m.mutex.Lock()
	target := m.now + d
	m.mutex.Unlock()

	fired := 0
	for m.fireNext(target) {
		fired++
	}

	m.mutex.Lock()
	if m.now < target {
		m.now = target
	}
	m.mutex.Unlock()
	return fired
}

// RunAll fires tasks until the queue is empty, advancing the clock to each
// deadline in turn.
func (m *Manual) RunAll() int {
	fired := 0
	for m.fireNext(-1) {
		fired++
	}
	return fired
}

// fireNext pops and runs the earliest task due at or before limit. A negative
// limit accepts any deadline.
func (m *Manual) fireNext(limit time.Duration) bool {
	m.mutex.Lock()
	if m.queue.Len() == 0 {
		m.mutex.Unlock()
		return false
	}
	at := m.queue[0].Execute.Sub(m.epoch)
	if limit >= 0 && at > limit {
		m.mutex.Unlock()
		return false
	}
	task := heap.Pop(&m.queue).(*TimerTask)
	if at > m.now {
		m.now = at
	}
	m.mutex.Unlock()

	task.Callback()
	return true
}
