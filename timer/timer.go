// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/wfunc/simonsays/logger"
)

// Scheduler runs callbacks after a delay. Every task belongs to a group so
// that all pending work of an abandoned game can be dropped at once.
type Scheduler interface {
	AddTimer(group uint64, delay time.Duration, callback func()) int64
	RemoveTimer(timerId int64)
	RemoveGroup(group uint64) int
}

type TimerTask struct {
	Id       int64
	Group    uint64
	Execute  time.Time
	Callback func()
	index    int
}

// TimerQueue orders tasks by deadline, then by id so that tasks sharing a
// deadline fire in the order they were added.
type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	if q[i].Execute.Equal(q[j].Execute) {
		return q[i].Id < q[j].Id
	}
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// removeWhere drops every task matching fn and returns how many were dropped.
func (q *TimerQueue) removeWhere(fn func(*TimerTask) bool) int {
	removed := 0
	for i := 0; i < q.Len(); {
		if fn((*q)[i]) {
			heap.Remove(q, i)
			removed++
			continue
		}
		i++
	}
	return removed
}

// TimerManager is a wall-clock Scheduler. Callbacks of one group run one at a
// time in deadline order; different groups run concurrently. A panicking
// callback is logged and does not stop the manager.
type TimerManager struct {
	queue  TimerQueue
	mutex  sync.Mutex
	nextId int64
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	// lanes holds the due tasks of every group with a running callback.
	// Tasks of one group run in order; a blocked group never holds up another.
	lanes map[uint64]*lane
}

type lane struct {
	tasks []*TimerTask
}

var _ Scheduler = (*TimerManager)(nil)

func NewTimerManager() *TimerManager {
	manager := &TimerManager{
		queue:  make(TimerQueue, 0),
		nextId: 1,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		lanes:  make(map[uint64]*lane),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

func (m *TimerManager) AddTimer(group uint64, delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	task := &TimerTask{
		Id:       m.nextId,
		Group:    group,
		Execute:  time.Now().Add(delay),
		Callback: callback,
	}
	m.nextId++
	heap.Push(&m.queue, task)
	m.mutex.Unlock()

	m.notify()
	return task.Id
}

func (m *TimerManager) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.queue.removeWhere(func(t *TimerTask) bool { return t.Id == timerId })
}

func (m *TimerManager) RemoveGroup(group uint64) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := m.queue.removeWhere(func(t *TimerTask) bool { return t.Group == group })
	if l, ok := m.lanes[group]; ok {
		removed += len(l.tasks)
		l.tasks = nil
	}
	return removed
}

// Pending reports the number of queued tasks.
func (m *TimerManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Stop halts the processing goroutine. Pending tasks never fire.
func (m *TimerManager) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

func (m *TimerManager) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *TimerManager) process() {
	defer close(m.done)

	clock := time.NewTimer(time.Hour)
	defer clock.Stop()

	for {
		m.mutex.Lock()
		now := time.Now()
		var due []*TimerTask
		for m.queue.Len() > 0 && !m.queue[0].Execute.After(now) {
			due = append(due, heap.Pop(&m.queue).(*TimerTask))
		}
		wait := time.Hour
		if m.queue.Len() > 0 {
			wait = m.queue[0].Execute.Sub(now)
		}
		m.mutex.Unlock()

		for _, task := range due {
			m.dispatch(task)
		}

		if !clock.Stop() {
			select {
			case <-clock.C:
			default:
			}
		}
		clock.Reset(wait)

		select {
		case <-m.stop:
			return
		case <-m.wake:
		case <-clock.C:
		}
	}
}

// dispatch hands a due task to its group's lane, starting the lane if idle.
func (m *TimerManager) dispatch(task *TimerTask) {
	m.mutex.Lock()
	if l, running := m.lanes[task.Group]; running {
		l.tasks = append(l.tasks, task)
		m.mutex.Unlock()
		return
	}
	l := &lane{tasks: []*TimerTask{task}}
	m.lanes[task.Group] = l
	m.mutex.Unlock()

	go m.runLane(task.Group, l)
}

func (m *TimerManager) runLane(group uint64, l *lane) {
	for {
		m.mutex.Lock()
		if len(l.tasks) == 0 {
			delete(m.lanes, group)
			m.mutex.Unlock()
			return
		}
		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		m.mutex.Unlock()

		run(task)
	}
}

func run(task *TimerTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("timer %d (group %d) panicked: %v", task.Id, task.Group, r)
		}
	}()
	task.Callback()
}
