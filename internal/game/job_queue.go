package game

import "container/list"

// maxPendingNotifications bounds the queue when no consumer drains it;
// the oldest notifications are dropped first
const maxPendingNotifications = 256

// NotificationQueue accumulates deselections until a consumer drains them
type NotificationQueue struct {
	pending *list.List // Deselection
}

// NewNotificationQueue creates an empty queue
func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{
		pending: list.New(),
	}
}

// Enqueue appends a notification
func (q *NotificationQueue) Enqueue(d Deselection) {
	if q.pending.Len() >= maxPendingNotifications {
		q.pending.Remove(q.pending.Front())
	}
	q.pending.PushBack(d)
}

// Drain pops all pending notifications in emission order
func (q *NotificationQueue) Drain() []Deselection {
	out := make([]Deselection, 0, q.pending.Len())
	for elem := q.pending.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(Deselection))
	}
	q.pending.Init()
	return out
}

// Truncate drops the newest notifications until at most n remain
func (q *NotificationQueue) Truncate(n int) {
	for q.pending.Len() > n && q.pending.Len() > 0 {
		q.pending.Remove(q.pending.Back())
	}
}

// Count returns the number of pending notifications
func (q *NotificationQueue) Count() int {
	return q.pending.Len()
}
