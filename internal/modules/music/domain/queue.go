package domain

// Queue is a FIFO sequence of songs. Songs leave the queue when they start
// playing; queue-loop mode re-appends the finished song at the back, so the
// queue physically rotates rather than tracking a cursor.
type Queue struct {
	songs []Song
}

// NewQueue creates an empty Queue.
func NewQueue() Queue {
	return Queue{songs: make([]Song, 0)}
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	return len(q.songs)
}

// IsEmpty returns true if no songs are queued.
func (q *Queue) IsEmpty() bool {
	return len(q.songs) == 0
}

// PushBack appends songs in order and returns the queue length afterwards.
func (q *Queue) PushBack(songs ...Song) int {
	q.songs = append(q.songs, songs...)
	return len(q.songs)
}

// PopFront removes and returns the song at the front of the queue.
// The second return value is false if the queue is empty.
func (q *Queue) PopFront() (Song, bool) {
	if len(q.songs) == 0 {
		return Song{}, false
	}
	song := q.songs[0]
	q.songs = q.songs[1:]
	return song, true
}

// List returns a copy of the queued songs in order.
func (q *Queue) List() []Song {
	result := make([]Song, len(q.songs))
	copy(result, q.songs)
	return result
}

// Clear removes all songs from the queue.
func (q *Queue) Clear() {
	q.songs = q.songs[:0]
}
