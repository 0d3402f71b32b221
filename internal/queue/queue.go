package queue

import (
	"errors"
	"sync"
)

// ErrClosed は送信側がクローズされたことを表す
var ErrClosed = errors.New("queue is closed")

// 先頭側の空きがこの数を超えたらスライスを詰め直す
const compactThreshold = 64

// state は送信側と受信側で共有されるキュー本体
type state[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int
	closed bool
}

// Sender はキューの送信側
type Sender[T any] struct {
	s *state[T]
}

// Receiver はキューの受信側
type Receiver[T any] struct {
	s *state[T]
}

// New は新しいキューを作成し、送信側と受信側を返す
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{}
	s.cond = sync.NewCond(&s.mu)
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Send は要素を末尾に追加する。容量待ちでブロックすることはない
func (tx *Sender[T]) Send(v T) error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.items = append(s.items, v)
	s.cond.Signal()
	return nil
}

// Close は送信側をクローズする。既に送信済みの要素は受信可能なまま残る
func (tx *Sender[T]) Close() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cond.Broadcast()
}

// Closed は送信側がクローズ済みかを返す
func (tx *Sender[T]) Closed() bool {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return tx.s.closed
}

// Recv は先頭の要素を取り出す。空ならブロックする
// クローズ済みかつ空になった場合は ErrClosed を返す
func (rx *Receiver[T]) Recv() (T, error) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.len() == 0 {
		if s.closed {
			var zero T
			return zero, ErrClosed
		}
		s.cond.Wait()
	}
	return s.pop(), nil
}

// TryRecv はブロックせずに先頭の要素を取り出す
func (rx *Receiver[T]) TryRecv() (T, bool) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.len() == 0 {
		var zero T
		return zero, false
	}
	return s.pop(), true
}

// Len は現在キューに残っている要素数を返す
func (rx *Receiver[T]) Len() int {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()
	return rx.s.len()
}

func (s *state[T]) len() int {
	return len(s.items) - s.head
}

// pop は mu を保持した状態で呼ぶこと
func (s *state[T]) pop() T {
	var zero T
	v := s.items[s.head]
	s.items[s.head] = zero
	s.head++

	switch {
	case s.head == len(s.items):
		s.items = s.items[:0]
		s.head = 0
	case s.head > compactThreshold && s.head*2 > len(s.items):
		n := copy(s.items, s.items[s.head:])
		clear(s.items[n:])
		s.items = s.items[:n]
		s.head = 0
	}
	return v
}
