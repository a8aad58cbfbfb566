// Package store は並行安全なキー付きエンティティストアを提供する。
// ユーザーとタスクの両方で同じ実装を使い、どちらも同一の原子性を保証する。
package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

// ErrAlreadyExists はSaveで指定キーが既に存在する場合に返される。
var ErrAlreadyExists = errors.New("store: key already exists")

// entry は値と挿入順序を保持する。
type entry[V any] struct {
	seq   uint64
	value V
}

// Store はキーKで値Vを保持するインメモリストア。
// 全ての変更操作は単一のロック区間で完結し、呼び出し側で
// 存在確認と挿入を分ける必要はない。
// 値はコピーで保持・返却するため、ポインタを含まない型で使うこと。
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	nextSeq uint64
}

// New は空のStoreを生成する。
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]entry[V]),
	}
}

// Save はkeyが存在しない場合のみvalueを挿入し、keyを返す。
// 既に存在する場合は何も変更せずErrAlreadyExistsを返す。
func (s *Store[K, V]) Save(key K, value V) (K, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		var zero K
		return zero, ErrAlreadyExists
	}

	s.nextSeq++
	s.entries[key] = entry[V]{seq: s.nextSeq, value: value}
	return key, nil
}

// Get はkeyに対応する値を返す。存在しない場合はfalseを返す。
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e.value, ok
}

// Find はpredを満たす値を挿入順で返す。
// 呼び出し時点のスナップショットであり、走査後の変更は反映されない。
// 該当なしの場合も非nilの空スライスを返す。
func (s *Store[K, V]) Find(pred func(V) bool) []V {
	s.mu.RLock()
	matched := make([]entry[V], 0, len(s.entries))
	for _, e := range s.entries {
		if pred == nil || pred(e.value) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b entry[V]) int {
		return cmp.Compare(a.seq, b.seq)
	})

	values := make([]V, len(matched))
	for i, e := range matched {
		values[i] = e.value
	}
	return values
}

// Update はkeyが存在する場合のみvalueで置き換える。
// 挿入順序は維持する。存在しない場合は何もせずfalseを返す。
func (s *Store[K, V]) Update(key K, value V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.value = value
	s.entries[key] = e
	return value, true
}

// Delete はkeyのエントリを削除する。削除した場合のみtrueを返す。
func (s *Store[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Contains はkeyが存在するかを返す。
func (s *Store[K, V]) Contains(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Len は保持しているエントリ数を返す。
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
