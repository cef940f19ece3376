package cv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIndexOutOfRange 表示列表下标越界。
var ErrIndexOutOfRange = errors.New("entry index out of range")

// Entries 是一个永不为空的有序序列：删除最后一个元素时用空白默认值替换。
type Entries[T any] struct {
	items []T
}

// NewEntries 返回包含一个空白元素的序列。
func NewEntries[T any]() Entries[T] {
	var blank T
	return Entries[T]{items: []T{blank}}
}

// EntriesOf 用给定元素构造序列，空输入会被规范化为一个空白元素。
func EntriesOf[T any](items ...T) Entries[T] {
	if len(items) == 0 {
		return NewEntries[T]()
	}
	cp := make([]T, len(items))
	copy(cp, items)
	return Entries[T]{items: cp}
}

func (e *Entries[T]) ensure() {
	if len(e.items) == 0 {
		var blank T
		e.items = []T{blank}
	}
}

// view 返回只读视图，nil 序列视为一个空白元素，不修改接收者。
func (e Entries[T]) view() []T {
	if len(e.items) == 0 {
		return make([]T, 1)
	}
	return e.items
}

// Len 返回元素个数，总是 >= 1。
func (e Entries[T]) Len() int {
	return len(e.view())
}

// At 返回下标处的元素。
func (e Entries[T]) At(index int) (T, error) {
	items := e.view()
	if index < 0 || index >= len(items) {
		var zero T
		return zero, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(items))
	}
	return items[index], nil
}

// Items 返回元素的副本。
func (e Entries[T]) Items() []T {
	items := e.view()
	cp := make([]T, len(items))
	copy(cp, items)
	return cp
}

// Append 在末尾追加一个空白元素并返回其下标。
func (e *Entries[T]) Append() int {
	e.ensure()
	var blank T
	e.items = append(e.items, blank)
	return len(e.items) - 1
}

// Update 用 fn 的返回值替换下标处的元素。
func (e *Entries[T]) Update(index int, fn func(T) (T, error)) error {
	e.ensure()
	current, err := e.At(index)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	e.items[index] = next
	return nil
}

// Remove 删除下标处的元素；若它是唯一元素，则替换为空白元素。
func (e *Entries[T]) Remove(index int) error {
	e.ensure()
	if _, err := e.At(index); err != nil {
		return err
	}
	if len(e.items) == 1 {
		var blank T
		e.items[0] = blank
		return nil
	}
	next := make([]T, 0, len(e.items)-1)
	next = append(next, e.items[:index]...)
	next = append(next, e.items[index+1:]...)
	e.items = next
	return nil
}

func (e Entries[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view())
}

func (e *Entries[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*e = EntriesOf(items...)
	return nil
}
