package queue

import "testing"

type item struct {
	id int
}

func TestPendingFIFOOrder(t *testing.T) {
	p := NewPending[*item]()
	a, b, c := &item{1}, &item{2}, &item{3}

	p.PushBack(a)
	p.PushBack(b)
	p.PushBack(c)

	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}

	front, ok := p.Front()
	if !ok || front != a {
		t.Fatalf("Front() = %v, %v, want %v, true", front, ok, a)
	}

	p.Remove(a)
	front, ok = p.Front()
	if !ok || front != b {
		t.Fatalf("Front() after remove = %v, %v, want %v, true", front, ok, b)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() after remove = %d, want 2", p.Len())
	}
}

func TestPendingEmpty(t *testing.T) {
	p := NewPending[*item]()
	if !p.Empty() {
		t.Error("Empty() = false on a fresh queue")
	}
	if _, ok := p.Front(); ok {
		t.Error("Front() on empty queue should return ok=false")
	}
}

func TestPendingRemoveMiddle(t *testing.T) {
	p := NewPending[*item]()
	a, b, c := &item{1}, &item{2}, &item{3}
	p.PushBack(a)
	p.PushBack(b)
	p.PushBack(c)

	p.Remove(b)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	front, _ := p.Front()
	if front != a {
		t.Fatalf("Front() = %v, want %v", front, a)
	}
	p.Remove(a)
	front, _ = p.Front()
	if front != c {
		t.Fatalf("Front() = %v, want %v", front, c)
	}
}

func TestPendingRemoveMissing(t *testing.T) {
	p := NewPending[*item]()
	a := &item{1}
	p.Remove(a) // should not panic
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
}
