package service

import (
	"sync"
	"testing"
)

func TestDispatcherRunsQueuedTasks(t *testing.T) {
	d := NewDispatcher(8)

	var mu sync.Mutex
	var ran []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		d.Enqueue(name, func() {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
		})
	}

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()
	d.Stop()
	<-done

	if len(ran) != 3 || ran[0] != "a" || ran[1] != "b" || ran[2] != "c" {
		t.Fatalf("ran = %v, want [a b c] in order", ran)
	}
}

func TestDispatcherRecoversFromPanic(t *testing.T) {
	d := NewDispatcher(8)

	var ran bool
	d.Enqueue("boom", func() { panic("task failed") })
	d.Enqueue("after", func() { ran = true })

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()
	d.Stop()
	<-done

	if !ran {
		t.Fatal("a panicking task must not take down the worker")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1)

	var count int
	d.Enqueue("kept", func() { count++ })
	d.Enqueue("dropped", func() { count++ }) // no worker yet, buffer is full

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()
	d.Stop()
	<-done

	if count != 1 {
		t.Fatalf("executed tasks = %d, want 1 (overflow dropped)", count)
	}
}

func TestDispatcherDefaultBuffer(t *testing.T) {
	d := NewDispatcher(0)
	if cap(d.tasks) != 256 {
		t.Fatalf("default buffer = %d, want 256", cap(d.tasks))
	}
}
