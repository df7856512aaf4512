package service

import "log"

// Task is a queued unit of side-effect work (notification fan-out, email,
// threshold check) handed off by a primary state transition.
type Task struct {
	Name string
	Run  func()
}

// TaskQueue decouples side-effect dispatch from the triggering request:
// the caller returns once the durable write succeeds, and the queue worker
// absorbs channel latency and failures.
type TaskQueue interface {
	Enqueue(name string, run func())
}

// Dispatcher is a bounded in-process task queue with a single worker. Tasks
// are fire-once: failures and panics are logged and dropped, never retried
// at this layer.
type Dispatcher struct {
	tasks chan Task
}

func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{tasks: make(chan Task, buffer)}
}

// Enqueue hands off a task without blocking the caller. A full queue drops
// the task with a log line; a higher layer may re-deliver via its own sweep.
func (d *Dispatcher) Enqueue(name string, run func()) {
	select {
	case d.tasks <- Task{Name: name, Run: run}:
	default:
		log.Printf("dispatcher: queue full, dropping task %q", name)
	}
}

func (d *Dispatcher) Run() {
	for task := range d.tasks {
		d.execute(task)
	}
}

func (d *Dispatcher) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dispatcher: task %q panicked: %v", task.Name, r)
		}
	}()
	task.Run()
}

// Stop closes the queue; Run drains remaining tasks and returns.
func (d *Dispatcher) Stop() {
	close(d.tasks)
}
