package background

// Process - interface that a background worker must satisfy
//
// Run is invoked in its own goroutine and must return once shutdown
// is closed.
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start together
type Processes []Process

// T - handle returned by Start, used to stop the group later
type T struct {
	shutdown []chan struct{}
	finished []chan struct{}
}

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	handle := &T{
		shutdown: make([]chan struct{}, len(processes)),
		finished: make([]chan struct{}, len(processes)),
	}

	for i, p := range processes {
		shutdown := make(chan struct{})
		finished := make(chan struct{})
		handle.shutdown[i] = shutdown
		handle.finished[i] = finished
		go func(p Process) {
			defer close(finished)
			p.Run(args, shutdown)
		}(p)
	}
	return handle
}

// Stop - shut down a set of background processes and wait for them
// to finish
func Stop(t *T) {

	for _, shutdown := range t.shutdown {
		close(shutdown)
	}
	for _, finished := range t.finished {
		<-finished
	}
}

// Stop - shut down this set of background processes and wait for them
// to finish
func (t *T) Stop() {
	Stop(t)
}
