package device

// Releaser frees one device-side resource.
type Releaser interface {
	Release()
}

// ReleaseList tears device resources down in reverse creation order, so a
// resource is never released before anything derived from it. Pushing in
// creation order (context, queue, program, kernel, buffers) yields the
// required teardown order: buffers and kernel before program before queue
// before context.
type ReleaseList struct {
	items []Releaser
}

func (l *ReleaseList) Push(r Releaser) {
	l.items = append(l.items, r)
}

// Release frees every pushed resource, newest first. The list is emptied
// so a second call is a no-op.
func (l *ReleaseList) Release() {
	for i := len(l.items) - 1; i >= 0; i-- {
		l.items[i].Release()
	}
	l.items = nil
}
