package driven

import "context"

// FileWatcher reports files created or modified under a directory.
type FileWatcher interface {
	// Watch emits the path of each changed file once it has been quiet for
	// the watcher's debounce period. The channel closes when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
