// Package engineerr defines the small, closed error taxonomy the engine
// uses. Errors never propagate across a tick boundary: callers
// either resolve them within the same tick or fold them into an
// activity-level outcome.
package engineerr

import "errors"

var (
	// ErrQueueEmpty is returned by Peek/Pop on an empty priority queue.
	ErrQueueEmpty = errors.New("queue: empty")

	// ErrUnreachable is returned when a search's open set empties before
	// the goal condition is met.
	ErrUnreachable = errors.New("search: goal unreachable")

	// ErrWindowEmpty is returned when a WHCA* window search exhausts its
	// open set before any node at the window horizon is reached.
	ErrWindowEmpty = errors.New("whca: window empty")
)

// Is reports whether err matches target, unwrapping %w chains.
func Is(err, target error) bool { return errors.Is(err, target) }
