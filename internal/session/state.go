// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "fmt"

// State is a point-in-time copy of a controller's log, filters and cursor.
type State struct {
	Turns      []Turn
	Filters    FilterState
	Pagination Pagination
}

// Snapshot returns the controller's current State.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Turns:      append([]Turn(nil), c.log...),
		Filters:    c.filters,
		Pagination: c.pagination,
	}
}

// Restore replaces the controller's state with s, for resuming a saved
// session. It fails while a fetch is in flight.
func (c *Controller) Restore(s State) error {
	if err := s.Filters.Validate(c.now()); err != nil {
		return fmt.Errorf("restoring filters: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.log = append([]Turn(nil), s.Turns...)
	c.filters = s.Filters
	c.pagination = s.Pagination
	return nil
}
