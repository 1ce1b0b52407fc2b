package run

import (
	"fmt"
	"sync"

	"github.com/rescuesim/collapse/pkg/core"
)

// Context holds the current run and how far it has advanced
type Context struct {
	mu       sync.RWMutex
	run      *core.Run
	lastTime int
}

// NewContext creates a Context with no run started
func NewContext() *Context {
	return &Context{}
}

// Start makes run the current run
func (c *Context) Start(run *core.Run) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run = run
	c.lastTime = 0
}

// Current returns the current run
func (c *Context) Current() (*core.Run, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.run == nil {
		return nil, core.ErrNoRun
	}
	return c.run, nil
}

// Advance records that step t is being processed. Steps must increase.
func (c *Context) Advance(t int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return core.ErrNoRun
	}
	if t <= c.lastTime {
		return fmt.Errorf("step %d after step %d", t, c.lastTime)
	}
	c.lastTime = t
	return nil
}

// LastTime returns the last step advanced to, 0 before the first.
func (c *Context) LastTime() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastTime
}

// End clears the current run and returns it
func (c *Context) End() (*core.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return nil, core.ErrNoRun
	}
	r := c.run
	c.run = nil
	return r, nil
}
