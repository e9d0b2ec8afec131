package session

import "sync"

// colorScheme mirrors the browser's prefers-color-scheme media query. It is
// seeded from the request client hint and updated by the page script.
type colorScheme struct {
	mu   sync.Mutex
	dark bool
	next int
	subs map[int]func(bool)
}

func newColorScheme(dark bool) *colorScheme {
	return &colorScheme{dark: dark, subs: make(map[int]func(bool))}
}

func (c *colorScheme) PrefersDark() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dark
}

// Subscribe registers fn for changes. The returned func cancels it.
func (c *colorScheme) Subscribe(fn func(bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Set records the current preference and notifies subscribers when it
// changed.
func (c *colorScheme) Set(dark bool) {
	c.mu.Lock()
	if c.dark == dark {
		c.mu.Unlock()
		return
	}
	c.dark = dark
	fns := make([]func(bool), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}
