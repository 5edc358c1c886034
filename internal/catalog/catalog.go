package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/buttonbook/internal/errors"
)

// EventType represents the type of catalog change.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// Event represents a change in the catalog, used to notify the preview
// server and other watchers.
type Event struct {
	Type      EventType
	Story     Story
	Timestamp time.Time
}

// Catalog manages the stories of one component. Stories keep their
// registration order.
type Catalog struct {
	meta     Meta
	stories  map[string]Story
	order    []string
	mutex    sync.RWMutex
	watchers []chan Event
}

// New creates an empty catalog.
func New(meta Meta) *Catalog {
	return &Catalog{
		meta:     meta,
		stories:  make(map[string]Story),
		order:    make([]string, 0),
		watchers: make([]chan Event, 0),
	}
}

// Meta returns the component description.
func (c *Catalog) Meta() Meta {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.meta
}

// Register adds or updates a story. A story whose ID is already taken by a
// differently named story is rejected.
func (c *Catalog) Register(story Story) error {
	if err := ValidateName(story.Name); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := StoryID(story.Name)
	for _, name := range c.order {
		if name != story.Name && StoryID(name) == id {
			return errors.NewValidationError(errors.ErrCodeDuplicateStory,
				fmt.Sprintf("story %q duplicates %q (id %q)", story.Name, name, id)).WithStory(story.Name)
		}
	}

	c.put(story)
	return nil
}

// put stores a story and notifies watchers. Caller must hold the write lock.
func (c *Catalog) put(story Story) {
	eventType := EventTypeAdded
	if _, exists := c.stories[story.Name]; exists {
		eventType = EventTypeUpdated
	} else {
		c.order = append(c.order, story.Name)
	}

	c.stories[story.Name] = story
	c.notify(Event{Type: eventType, Story: story, Timestamp: time.Now()})
}

// Get retrieves a story by exact name.
func (c *Catalog) Get(name string) (Story, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	story, exists := c.stories[name]
	return story, exists
}

// Lookup finds a story by name or by ID.
func (c *Catalog) Lookup(key string) (Story, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if story, ok := c.stories[key]; ok {
		return story, nil
	}

	id := StoryID(key)
	for _, name := range c.order {
		if StoryID(name) == id {
			return c.stories[name], nil
		}
	}

	return Story{}, errors.ErrStoryNotFound(key)
}

// All returns the stories in registration order.
func (c *Catalog) All() []Story {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]Story, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.stories[name])
	}
	return result
}

// Remove removes a story from the catalog.
func (c *Catalog) Remove(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.remove(name)
}

func (c *Catalog) remove(name string) {
	story, exists := c.stories[name]
	if !exists {
		return
	}

	delete(c.stories, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	c.notify(Event{Type: EventTypeRemoved, Story: story, Timestamp: time.Now()})
}

// Replace swaps in a new meta and story set, emitting one event per change.
// The stories must already be validated.
func (c *Catalog) Replace(meta Meta, stories []Story) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keep := make(map[string]bool, len(stories))
	for _, s := range stories {
		keep[s.Name] = true
	}

	for _, name := range append([]string(nil), c.order...) {
		if !keep[name] {
			c.remove(name)
		}
	}

	c.meta = meta
	order := make([]string, 0, len(stories))
	for _, s := range stories {
		c.put(s)
		order = append(order, s.Name)
	}
	c.order = order
}

// notify sends an event to every watcher. Caller must hold the write lock.
func (c *Catalog) notify(event Event) {
	for _, watcher := range c.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives catalog events
func (c *Catalog) Watch() <-chan Event {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := make(chan Event, 100)
	c.watchers = append(c.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (c *Catalog) UnWatch(ch <-chan Event) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i, watcher := range c.watchers {
		if watcher == ch {
			close(watcher)
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of stories
func (c *Catalog) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.stories)
}
