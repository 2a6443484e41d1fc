package client

// ID is a stable handle for a registered client. It packs a slot index and
// a generation so a handle to a removed client never resolves to the
// client that later reuses its slot.
type ID uint64

func makeID(index, gen uint32) ID { return ID(uint64(gen)<<32 | uint64(index)) }

func (id ID) index() uint32 { return uint32(id) }
func (id ID) gen() uint32   { return uint32(id >> 32) }

type slot struct {
	gen    uint32
	client *Client
}

// Registry is the single owning store of managed clients. Besides the
// slot map it keeps the global registration order and a most-recently-used
// queue per screen; Remove drops a client from all of them at once.
type Registry struct {
	slots   []slot
	free    []uint32
	windows map[Window]ID
	order   []ID
	mru     map[int][]ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		windows: make(map[Window]ID),
		mru:     make(map[int][]ID),
	}
}

// Insert stores c, assigns its ID and appends it to its screen's MRU
// queue. Inserting a window that is already registered returns the
// existing ID and leaves the registry unchanged.
func (r *Registry) Insert(c *Client) ID {
	if id, ok := r.windows[c.Window]; ok {
		return id
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{gen: 1})
	}

	s := &r.slots[idx]
	s.client = c
	id := makeID(idx, s.gen)
	c.ID = id

	r.windows[c.Window] = id
	r.order = append(r.order, id)
	r.mru[c.Screen] = append(r.mru[c.Screen], id)
	return id
}

// Get resolves an ID.
func (r *Registry) Get(id ID) (*Client, bool) {
	idx := id.index()
	if int(idx) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[idx]
	if s.client == nil || s.gen != id.gen() {
		return nil, false
	}
	return s.client, true
}

// Find returns the client managing win, or nil.
func (r *Registry) Find(win Window) *Client {
	id, ok := r.windows[win]
	if !ok {
		return nil
	}
	c, _ := r.Get(id)
	return c
}

// Remove unregisters the client with the given ID.
func (r *Registry) Remove(id ID) bool {
	c, ok := r.Get(id)
	if !ok {
		return false
	}

	idx := id.index()
	r.slots[idx].client = nil
	r.slots[idx].gen++
	r.free = append(r.free, idx)

	delete(r.windows, c.Window)
	r.order = removeID(r.order, id)
	r.mru[c.Screen] = removeID(r.mru[c.Screen], id)
	return true
}

// Len returns the number of registered clients.
func (r *Registry) Len() int { return len(r.order) }

// All returns every client in registration order.
func (r *Registry) All() []*Client {
	return r.resolve(r.order)
}

// MRU returns the clients of a screen, most recently used first.
func (r *Registry) MRU(screen int) []*Client {
	return r.resolve(r.mru[screen])
}

// MoveToFront makes id the most recently used client on its screen.
func (r *Registry) MoveToFront(id ID) {
	c, ok := r.Get(id)
	if !ok {
		return
	}
	q := removeID(r.mru[c.Screen], id)
	r.mru[c.Screen] = append([]ID{id}, q...)
}

func (r *Registry) resolve(ids []ID) []*Client {
	out := make([]*Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
