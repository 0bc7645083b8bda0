package devtools

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vango-dev/storebind/pkg/bind"
	"github.com/vango-dev/storebind/pkg/selector"
)

// DefaultHistory is how many events an Inspector keeps by default.
const DefaultHistory = 256

// maxPreview bounds a rendered prop value, in runes.
const maxPreview = 80

// Event kinds.
const (
	KindPass    = "pass"
	KindUpdate  = "update"
	KindMount   = "mount"
	KindUnmount = "unmount"
)

// NodeInfo is the latest known state of one node.
type NodeInfo struct {
	ID        uint64            `json:"id"`
	Name      string            `json:"name"`
	Mounted   bool              `json:"mounted"`
	Updates   int               `json:"updates"`
	Changes   int               `json:"changes"`
	LastCause string            `json:"lastCause,omitempty"`
	Props     map[string]string `json:"props,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Event is one engine event.
type Event struct {
	Seq      uint64        `json:"seq"`
	Kind     string        `json:"kind"`
	Time     time.Time     `json:"time"`
	NodeID   uint64        `json:"nodeId,omitempty"`
	Node     string        `json:"node,omitempty"`
	Cause    string        `json:"cause,omitempty"`
	Changed  bool          `json:"changed,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// InspectorOption configures an Inspector.
type InspectorOption func(*Inspector)

// WithHistory sets how many events are kept.
func WithHistory(n int) InspectorOption {
	return func(in *Inspector) {
		if n > 0 {
			in.history = n
		}
	}
}

// Inspector is a bind.Observer recording nodes and events. Its read methods
// are safe to call from other goroutines while the tree runs.
type Inspector struct {
	mu      sync.RWMutex
	history int
	seq     uint64
	nodes   map[uint64]*NodeInfo
	events  []Event
	subs    map[string]chan Event
	now     func() time.Time
}

var _ bind.Observer = (*Inspector)(nil)

// NewInspector creates an empty Inspector.
func NewInspector(opts ...InspectorOption) *Inspector {
	in := &Inspector{
		history: DefaultHistory,
		nodes:   make(map[uint64]*NodeInfo),
		subs:    make(map[string]chan Event),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ObservePass records the pass duration and outcome.
func (in *Inspector) ObservePass(ctx context.Context, next func(context.Context) error) error {
	start := in.now()
	err := next(ctx)

	ev := Event{Kind: KindPass, Duration: in.now().Sub(start)}
	if err != nil {
		ev.Error = err.Error()
	}
	in.mu.Lock()
	in.record(ev)
	in.mu.Unlock()
	return err
}

// ObserveUpdate records a recompute.
func (in *Inspector) ObserveUpdate(_ context.Context, u bind.Update) {
	in.mu.Lock()
	defer in.mu.Unlock()

	n := in.node(u.NodeID, u.Node)
	n.Updates++
	n.LastCause = u.Cause.String()
	ev := Event{Kind: KindUpdate, NodeID: u.NodeID, Node: u.Node, Cause: n.LastCause, Changed: u.Changed}
	if u.Err != nil {
		n.Error = u.Err.Error()
		ev.Error = n.Error
	} else {
		n.Error = ""
		if u.Changed {
			n.Changes++
			n.Props = preview(u.Props)
		}
	}
	in.record(ev)
}

// ObserveMount records a mount or unmount.
func (in *Inspector) ObserveMount(nodeID uint64, node string, mounted bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.node(nodeID, node).Mounted = mounted
	kind := KindMount
	if !mounted {
		kind = KindUnmount
	}
	in.record(Event{Kind: kind, NodeID: nodeID, Node: node})
}

// Nodes returns every node seen, by id.
func (in *Inspector) Nodes() []NodeInfo {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]NodeInfo, 0, len(in.nodes))
	for _, n := range in.nodes {
		out = append(out, n.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Node returns one node.
func (in *Inspector) Node(id uint64) (NodeInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	n, ok := in.nodes[id]
	if !ok {
		return NodeInfo{}, false
	}
	return n.clone(), true
}

// Events returns the kept events with a sequence number above since.
func (in *Inspector) Events(since uint64) []Event {
	in.mu.RLock()
	defer in.mu.RUnlock()

	i := sort.Search(len(in.events), func(i int) bool { return in.events[i].Seq > since })
	return append([]Event(nil), in.events[i:]...)
}

// Subscribe registers a live event stream. Events are dropped for a
// subscriber whose buffer is full. cancel closes the channel.
func (in *Inspector) Subscribe(buffer int) (id string, events <-chan Event, cancel func()) {
	ch := make(chan Event, buffer)
	id = uuid.NewString()

	in.mu.Lock()
	in.subs[id] = ch
	in.mu.Unlock()

	var once sync.Once
	return id, ch, func() {
		once.Do(func() {
			in.mu.Lock()
			delete(in.subs, id)
			in.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live streams.
func (in *Inspector) Subscribers() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.subs)
}

// node returns the entry for id, creating it. Callers hold mu.
func (in *Inspector) node(id uint64, name string) *NodeInfo {
	n, ok := in.nodes[id]
	if !ok {
		n = &NodeInfo{ID: id, Name: name}
		in.nodes[id] = n
	}
	return n
}

// record appends ev and fans it out. Callers hold mu.
func (in *Inspector) record(ev Event) {
	in.seq++
	ev.Seq = in.seq
	ev.Time = in.now()

	if len(in.events) == in.history {
		copy(in.events, in.events[1:])
		in.events = in.events[:len(in.events)-1]
	}
	in.events = append(in.events, ev)

	for _, ch := range in.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (n *NodeInfo) clone() NodeInfo {
	out := *n
	if n.Props != nil {
		out.Props = make(map[string]string, len(n.Props))
		for k, v := range n.Props {
			out.Props[k] = v
		}
	}
	return out
}

// preview renders props for display. Functions are shown as "func".
func preview(props selector.Props) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			out[k] = "func"
			continue
		}
		s := fmt.Sprintf("%v", v)
		if utf8.RuneCountInString(s) > maxPreview {
			s = string([]rune(s)[:maxPreview]) + "…"
		}
		out[k] = s
	}
	return out
}
