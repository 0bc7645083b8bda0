// Package subscription implements the notification tree that connects a
// store to connected nodes.
//
// # Registry
//
// Registry is a copy-on-write ordered set of listeners. A notify pass walks
// the snapshot taken when the pass started: listeners added during the pass
// wait for the next one, listeners removed during the pass are still called
// in this one.
//
// # Scheduler
//
// Scheduler coalesces store notifications into flushes. A commit made while a
// flush is running does not re-enter the tree; the running flush makes one
// more pass when the current one ends. The batching primitive is injected so
// a host with its own update coalescing can wrap every flush.
//
// # Subscription
//
// A Subscription is one node of the tree. It registers either with its parent
// Subscription or, for the root, with the store itself:
//
//	root := subscription.New(store, nil, flush)
//	child := subscription.New(store, root, recompute)
//	child.Bind()
//
// The owner of a Subscription calls NotifyNested only after it has applied
// the current state, which makes notification strictly top-down.
package subscription
