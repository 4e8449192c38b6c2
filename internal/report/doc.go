// Package report correlates lint messages with the source spans they point at
// and groups the result per file.
//
// The diagnostic tree is visited in pre-order. A message never carries its
// location itself: the spans visited after it do. The Aggregator therefore
// remembers the last message and turns every following span into an Entry,
// unless a gate of internal/filter rejected either of them.
//
// The Index returned by Walk owns all of its data and no longer refers to the
// tree.
package report
