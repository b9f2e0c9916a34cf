// Package prioq provides a comparison-based binary heap with an injected
// ordering function. It backs the ordering of scheduled work: callers key
// their elements by (fire time, sequence) so that equal fire times are still
// totally ordered.
//
// The heap keeps the usual array invariant: the element at index i is never
// ordered after the elements at 2i+1 and 2i+2. Push, Pop and Remove are
// O(log n); Peek is O(1).
package prioq
