// Package translate fans subtitle text out to a translation provider in
// fixed-size batches and reassembles the answers in source order.
//
// SplitBatches partitions the segment indexes, Dispatcher runs at most
// Workers provider calls at once, and Reassembler places each batch's
// result (or a failure marker) back into a pre-sized slice. A failed batch
// never cancels or delays its siblings.
package translate
