// Package binning turns an empirical distribution of a continuous clinical
// measurement into an ordered vocabulary of token bins.
//
// Binning is anchor-first: the data extremes, the edges of the normal range
// and every clinical anchor are collected as fixed boundaries, the space
// between consecutive boundaries becomes a zone, and only inside a zone are
// quantile cuts placed. A quantile cut can therefore never cross, merge or
// shift an anchor, and every anchor is an exact bin edge in the output.
//
// Everything in this package is a pure function of its arguments: no logging,
// no I/O and no shared state, so calls for different variables may run
// concurrently.
package binning
