// Package window implements the windowing side of a stream: window instances, the
// read-only buffers handed to join strategies and a CSPARQL style sliding windower.
//
// A window instance is the half open interval [Open, Close) in unix milliseconds during
// which a sliding window accumulated facts. A stream configured with a width and a slide
// keeps several overlapping instances active at once, every fact goes to each active
// instance whose interval contains the fact's event time.
//
// Join strategies never look at a live windower. The owner takes a Snapshot, which deep
// copies every active instance and its facts, and passes that to the strategy. Snapshots
// can be read from any goroutine, the windower itself must only be used by its owner.
package window
