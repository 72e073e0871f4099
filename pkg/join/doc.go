// Package join implements temporal joins between the active windows of two streams.
//
// Every strategy reads two window.Buffer snapshots and returns joined results, each a
// derived interval plus a fresh fact container. The strategies differ in how intervals
// are paired:
//   * merge joins every overlapping pair of instances and emits their intersection
//   * cross emits only the first overlapping pair, closing it at the later close
//   * greatest-chunk re-partitions time into chunks of the LCM of all widths and keeps
//     the facts whose own timestamp lies in a chunk, emitting chunks both sides fill
//   * chunk-creation is greatest-chunk on the GCD grid
//   * temporal slides a result window of fixed size over both streams
//
// Merge and cross deliberately disagree on the joined close time, merge is exact and
// cross is the cheap first-match approximation, and callers compare the two.
//
// Joined facts always lose their graph, the graph is a transport provenance tag.
package join
