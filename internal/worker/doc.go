// Package worker runs the background processing loop that drains the job
// queue. It polls the store for claimable jobs, dispatches each to a
// Processor with bounded concurrency, and records the outcome back on the
// store. Ticks never overlap: if a previous tick is still dispatching, the
// next one is skipped.
package worker
