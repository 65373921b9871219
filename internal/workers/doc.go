/*
Package workers sizes the worker pools used by vclab.

Inside a container runtime.NumCPU reports the host's CPUs while GOMAXPROCS
follows the cgroup CPU limit (Go 1.19+), so pool sizes are derived from
GOMAXPROCS:

	// Block transforms: one worker per CPU, never more than there are blocks.
	n := workers.ForCPU(len(blocks))

	// ffmpeg fan-out, part CPU and part disk.
	n := workers.ForMixed(len(codecs))

# Environment Variable Override

Operators can pin the pool size with WORKERS:

	env:
	- name: WORKERS
	  value: "4"

The override is still capped by the limit passed by the caller. Invalid,
zero or negative values are ignored.
*/
package workers
