// Package memory sets the Go runtime's soft memory limit for containerized
// deployments.
//
// GOMAXPROCS follows cgroup CPU limits automatically, GOMEMLIMIT does not.
// The server's heavy allocations happen outside the Go heap (ffmpeg child
// processes and libvips buffers), so only a fraction of the container limit
// is handed to the runtime.
//
// Environment variables:
//
//   - GOMEMLIMIT: standard Go variable; when set it is left untouched.
//   - MEMORY_LIMIT: container limit in bytes, usually from the Kubernetes
//     Downward API (resourceFieldRef: limits.memory).
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the Go heap, in (0, 1].
//     Defaults to [DefaultRatio].
//
// Call [ConfigureFromEnv] first thing in main:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    ...
//	}
package memory
