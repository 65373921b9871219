/*
Package streaming sends transcoder outputs to HTTP clients without letting a
slow or vanished client pin a handler goroutine.

TimeoutWriter wraps an http.ResponseWriter. Each chunk write is bounded by
Config.WriteTimeout and the whole transfer by Config.MaxDuration; the
request context is checked between chunks.

	n, err := streaming.ServeFile(r.Context(), w, path, "video/mp4", streaming.DefaultConfig())
	if errors.Is(err, streaming.ErrClientGone) {
		return // not a server error
	}

Errors:

  - ErrClientGone: the request context was canceled
  - ErrWriteTimeout: a chunk write or the whole transfer timed out
  - ErrWriterClosed: Write after Close
*/
package streaming
