// Package http provides the HTTP client modtool uses for every outbound
// request.
//
// The Client in this package handles:
//   - User-Agent headers identifying the tool and a contact address
//   - JSON document fetches (manifest, Forge version index)
//   - File downloads with progress tracking (installer jars, mods)
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(config.UserAgent(), 60*time.Second)
//
//	body, err := client.Get(ctx, manifestURL)
//
//	client.DownloadFile(ctx, modURL, "/path/to/mod.jar", func(written, total int64) {
//	    // total is -1 when the server sends no Content-Length
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
