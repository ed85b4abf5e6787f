/*
Package httpserver exposes the instance loader over HTTP.

The API handler resolves dataset descriptors with the loader and serves the
file registry; the server adds health, drain and pprof endpoints, access
logging, and a separate Prometheus listener.

# Endpoints

  - POST /api/resolve - Resolve a dataset into instance bytes
  - POST /api/files?name= - Register a DICOM blob
  - GET /api/files - List registered files
  - GET /api/files/{handle} - Load a registered file
  - GET /livez - Liveness check
  - GET /readyz - Readiness check, fails while draining or when the blob store is down
  - GET /drain - Mark server as not ready and wait for the drain period
  - GET /undrain - Mark server as ready
  - /debug/pprof - Profiling, when enabled

# Usage Example

	handler := httpserver.NewHandler(resolver, files, metricsSrv, cfg, log)
	srv, err := httpserver.New(cfg, handler, store, metricsSrv)
	if err != nil {
	    return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
