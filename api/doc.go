/*
Package api holds the wire types and configuration shared by the loader HTTP
server (package httpserver) and its client (package api/clients).

# Endpoints

  - POST /api/resolve: body ResolveRequest, response application/dicom bytes
    with the serving strategy in the X-Loader-Strategy header
  - POST /api/files?name=<name>: body raw DICOM bytes, response AddFileResponse
  - GET /api/files: response []FileInfo
  - GET /api/files/{handle}: response application/dicom bytes
  - GET /livez, /readyz, /drain, /undrain: health and drain control

Errors are returned as ErrorResponse with a status derived from the error:
422 when no loader applies, 401 and 404 propagated from upstream servers or
the file registry, 503 for unavailable storage, 504 on timeout and 502 for
other upstream failures.
*/
package api
