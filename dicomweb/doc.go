/*
Package dicomweb implements the network transports used by the loader: WADO-RS
instance retrieval, plain WADO-URI fetches, authorization header providers and
a retry hook for transient failures.

# Retrieval

Client.RetrieveInstance requests

	{wadoRoot}/studies/{study}/series/{series}/instances/{sop}

with Accept: multipart/related; type="application/dicom" and returns the bytes
of the first part. Client.Fetch is a plain GET returning the whole body.

Non-success statuses are returned as *HTTPError, which matches
interfaces.ErrUnauthorized (401) and interfaces.ErrInstanceNotFound (404) with
errors.Is. Every failure is reported to the configured ErrorInterceptor before
it is returned.

# Retries

RetryHook wraps the HTTP client of a single retrieval. Connection errors and
the statuses 408, 429, 500, 502, 503 and 504 are retried with exponential
backoff; 401 and 404 are returned after the first attempt.

	hook := dicomweb.RetryHook(dicomweb.DefaultRetryPolicy(), log)
*/
package dicomweb
