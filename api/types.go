package api

import (
	"github.com/MDWio/ohif-viewer/interfaces"
)

// StrategyHeader carries the name of the strategy that served a resolution.
const StrategyHeader = "X-Loader-Strategy"

// ContentTypeDICOM is the media type of resolved instance bytes.
const ContentTypeDICOM = "application/dicom"

// ResolveRequest is the body of POST /api/resolve.
type ResolveRequest struct {
	// Dataset is the descriptor to resolve.
	Dataset *interfaces.Dataset `json:"dataset"`

	// Studies is the study collection used for display-set lookups and the
	// document fallback. It may be empty.
	Studies []interfaces.Study `json:"studies,omitempty"`
}

// AddFileResponse is returned by POST /api/files.
type AddFileResponse struct {
	Handle string `json:"handle"`
	Size   int    `json:"size"`
}

// FileInfo describes a file registered with the service.
type FileInfo struct {
	Handle  string `json:"handle"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	AddedAt string `json:"added_at"`
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
