package interfaces

import (
	"errors"
)

// DocumentModality marks a display set that carries an encapsulated document
// (PDF, SR rendering) instead of images.
const DocumentModality = "DOC"

var (
	// ErrNoValidLoader is returned when no retrieval strategy applies to a dataset.
	ErrNoValidLoader = errors.New("invalid dicom data loader")

	// ErrUnauthorized is matched by transport errors caused by an HTTP 401 response.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInstanceNotFound is matched by transport errors caused by an HTTP 404 response.
	ErrInstanceNotFound = errors.New("instance not found on server")

	// ErrFileNotRegistered is returned when a local file handle is unknown to the file manager.
	ErrFileNotRegistered = errors.New("file not registered")

	// ErrEmptyImage is returned when a cached image carries no raw byte array.
	ErrEmptyImage = errors.New("cached image has no pixel data buffer")
)

// Instance is a single imaging instance as indexed by the viewer catalog.
type Instance struct {
	// ImageID is the opaque identifier, optionally prefixed with a scheme ("wadors:...").
	ImageID string `json:"imageId,omitempty"`

	// URL is used as the identifier when ImageID is empty.
	URL string `json:"url,omitempty"`

	WADORoot          string `json:"wadoRoot,omitempty"`
	StudyInstanceUID  string `json:"StudyInstanceUID,omitempty"`
	SeriesInstanceUID string `json:"SeriesInstanceUID,omitempty"`
	SOPInstanceUID    string `json:"SOPInstanceUID,omitempty"`
}

// GetImageID returns the identifier of the instance, falling back to its URL.
// It is safe to call on a nil instance.
func (i *Instance) GetImageID() string {
	if i == nil {
		return ""
	}
	if i.ImageID != "" {
		return i.ImageID
	}
	return i.URL
}

// DisplaySet is a viewer-facing grouping of instances.
type DisplaySet struct {
	DisplaySetInstanceUID string `json:"displaySetInstanceUID"`
	Modality              string `json:"Modality,omitempty"`
}

// Series groups instances of a study.
type Series struct {
	SeriesInstanceUID string      `json:"SeriesInstanceUID,omitempty"`
	Instances         []*Instance `json:"instances,omitempty"`
}

// Study is one entry of the study collection the viewer has indexed.
type Study struct {
	StudyInstanceUID string       `json:"StudyInstanceUID,omitempty"`
	DisplaySets      []DisplaySet `json:"displaySets,omitempty"`
	Series           []Series     `json:"series,omitempty"`
}

// HasDisplaySet reports whether the study contains the given display set.
func (s *Study) HasDisplaySet(displaySetInstanceUID string) bool {
	for _, ds := range s.DisplaySets {
		if ds.DisplaySetInstanceUID == displaySetInstanceUID {
			return true
		}
	}
	return false
}

// FirstInstance returns the first instance of the first series, or nil.
func (s *Study) FirstInstance() *Instance {
	if len(s.Series) == 0 || len(s.Series[0].Instances) == 0 {
		return nil
	}
	return s.Series[0].Instances[0]
}

// Dataset describes the instance data a caller wants resolved. It either
// references an image instance directly, points at a display set, or carries
// dataset-level retrieval fields.
type Dataset struct {
	LocalFile             bool        `json:"localFile,omitempty"`
	Images                []*Instance `json:"images,omitempty"`
	DisplaySetInstanceUID string      `json:"displaySetInstanceUID,omitempty"`

	StudyInstanceUID     string            `json:"StudyInstanceUID,omitempty"`
	SeriesInstanceUID    string            `json:"SeriesInstanceUID,omitempty"`
	SOPInstanceUID       string            `json:"SOPInstanceUID,omitempty"`
	WADORoot             string            `json:"wadoRoot,omitempty"`
	WADOURI              string            `json:"wadoUri,omitempty"`
	AuthorizationHeaders map[string]string `json:"authorizationHeaders,omitempty"`
}

// ImageInstance returns the image instance attached to the dataset, or nil.
func (d *Dataset) ImageInstance() *Instance {
	if d == nil || len(d.Images) == 0 {
		return nil
	}
	return d.Images[0]
}

// ImageData holds the raw encoded buffer backing a decoded image.
type ImageData struct {
	ByteArray []byte
}

// Image is an entry of the decoded-image cache.
type Image struct {
	ImageID string
	Data    *ImageData
}
