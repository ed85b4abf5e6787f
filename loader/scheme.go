package loader

import (
	"regexp"
	"strings"
)

// Scheme is the transport hint carried by an image identifier.
type Scheme int

const (
	// SchemeUnknown covers identifiers without a recognized scheme.
	SchemeUnknown Scheme = iota
	// SchemeDicomFile identifiers are keys of the decoded-image cache.
	SchemeDicomFile
	// SchemeDicomWeb identifiers embed a link that is relayed through the file manager.
	SchemeDicomWeb
	// SchemeWADORS identifiers are retrieved with a multipart WADO-RS request.
	SchemeWADORS
	// SchemeWADOURI identifiers are fetched directly.
	SchemeWADOURI
)

const (
	dicomFileToken = "dicomfile"
	dicomWebToken  = "dicomweb"
	wadoRSToken    = "wadors"
	wadoURIToken   = "wadouri"
)

var schemeRegexp = regexp.MustCompile(`^\w+:`)

// ClassifyImageID returns the scheme token at the start of imageID, without
// the trailing colon, or "" when there is none.
func ClassifyImageID(imageID string) string {
	match := schemeRegexp.FindString(imageID)
	return strings.TrimSuffix(match, ":")
}

// ParseScheme maps a scheme token onto a Scheme. Tokens are case-sensitive.
func ParseScheme(token string) Scheme {
	switch token {
	case dicomFileToken:
		return SchemeDicomFile
	case dicomWebToken:
		return SchemeDicomWeb
	case wadoRSToken:
		return SchemeWADORS
	case wadoURIToken:
		return SchemeWADOURI
	default:
		return SchemeUnknown
	}
}

// SchemeOf classifies imageID and parses the resulting token.
func SchemeOf(imageID string) Scheme {
	return ParseScheme(ClassifyImageID(imageID))
}

func (s Scheme) String() string {
	switch s {
	case SchemeDicomFile:
		return dicomFileToken
	case SchemeDicomWeb:
		return dicomWebToken
	case SchemeWADORS:
		return wadoRSToken
	case SchemeWADOURI:
		return wadoURIToken
	default:
		return "unknown"
	}
}

// stripScheme removes everything up to and including the first colon.
func stripScheme(imageID string) string {
	return imageID[strings.Index(imageID, ":")+1:]
}

// stripRelayPrefix removes the first "dicomweb:" occurrence from a relayed link.
func stripRelayPrefix(link string) string {
	return strings.Replace(link, dicomWebToken+":", "", 1)
}
