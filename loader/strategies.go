package loader

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/MDWio/ohif-viewer/interfaces"
)

const defaultRelayFileName = "instance.dcm"

// localData loads files registered locally. The image id comes from the
// attached instance or, failing that, from the study owning the display set.
func (s *Service) localData(ds *interfaces.Dataset, studies []interfaces.Study) (operation, bool) {
	if !ds.LocalFile {
		return nil, false
	}

	imageID := ds.ImageInstance().GetImageID()
	if !AllPresent(imageID) {
		imageID = findImageIDOnStudies(studies, ds.DisplaySetInstanceUID)
	}
	if !AllPresent(imageID) {
		return nil, false
	}

	return func(ctx context.Context) ([]byte, error) {
		return s.fileLoader.LoadFile(ctx, imageID)
	}, true
}

func findImageIDOnStudies(studies []interfaces.Study, displaySetInstanceUID string) string {
	for i := range studies {
		if studies[i].HasDisplaySet(displaySetInstanceUID) {
			return studies[i].FirstInstance().GetImageID()
		}
	}
	return ""
}

// dataByImageType dispatches on the scheme of the attached image instance.
func (s *Service) dataByImageType(ds *interfaces.Dataset, studies []interfaces.Study) (operation, bool) {
	instance := ds.ImageInstance()
	if instance == nil {
		return s.documentData(studies)
	}

	imageID := instance.GetImageID()

	switch SchemeOf(imageID) {
	case SchemeDicomFile:
		return func(ctx context.Context) ([]byte, error) {
			return s.cachedImageData(ctx, imageID)
		}, true

	case SchemeDicomWeb:
		link := stripRelayPrefix(imageID)
		if !AllPresent(link) {
			return nil, false
		}
		return func(ctx context.Context) ([]byte, error) {
			return s.relay(ctx, link)
		}, true

	case SchemeWADORS:
		req := interfaces.RetrieveInstanceRequest{
			WADORoot:          instance.WADORoot,
			StudyInstanceUID:  instance.StudyInstanceUID,
			SeriesInstanceUID: instance.SeriesInstanceUID,
			SOPInstanceUID:    instance.SOPInstanceUID,
		}
		if !AllPresent(req.WADORoot, req.StudyInstanceUID, req.SeriesInstanceUID, req.SOPInstanceUID) {
			return nil, false
		}
		return func(ctx context.Context) ([]byte, error) {
			return s.retrieveInstance(ctx, req, nil)
		}, true

	case SchemeWADOURI:
		target := stripScheme(imageID)
		if !AllPresent(target) {
			return nil, false
		}
		return func(ctx context.Context) ([]byte, error) {
			return s.fetcher.Fetch(ctx, target, s.headers(ctx, nil))
		}, true

	default:
		return nil, false
	}
}

// documentData handles display sets holding an encapsulated document: the
// first instance's URL is relayed through the file manager.
func (s *Service) documentData(studies []interfaces.Study) (operation, bool) {
	if len(studies) == 0 || len(studies[0].DisplaySets) == 0 {
		return nil, false
	}
	if studies[0].DisplaySets[0].Modality != interfaces.DocumentModality {
		return nil, false
	}

	instance := studies[0].FirstInstance()
	if instance == nil {
		return nil, false
	}

	link := stripRelayPrefix(instance.URL)
	if !AllPresent(link) {
		return nil, false
	}

	return func(ctx context.Context) ([]byte, error) {
		return s.relay(ctx, link)
	}, true
}

// dataByDatasetType uses the retrieval fields of the dataset itself: WADO-RS
// when the root and all UIDs are known, WADO-URI otherwise.
func (s *Service) dataByDatasetType(ds *interfaces.Dataset, _ []interfaces.Study) (operation, bool) {
	if AllPresent(ds.WADORoot, ds.StudyInstanceUID, ds.SeriesInstanceUID, ds.SOPInstanceUID) {
		req := interfaces.RetrieveInstanceRequest{
			WADORoot:          ds.WADORoot,
			StudyInstanceUID:  ds.StudyInstanceUID,
			SeriesInstanceUID: ds.SeriesInstanceUID,
			SOPInstanceUID:    ds.SOPInstanceUID,
		}
		headers := ds.AuthorizationHeaders
		return func(ctx context.Context) ([]byte, error) {
			return s.retrieveInstance(ctx, req, headers)
		}, true
	}

	if AllPresent(ds.WADOURI) {
		target := ds.WADOURI
		headers := ds.AuthorizationHeaders
		return func(ctx context.Context) ([]byte, error) {
			return s.fetcher.Fetch(ctx, target, s.headers(ctx, headers))
		}, true
	}

	return nil, false
}

func (s *Service) cachedImageData(ctx context.Context, imageID string) ([]byte, error) {
	image, err := s.images.LoadAndCacheImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if image == nil || image.Data == nil || image.Data.ByteArray == nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrEmptyImage, imageID)
	}
	return image.Data.ByteArray, nil
}

// relay fetches link, registers the blob with the file manager and loads it
// back through the local file loader.
func (s *Service) relay(ctx context.Context, link string) ([]byte, error) {
	blob, err := s.fetcher.Fetch(ctx, link, nil)
	if err != nil {
		return nil, err
	}

	handle, err := s.files.Add(ctx, blob, relayFileName(link))
	if err != nil {
		return nil, fmt.Errorf("failed to register relayed file: %w", err)
	}

	return s.fileLoader.LoadFile(ctx, handle)
}

func (s *Service) retrieveInstance(ctx context.Context, req interfaces.RetrieveInstanceRequest, headers map[string]string) ([]byte, error) {
	req.Headers = s.headers(ctx, headers)
	req.ErrorInterceptor = s.cfg.ErrorInterceptor
	req.RequestHooks = s.cfg.RequestHooks
	return s.retriever.RetrieveInstance(ctx, req)
}

func relayFileName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return defaultRelayFileName
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return defaultRelayFileName
	}
	return name
}
