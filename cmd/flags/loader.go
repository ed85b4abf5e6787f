package flags

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MDWio/ohif-viewer/dicomweb"
	"github.com/MDWio/ohif-viewer/filemanager"
	"github.com/MDWio/ohif-viewer/imagecache"
	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/MDWio/ohif-viewer/loader"
	"github.com/MDWio/ohif-viewer/storage"
	"github.com/urfave/cli/v2"
)

// LoaderStack is the wired set of components behind a loader.Service.
type LoaderStack struct {
	Store    interfaces.BlobStore
	Files    *filemanager.Manager
	Images   *imagecache.Cache
	Client   *dicomweb.Client
	Resolver *loader.Service
}

// RetryPolicy reads the retry flags.
func RetryPolicy(cCtx *cli.Context) dicomweb.RetryPolicy {
	policy := dicomweb.DefaultRetryPolicy()
	policy.MaxAttempts = cCtx.Int(RetryAttemptsFlag.Name)
	policy.InitialInterval = cCtx.Duration(RetryInitialDelayFlag.Name)
	policy.MaxInterval = cCtx.Duration(RetryMaxDelayFlag.Name)
	return policy
}

// SetupLoader wires blob storage, the file manager, the image cache and the
// DICOMweb client into a resolver, from LoaderFlags.
func SetupLoader(cCtx *cli.Context, log *slog.Logger) (*LoaderStack, error) {
	locations := make([]interfaces.BlobStoreLocation, 0)
	for _, loc := range cCtx.StringSlice(BlobStoreFlag.Name) {
		locations = append(locations, interfaces.BlobStoreLocation(loc))
	}

	var factory interfaces.BlobStoreFactory = storage.NewBlobStoreFactory(log)
	store, err := factory.CreateMultiStore(locations)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}
	log.Info("Blob store configured", "location", store.LocationURI())

	files := filemanager.New(store, log)

	images, err := imagecache.New(cCtx.Int(ImageCacheSizeFlag.Name), files, log)
	if err != nil {
		return nil, err
	}

	interceptor := dicomweb.LogErrorInterceptor(log)
	client := dicomweb.NewClient(&http.Client{}, interceptor, log)

	resolver, err := loader.New(loader.Collaborators{
		Files:      files,
		FileLoader: files,
		Images:     images,
		Retriever:  client,
		Fetcher:    client,
	}, loader.TransportConfig{
		Headers:          dicomweb.BearerToken(cCtx.String(AuthTokenFlag.Name)),
		ErrorInterceptor: interceptor,
		RequestHooks:     []interfaces.RequestHook{dicomweb.RetryHook(RetryPolicy(cCtx), log)},
	})
	if err != nil {
		return nil, err
	}

	return &LoaderStack{
		Store:    store,
		Files:    files,
		Images:   images,
		Client:   client,
		Resolver: resolver,
	}, nil
}
