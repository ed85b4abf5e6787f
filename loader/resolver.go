package loader

import (
	"context"
	"errors"
	"net/http"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// Strategy identifies one of the retrieval strategies tried by the resolver.
type Strategy int

const (
	StrategyNone Strategy = iota
	// StrategyLocalFile loads files the user registered locally.
	StrategyLocalFile
	// StrategyImageType dispatches on the scheme of the attached image instance.
	StrategyImageType
	// StrategyDataset uses the retrieval fields carried by the dataset itself.
	StrategyDataset
)

func (s Strategy) String() string {
	switch s {
	case StrategyLocalFile:
		return "local-file"
	case StrategyImageType:
		return "image-type"
	case StrategyDataset:
		return "dataset"
	default:
		return "none"
	}
}

// Collaborators are the external components the resolver delegates to.
type Collaborators struct {
	Files      interfaces.FileManager
	FileLoader interfaces.FileLoader
	Images     interfaces.ImageCache
	Retriever  interfaces.InstanceRetriever
	Fetcher    interfaces.Fetcher
}

// TransportConfig configures the network-bound strategies.
type TransportConfig struct {
	// Headers supplies authorization headers when a dataset carries none.
	Headers interfaces.HeaderProvider

	// ErrorInterceptor is handed to every multipart retrieval.
	ErrorInterceptor interfaces.ErrorInterceptor

	// RequestHooks decorate multipart retrievals; the retry hook belongs here.
	RequestHooks []interfaces.RequestHook
}

// Service resolves datasets into instance bytes. It holds no per-call state
// and is safe for concurrent use.
type Service struct {
	files      interfaces.FileManager
	fileLoader interfaces.FileLoader
	images     interfaces.ImageCache
	retriever  interfaces.InstanceRetriever
	fetcher    interfaces.Fetcher
	cfg        TransportConfig
}

// New creates a resolver. All collaborators are required.
func New(c Collaborators, cfg TransportConfig) (*Service, error) {
	if c.Files == nil || c.FileLoader == nil || c.Images == nil || c.Retriever == nil || c.Fetcher == nil {
		return nil, errors.New("loader: all collaborators must be provided")
	}

	return &Service{
		files:      c.Files,
		fileLoader: c.FileLoader,
		images:     c.Images,
		retriever:  c.Retriever,
		fetcher:    c.Fetcher,
		cfg:        cfg,
	}, nil
}

type candidate struct {
	strategy Strategy
	sel      func(ds *interfaces.Dataset, studies []interfaces.Study) (operation, bool)
}

// candidates are listed in priority order.
func (s *Service) candidates() []candidate {
	return []candidate{
		{StrategyLocalFile, s.localData},
		{StrategyImageType, s.dataByImageType},
		{StrategyDataset, s.dataByDatasetType},
	}
}

// Resolve selects the first applicable strategy for ds, starts it and
// returns the pending retrieval. Selection itself has no side effects.
// ErrNoValidLoader is returned when no strategy applies.
func (s *Service) Resolve(ctx context.Context, ds *interfaces.Dataset, studies []interfaces.Study) (*Pending, error) {
	if ds == nil {
		return nil, interfaces.ErrNoValidLoader
	}

	for _, c := range s.candidates() {
		op, ok := c.sel(ds, studies)
		if !ok {
			continue
		}
		return start(ctx, c.strategy, op), nil
	}

	return nil, interfaces.ErrNoValidLoader
}

// Load resolves ds and waits for the retrieval to complete.
func (s *Service) Load(ctx context.Context, ds *interfaces.Dataset, studies []interfaces.Study) ([]byte, error) {
	pending, err := s.Resolve(ctx, ds, studies)
	if err != nil {
		return nil, err
	}
	return pending.Wait(ctx)
}

// headers returns override when it is non-empty, the provider's headers otherwise.
func (s *Service) headers(ctx context.Context, override map[string]string) http.Header {
	if len(override) > 0 {
		h := make(http.Header, len(override))
		for k, v := range override {
			h.Set(k, v)
		}
		return h
	}
	if s.cfg.Headers == nil {
		return http.Header{}
	}
	return s.cfg.Headers.AuthorizationHeader(ctx).Clone()
}
