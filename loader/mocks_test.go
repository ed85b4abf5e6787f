package loader

import (
	"context"
	"net/http"

	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/stretchr/testify/mock"
)

type MockFileManager struct {
	mock.Mock
}

func (m *MockFileManager) Add(ctx context.Context, blob []byte, name string) (string, error) {
	args := m.Called(ctx, blob, name)
	return args.String(0), args.Error(1)
}

func (m *MockFileManager) LoadFile(ctx context.Context, handle string) ([]byte, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockImageCache struct {
	mock.Mock
}

func (m *MockImageCache) LoadAndCacheImage(ctx context.Context, imageID string) (*interfaces.Image, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Image), args.Error(1)
}

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) RetrieveInstance(ctx context.Context, req interfaces.RetrieveInstanceRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	args := m.Called(ctx, url, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type testEnv struct {
	files     *MockFileManager
	images    *MockImageCache
	retriever *MockRetriever
	fetcher   *MockFetcher
}

func newTestEnv() *testEnv {
	return &testEnv{
		files:     new(MockFileManager),
		images:    new(MockImageCache),
		retriever: new(MockRetriever),
		fetcher:   new(MockFetcher),
	}
}

func (e *testEnv) collaborators() Collaborators {
	return Collaborators{
		Files:      e.files,
		FileLoader: e.files,
		Images:     e.images,
		Retriever:  e.retriever,
		Fetcher:    e.fetcher,
	}
}

func (e *testEnv) assertExpectations(t mock.TestingT) {
	e.files.AssertExpectations(t)
	e.images.AssertExpectations(t)
	e.retriever.AssertExpectations(t)
	e.fetcher.AssertExpectations(t)
}
