package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBlobStore implements interfaces.BlobStore for testing
type MockBlobStore struct {
	mock.Mock
	name string
}

func (m *MockBlobStore) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

func (m *MockBlobStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockBlobStore) Name() string {
	return m.name
}

func (m *MockBlobStore) LocationURI() string {
	return "mock://" + m.name
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiBlobStore_Available(t *testing.T) {
	tests := []struct {
		name     string
		stores   []bool
		expected bool
	}{
		{
			name:     "all stores available",
			stores:   []bool{true, true, true},
			expected: true,
		},
		{
			name:     "some stores available",
			stores:   []bool{false, true, false},
			expected: true,
		},
		{
			name:     "no stores available",
			stores:   []bool{false, false, false},
			expected: false,
		},
		{
			name:     "no stores",
			stores:   []bool{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stores []interfaces.BlobStore
			for i, available := range tt.stores {
				m := &MockBlobStore{name: fmt.Sprintf("mock-%d", i)}
				m.On("Available", mock.Anything).Return(available).Maybe()
				stores = append(stores, m)
			}

			multi := NewMultiBlobStore(stores, discardLogger())
			assert.Equal(t, tt.expected, multi.Available(context.Background()))

			for _, s := range stores {
				s.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiBlobStore_Fetch(t *testing.T) {
	testID := interfaces.ContentID([32]byte{1, 2, 3, 4})
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name        string
		setupMocks  func() []interfaces.BlobStore
		expected    []byte
		expectedErr error
		anyErr      bool
	}{
		{
			name: "first store successful",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, testID).Return(testData, nil)

				m2 := &MockBlobStore{name: "b"}

				return []interfaces.BlobStore{m1, m2}
			},
			expected: testData,
		},
		{
			name: "first store fails, second succeeds",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, testID).Return(nil, testErr)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, testID).Return(testData, nil)

				return []interfaces.BlobStore{m1, m2}
			},
			expected: testData,
		},
		{
			name: "content missing everywhere",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(false)

				return []interfaces.BlobStore{m1, m2}
			},
			expectedErr: interfaces.ErrContentNotFound,
		},
		{
			name: "all stores fail",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, testID).Return(nil, testErr)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				return []interfaces.BlobStore{m1, m2}
			},
			expectedErr: testErr,
		},
		{
			name: "unavailable stores are skipped",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(false)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, testID).Return(testData, nil)

				return []interfaces.BlobStore{m1, m2}
			},
			expected: testData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := tt.setupMocks()
			multi := NewMultiBlobStore(stores, discardLogger())

			data, err := multi.Fetch(context.Background(), testID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, data)

			for _, s := range stores {
				s.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiBlobStore_Store(t *testing.T) {
	testID := interfaces.ContentID([32]byte{1, 2, 3, 4})
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.BlobStore
		expectedID    interfaces.ContentID
		expectedError bool
	}{
		{
			name: "all stores successful",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Store", mock.Anything, testData).Return(testID, nil)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Store", mock.Anything, testData).Return(testID, nil)

				return []interfaces.BlobStore{m1, m2}
			},
			expectedID: testID,
		},
		{
			name: "some stores fail",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Store", mock.Anything, testData).Return(interfaces.ContentID{}, testErr)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Store", mock.Anything, testData).Return(testID, nil)

				return []interfaces.BlobStore{m1, m2}
			},
			expectedID: testID,
		},
		{
			name: "all stores fail",
			setupMocks: func() []interfaces.BlobStore {
				m1 := &MockBlobStore{name: "a"}
				m1.On("Available", mock.Anything).Return(false)

				m2 := &MockBlobStore{name: "b"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Store", mock.Anything, testData).Return(interfaces.ContentID{}, testErr)

				return []interfaces.BlobStore{m1, m2}
			},
			expectedID:    interfaces.ContentID{},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := tt.setupMocks()
			multi := NewMultiBlobStore(stores, discardLogger())

			id, err := multi.Store(context.Background(), testData)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedID, id)

			for _, s := range stores {
				s.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiBlobStore_LocationURI(t *testing.T) {
	multi := NewMultiBlobStore([]interfaces.BlobStore{
		&MockBlobStore{name: "a"},
		&MockBlobStore{name: "b"},
	}, nil)
	assert.Equal(t, "multi:[mock://a,mock://b]", multi.LocationURI())
}
