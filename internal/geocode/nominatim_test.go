package geocode_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/spotterlabs/beacon/internal/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestNominatimProvider_Geocode(t *testing.T) {
	logger := slog.Default()
	ctx := t.Context()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Rynok Square 1, Lviv", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Contains(t, req.Header.Get("User-Agent"), "Beacon-Proximity-Engine")

				responseBody := `[{"lat":"49.8419","lon":"24.0315"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocode.NewNominatimProviderWithClient(mockClient, unlimited(), logger)
		coords, err := provider.Geocode(ctx, "Rynok Square 1, Lviv")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 49.8419, coords.Latitude, 0.0001)
		assert.InEpsilon(t, 24.0315, coords.Longitude, 0.0001)
	})

	t.Run("empty address", func(t *testing.T) {
		provider := geocode.NewNominatimProviderWithClient(&mockHTTPClient{}, unlimited(), logger)
		_, err := provider.Geocode(ctx, "")

		require.ErrorIs(t, err, geocode.ErrNominatimEmptyAddress)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
				}, nil
			},
		}

		provider := geocode.NewNominatimProviderWithClient(mockClient, unlimited(), logger)
		coords, err := provider.Geocode(ctx, "nowhere at all")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocode.ErrNominatimEmptyResponse)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusTooManyRequests,
					Body:       io.NopCloser(bytes.NewBufferString(`{"error":"Rate limit exceeded"}`)),
				}, nil
			},
		}

		provider := geocode.NewNominatimProviderWithClient(mockClient, unlimited(), logger)
		_, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid coordinates in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[{"lat":"abc","lon":"def"}]`)),
				}, nil
			},
		}

		provider := geocode.NewNominatimProviderWithClient(mockClient, unlimited(), logger)
		_, err := provider.Geocode(ctx, "some address")

		require.ErrorIs(t, err, geocode.ErrNominatimInvalidCoords)
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocode.NewNominatimProviderWithClient(mockClient, unlimited(), logger)
		_, err := provider.Geocode(ctx, "some address")

		require.ErrorIs(t, err, assert.AnError)
	})
}
