package sheet

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/e/abc/pub?output=tsv"

func newTestFetcher(t *testing.T, cfg config.SheetConfig) (*Fetcher, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewFetcher(cfg, logger, WithHTTPClient(&http.Client{Transport: transport})), transport
}

func TestFetch_CachesUntilForced(t *testing.T) {
	f, transport := newTestFetcher(t, config.SheetConfig{URL: sheetURL, CacheTTL: time.Minute})
	transport.RegisterResponder(http.MethodGet, sheetURL,
		httpmock.NewStringResponder(http.StatusOK, "english_word\tchinese_definition\napple\t蘋果\n"))

	first, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, rowparser.ModeTSV, first.Mode)

	second, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, transport.GetTotalCallCount())

	forced, err := f.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, forced.FromCache)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	f, transport := newTestFetcher(t, config.SheetConfig{URL: sheetURL})
	transport.RegisterResponder(http.MethodGet, sheetURL, httpmock.NewStringResponder(http.StatusNotFound, "missing"))

	_, err := f.Fetch(context.Background(), false)
	var fetchErr *entity.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "Failed to fetch CSV: 404 Not Found", err.Error())
}

func TestFetch_EmptyBody(t *testing.T) {
	f, transport := newTestFetcher(t, config.SheetConfig{URL: sheetURL, CacheTTL: time.Minute})
	transport.RegisterResponder(http.MethodGet, sheetURL, httpmock.NewStringResponder(http.StatusOK, "  \n"))

	_, err := f.Fetch(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrEmptyBody)

	// failures are never cached
	_, err = f.Fetch(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrEmptyBody)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestFetch_ModeResolution(t *testing.T) {
	const csvURL = "https://example.com/words.csv"
	f, transport := newTestFetcher(t, config.SheetConfig{URL: csvURL})
	transport.RegisterResponder(http.MethodGet, csvURL, httpmock.NewStringResponder(http.StatusOK, "word\tdefinition\ncat\t貓\n"))

	p, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, rowparser.ModeTSV, p.Mode)

	f.format = "csv"
	p, err = f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, rowparser.ModeCSV, p.Mode)
}

func TestFetch_NoSource(t *testing.T) {
	f, _ := newTestFetcher(t, config.SheetConfig{})
	assert.False(t, f.Configured())
	_, err := f.Fetch(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrNoSource)
}
