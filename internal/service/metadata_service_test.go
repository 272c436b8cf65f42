package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

func TestParseMetadataOpenGraph(t *testing.T) {
	base, _ := url.Parse("https://example.com/products/mug")
	body := `<html><head>
		<meta property="og:title" content="Ceramic Mug" />
		<meta property="og:image" content="/images/mug.jpg" />
		<meta property="og:description" content="A sturdy mug." />
		<meta property="og:site_name" content="Example Shop" />
		<link rel="icon" href="/favicon.png" />
		<title>fallback title</title>
	</head></html>`

	meta := parseMetadata(body, base)
	assert.Equal(t, "Ceramic Mug", meta.Title)
	assert.Equal(t, "https://example.com/images/mug.jpg", meta.Image)
	assert.Equal(t, "A sturdy mug.", meta.Description)
	assert.Equal(t, "Example Shop", meta.SiteName)
	assert.Equal(t, "https://example.com/favicon.png", meta.Favicon)
}

func TestParseMetadataReversedAttributeOrder(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	body := `<meta content="Ceramic Mug" property="og:title" />`

	meta := parseMetadata(body, base)
	assert.Equal(t, "Ceramic Mug", meta.Title)
}

func TestParseMetadataFallbacks(t *testing.T) {
	base, _ := url.Parse("https://example.com/page")
	body := `<html><head>
		<title>Plain Title</title>
		<meta name="description" content="plain description" />
	</head></html>`

	meta := parseMetadata(body, base)
	assert.Equal(t, "Plain Title", meta.Title)
	assert.Equal(t, "plain description", meta.Description)
	assert.Equal(t, "https://example.com/favicon.ico", meta.Favicon)
	assert.Empty(t, meta.Image)
}

func TestAmazonImageFromJSON(t *testing.T) {
	body := `{"colorImages":{"initial":[{"hiRes":"https://m.media-amazon.com/images/I/hi.jpg","large":"https://m.media-amazon.com/images/I/lg.jpg"}]}}`
	assert.Equal(t, "https://m.media-amazon.com/images/I/hi.jpg", amazonImageFromJSON(body))

	largeOnly := `{"large":"https://m.media-amazon.com/images/I/lg.jpg"}`
	assert.Equal(t, "https://m.media-amazon.com/images/I/lg.jpg", amazonImageFromJSON(largeOnly))

	assert.Empty(t, amazonImageFromJSON("<html></html>"))
}

func TestCleanAmazonTitle(t *testing.T) {
	assert.Equal(t, "Ceramic Mug", cleanAmazonTitle("Amazon.com: Ceramic Mug"))
	assert.Equal(t, "Ceramic Mug", cleanAmazonTitle("Ceramic Mug - Amazon.com"))
	assert.Equal(t, "Ceramic Mug", cleanAmazonTitle("Ceramic Mug : Amazon.com : Kitchen"))
	assert.Equal(t, "Plain Title", cleanAmazonTitle("Plain Title"))
}

func TestIsAmazonHost(t *testing.T) {
	assert.True(t, isAmazonHost("www.amazon.com"))
	assert.True(t, isAmazonHost("amazon.co.uk"))
	assert.False(t, isAmazonHost("example.com"))
}

func TestRefuseInternalHost(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, refuseInternalHost(ctx, "localhost"))
	assert.Error(t, refuseInternalHost(ctx, ""))
}

func TestMetadataServiceFetchRejectsBadURL(t *testing.T) {
	svc := NewMetadataService(MetadataOptions{}, validator.New(), zap.NewNop())

	_, err := svc.Fetch(context.Background(), models.FetchMetadataRequest{URL: "ftp://example.com"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestMetadataServiceFetchRejectsLocalhost(t *testing.T) {
	svc := NewMetadataService(MetadataOptions{}, validator.New(), zap.NewNop())

	_, err := svc.Fetch(context.Background(), models.FetchMetadataRequest{URL: "http://localhost:8080/admin"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
