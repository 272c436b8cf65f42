package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

// MetadataOptions bounds the outbound fetcher.
type MetadataOptions struct {
	Timeout            time.Duration
	MaxBodyBytes       int64
	AmazonMaxBodyBytes int64
}

// MetadataService scrapes best-effort Open Graph metadata from product
// pages so shop owners do not fill in titles and images by hand. Targets
// are untrusted URLs, so the fetch refuses private addresses and reads a
// bounded prefix of the body.
type MetadataService struct {
	client    *resty.Client
	validator *validator.Validate
	logger    *zap.Logger

	maxBody       int64
	amazonMaxBody int64
}

// NewMetadataService constructs a MetadataService instance.
func NewMetadataService(opts MetadataOptions, validate *validator.Validate, logger *zap.Logger) *MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 100 << 10
	}
	if opts.AmazonMaxBodyBytes <= 0 {
		opts.AmazonMaxBodyBytes = 250 << 10
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; qrshelf-bot/1.0)").
		SetDoNotParseResponse(true)

	return &MetadataService{
		client:        client,
		validator:     validate,
		logger:        logger,
		maxBody:       opts.MaxBodyBytes,
		amazonMaxBody: opts.AmazonMaxBodyBytes,
	}
}

// Fetch scrapes the metadata of one product URL. Missing fields stay
// empty; only transport-level failures surface as errors.
func (s *MetadataService) Fetch(ctx context.Context, req models.FetchMetadataRequest) (*models.LinkMetadata, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid metadata payload")
	}

	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "url must be http or https")
	}
	if err := refuseInternalHost(ctx, target.Hostname()); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	limit := s.maxBody
	if isAmazonHost(target.Hostname()) {
		limit = s.amazonMaxBody
	}

	meta := &models.LinkMetadata{}
	fetchFailed := false

	resp, err := s.client.R().SetContext(ctx).Get(target.String())
	if err != nil || resp.StatusCode() >= 400 {
		// Bot blocks and captchas land here; the fallback service below
		// often still sees the page.
		fetchFailed = true
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close() //nolint:errcheck
		}
	} else {
		raw := resp.RawBody()
		body, readErr := io.ReadAll(io.LimitReader(raw, limit))
		raw.Close() //nolint:errcheck
		if readErr != nil {
			return nil, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read body")
		}
		meta = parseMetadata(string(body), target)
		if isAmazonHost(target.Hostname()) && meta.Image == "" {
			meta.Image = amazonImageFromJSON(string(body))
		}
	}

	if fetchFailed || meta.Image == "" || (isAmazonHost(target.Hostname()) && meta.Title == "") {
		s.microlinkFallback(ctx, req.URL, meta)
	}
	if fetchFailed && meta.Title == "" && meta.Image == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "could not fetch metadata for url")
	}

	if meta.SiteName == "" {
		meta.SiteName = strings.TrimPrefix(target.Hostname(), "www.")
	}
	if isAmazonHost(target.Hostname()) {
		meta.Title = cleanAmazonTitle(meta.Title)
	}
	return meta, nil
}

type microlinkResponse struct {
	Data struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Image       struct {
			URL string `json:"url"`
		} `json:"image"`
		Logo struct {
			URL string `json:"url"`
		} `json:"logo"`
	} `json:"data"`
}

// microlinkFallback fills missing fields from the microlink.io API.
// Strictly best effort, every failure is ignored.
func (s *MetadataService) microlinkFallback(ctx context.Context, rawURL string, meta *models.LinkMetadata) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"url":        rawURL,
			"screenshot": "false",
			"video":      "false",
			"audio":      "false",
		}).
		Get("https://api.microlink.io")
	if err != nil || resp.StatusCode() >= 400 {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close() //nolint:errcheck
		}
		return
	}

	raw := resp.RawBody()
	body, err := io.ReadAll(io.LimitReader(raw, s.maxBody))
	raw.Close() //nolint:errcheck
	if err != nil {
		return
	}

	var parsed microlinkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		s.logger.Debug("microlink response unreadable", zap.Error(err))
		return
	}

	if meta.Title == "" {
		meta.Title = parsed.Data.Title
	}
	if meta.Description == "" {
		meta.Description = parsed.Data.Description
	}
	if meta.Image == "" {
		meta.Image = parsed.Data.Image.URL
	}
	if meta.Favicon == "" {
		meta.Favicon = parsed.Data.Logo.URL
	}
}

var (
	ogTagRe    = regexp.MustCompile(`(?is)<meta[^>]+(?:property|name)=["'](og:title|og:image|og:description|og:site_name|description)["'][^>]+content=["']([^"']*)["']`)
	ogTagRevRe = regexp.MustCompile(`(?is)<meta[^>]+content=["']([^"']*)["'][^>]+(?:property|name)=["'](og:title|og:image|og:description|og:site_name|description)["']`)
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	faviconRe  = regexp.MustCompile(`(?is)<link[^>]+rel=["'](?:shortcut )?icon["'][^>]+href=["']([^"']+)["']`)
	// Amazon keeps the gallery image URLs in inline JSON rather than OG tags.
	amazonHiResRe = regexp.MustCompile(`"hiRes":"(https://[^"]+)"`)
	amazonLargeRe = regexp.MustCompile(`"large":"(https://[^"]+)"`)
)

func parseMetadata(body string, base *url.URL) *models.LinkMetadata {
	meta := &models.LinkMetadata{}
	fields := map[string]*string{
		"og:title":       &meta.Title,
		"og:image":       &meta.Image,
		"og:description": &meta.Description,
		"og:site_name":   &meta.SiteName,
	}

	apply := func(key, content string) {
		if key == "description" {
			if meta.Description == "" {
				meta.Description = content
			}
			return
		}
		if dest, ok := fields[key]; ok && *dest == "" {
			*dest = content
		}
	}
	for _, m := range ogTagRe.FindAllStringSubmatch(body, -1) {
		apply(strings.ToLower(m[1]), m[2])
	}
	for _, m := range ogTagRevRe.FindAllStringSubmatch(body, -1) {
		apply(strings.ToLower(m[2]), m[1])
	}

	if meta.Title == "" {
		if m := titleRe.FindStringSubmatch(body); m != nil {
			meta.Title = strings.TrimSpace(m[1])
		}
	}
	if m := faviconRe.FindStringSubmatch(body); m != nil {
		meta.Favicon = absoluteURL(base, m[1])
	} else {
		meta.Favicon = base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	meta.Image = absoluteURL(base, meta.Image)
	return meta
}

func amazonImageFromJSON(body string) string {
	if m := amazonHiResRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := amazonLargeRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

func absoluteURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

func isAmazonHost(host string) bool {
	host = strings.ToLower(host)
	return strings.Contains(host, "amazon.") || strings.HasSuffix(host, "amzn.to")
}

var amazonTitleNoiseRes = []*regexp.Regexp{
	regexp.MustCompile(`\s*:\s*Amazon\.com\s*:.*$`),
	regexp.MustCompile(`\s*-\s*Amazon\.com$`),
	regexp.MustCompile(`^Amazon\.com\s*:\s*`),
}

// cleanAmazonTitle strips the storefront boilerplate Amazon appends to
// product page titles.
func cleanAmazonTitle(title string) string {
	for _, re := range amazonTitleNoiseRes {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// refuseInternalHost rejects targets that resolve to loopback, private or
// link-local addresses.
func refuseInternalHost(ctx context.Context, host string) error {
	if host == "" || strings.EqualFold(host, "localhost") {
		return fmt.Errorf("host %q is not allowed", host)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("could not resolve host %q", host)
	}
	for _, ip := range ips {
		if ip.IP.IsLoopback() || ip.IP.IsPrivate() || ip.IP.IsLinkLocalUnicast() || ip.IP.IsUnspecified() {
			return fmt.Errorf("host %q resolves to a private address", host)
		}
	}
	return nil
}
