package instagram

import (
	"bytes"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"context"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

// MetadataClient fetches profile pages anonymously and reads the
// og:description meta tag, which carries the public follower line even when
// the rest of the page sits behind the login wall.
type MetadataClient struct {
	http *resty.Client
	log  logger.Logger
}

// NewMetadataClient creates a metadata client with the given browser
// identity and request timeout
func NewMetadataClient(userAgent string, timeout time.Duration) *MetadataClient {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(timeout)

	return &MetadataClient{
		http: client,
		log:  logger.GetLogger(),
	}
}

// FetchDescription retrieves the og:description content for a profile URL.
// A missing tag is a not-found error, not a parse failure; Instagram strips
// it from deactivated profiles.
func (c *MetadataClient) FetchDescription(ctx context.Context, profileURL string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(profileURL)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "fetch profile page", err)
	}
	if resp.StatusCode() == 404 {
		return "", errs.New(errs.ErrorTypeNotFound, "profile does not exist")
	}
	if resp.StatusCode() != 200 {
		return "", errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("profile page returned status %d", resp.StatusCode()))
	}

	desc, err := descriptionFromHTML(resp.Body())
	if err != nil {
		return "", err
	}

	c.log.DebugWithFields("Fetched profile metadata", map[string]interface{}{
		"url":         profileURL,
		"description": desc,
	})
	return desc, nil
}

// descriptionFromHTML extracts the og:description content attribute
func descriptionFromHTML(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeParsing, "parse profile page", err)
	}

	content, ok := doc.Find(`meta[property="og:description"]`).Attr("content")
	if !ok {
		// Some variants emit the tag with name= instead of property=
		content, ok = doc.Find(`meta[name="og:description"]`).Attr("content")
	}
	if !ok || strings.TrimSpace(content) == "" {
		return "", errs.New(errs.ErrorTypeNotFound, "og:description not present")
	}
	return strings.TrimSpace(content), nil
}
