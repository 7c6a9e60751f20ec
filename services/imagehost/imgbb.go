// Package imagehost uploads images to an ImgBB-compatible hosting API.
package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/payment"
)

const uploadPath = "/1/upload"

var ErrUploadFailed = errors.New("image upload failed")

type Client struct {
	baseURL    string
	apiKey     string
	expiration time.Duration
	http       *rest.Client
}

var _ payment.ImageHost = (*Client)(nil)

func NewClient(conf *core.Config) (*Client, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.ImageHost.BaseURL, "imageHostBaseURL"),
		vala.StringNotEmpty(conf.ImageHost.APIKey, "imageHostAPIKey"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "image host config")
	}
	return &Client{
		baseURL:    conf.ImageHost.BaseURL,
		apiKey:     conf.ImageHost.APIKey,
		expiration: conf.ImageHost.Expiration,
		http:       &rest.Client{HTTPClient: &http.Client{Timeout: 30 * time.Second}},
	}, nil
}

type uploadResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
		DeleteURL  string `json:"delete_url"`
		Thumb      struct {
			URL string `json:"url"`
		} `json:"thumb"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Upload(ctx context.Context, name string, content []byte) (payment.UploadedImage, error) {
	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(content))
	form.Set("name", name)
	if c.expiration > 0 {
		form.Set("expiration", strconv.Itoa(int(c.expiration.Seconds())))
	}

	res, err := c.http.SendWithContext(ctx, rest.Request{
		Method:      rest.Post,
		BaseURL:     c.baseURL + uploadPath,
		Headers:     map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		QueryParams: map[string]string{"key": c.apiKey},
		Body:        []byte(form.Encode()),
	})
	if err != nil {
		return payment.UploadedImage{}, errors.Wrap(err, "image host request")
	}

	var body uploadResponse
	if err = json.Unmarshal([]byte(res.Body), &body); err != nil {
		return payment.UploadedImage{}, errors.Wrapf(ErrUploadFailed, "status %d: unreadable response", res.StatusCode)
	}
	if res.StatusCode >= http.StatusBadRequest || !body.Success || body.Data.URL == "" {
		return payment.UploadedImage{}, errors.Wrapf(ErrUploadFailed, "status %d: %s", res.StatusCode, body.Error.Message)
	}
	return payment.UploadedImage{
		URL:        body.Data.URL,
		DisplayURL: body.Data.DisplayURL,
		DeleteURL:  body.Data.DeleteURL,
		ThumbURL:   body.Data.Thumb.URL,
	}, nil
}
