// Package kakao talks to the Kakao OAuth and messaging APIs.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"
)

const (
	memoPath   = "/v2/api/talk/memo/default/send"
	userMePath = "/v2/user/me"

	maxErrorBody = 4 << 10
)

// Scopes requested at login: the email identifies the member, talk_message
// allows order notifications.
var Scopes = []string{"account_email", "talk_message"}

var ErrNoEmail = errors.New("kakao account has no email")

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
	Timeout      time.Duration
}

// APIError is a non-2xx answer from Kakao.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kakao api: status %d: %s", e.Status, e.Body)
}

// Client is a small Kakao REST client.
type Client struct {
	http   *http.Client
	oauth  *oauth2.Config
	apiURL string
}

// NewClient builds a client on a pooled cleanhttp transport.
func NewClient(cfg Config) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	authBase := strings.TrimRight(cfg.AuthBaseURL, "/")
	return &Client{
		http: httpClient,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authBase + "/oauth/authorize",
				TokenURL:  authBase + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL: strings.TrimRight(cfg.APIBaseURL, "/"),
	}
}

// AuthorizeURL is where the browser is sent to log in.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("kakao token exchange: %w", err)
	}
	return token.AccessToken, nil
}

type userMe struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email           string `json:"email"`
		IsEmailVerified bool   `json:"is_email_verified"`
	} `json:"kakao_account"`
}

// FetchEmail reads the account email of the token owner.
func (c *Client) FetchEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+userMePath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var me userMe
	if err := c.do(req, &me); err != nil {
		return "", err
	}
	if me.KakaoAccount.Email == "" {
		return "", ErrNoEmail
	}
	return me.KakaoAccount.Email, nil
}

type textTemplate struct {
	ObjectType  string       `json:"object_type"`
	Text        string       `json:"text"`
	Link        templateLink `json:"link"`
	ButtonTitle string       `json:"button_title,omitempty"`
}

type templateLink struct {
	WebURL       string `json:"web_url,omitempty"`
	MobileWebURL string `json:"mobile_web_url,omitempty"`
}

type memoResult struct {
	ResultCode int `json:"result_code"`
}

// SendToMe posts a default text template to the token owner's own chat.
func (c *Client) SendToMe(ctx context.Context, accessToken, text, linkURL string) error {
	tmpl, err := json.Marshal(textTemplate{
		ObjectType:  "text",
		Text:        text,
		Link:        templateLink{WebURL: linkURL, MobileWebURL: linkURL},
		ButtonTitle: "선물 보기",
	})
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}

	form := url.Values{"template_object": {string(tmpl)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+memoPath, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	var result memoResult
	if err := c.do(req, &result); err != nil {
		return err
	}
	if result.ResultCode != 0 {
		return fmt.Errorf("kakao memo: result code %d", result.ResultCode)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kakao request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode kakao response: %w", err)
	}
	return nil
}
