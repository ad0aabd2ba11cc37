package github

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

/*
Gateway owns the authenticated GitHub clients. Clients are keyed by token and
created lazily on Connect, which must pass the authenticated identity check
before the client is considered live. Commands receive the Gateway by explicit
dependency passing and call Disconnect after every execution, so a fresh
identity check happens on each call.
*/
type Gateway struct {
	mu      sync.Mutex
	clients map[string]*gogithub.Client
	last    string
	timeout time.Duration
	baseURL string
}

type GatewayOption func(*Gateway)

// WithTimeout sets the fixed upper bound applied to every upstream request.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithBaseURL points the gateway at an alternate API root, such as a GitHub
// Enterprise instance or a test server. The URL must end with a slash to be
// accepted by the underlying client.
func WithBaseURL(rawURL string) GatewayOption {
	return func(g *Gateway) {
		g.baseURL = rawURL
	}
}

func NewGateway(opts ...GatewayOption) *Gateway {
	gateway := &Gateway{
		clients: make(map[string]*gogithub.Client),
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(gateway)
	}

	return gateway
}

/*
Connect authenticates a client for the given token and verifies it with a
cheap identity check against the authenticated-user endpoint. The client is
only stored once that check succeeds.
*/
func (gateway *Gateway) Connect(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingCredential
	}

	gateway.mu.Lock()
	if _, ok := gateway.clients[token]; ok {
		gateway.last = token
		gateway.mu.Unlock()
		return nil
	}
	gateway.mu.Unlock()

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = gateway.timeout

	client := gogithub.NewClient(httpClient)

	if gateway.baseURL != "" {
		parsed, err := url.Parse(gateway.baseURL)
		if err != nil {
			return Classify(err)
		}
		if !strings.HasSuffix(parsed.Path, "/") {
			parsed.Path += "/"
		}
		client.BaseURL = parsed
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		log.Error("GitHub identity check failed", "error", err)
		return Classify(err)
	}

	log.Info("connected to GitHub", "login", user.GetLogin())

	gateway.mu.Lock()
	gateway.clients[token] = client
	gateway.last = token
	gateway.mu.Unlock()

	return nil
}

/*
Client returns the connection for the given token, falling back to the most
recently connected one when the token is empty or unknown.
*/
func (gateway *Gateway) Client(token string) (*gogithub.Client, error) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	if client, ok := gateway.clients[token]; ok {
		return client, nil
	}

	if client, ok := gateway.clients[gateway.last]; ok {
		return client, nil
	}

	return nil, errors.New("not connected to GitHub: call Connect first")
}

// Disconnect drops every held client.
func (gateway *Gateway) Disconnect() {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.clients = make(map[string]*gogithub.Client)
	gateway.last = ""
}

// connected reports the number of live clients, for tests.
func (gateway *Gateway) connected() int {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	return len(gateway.clients)
}
