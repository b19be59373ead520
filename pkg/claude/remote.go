package claude

import (
	"context"
	"net/http"

	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/go-go-golems/replayer/pkg/security"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/settings"
	"github.com/pkg/errors"
)

// Remote builds a short-lived api.Client per call so the credential only
// lives as long as the request.
type Remote struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

type RemoteOption func(*Remote)

func WithRemoteHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.httpClient = c
		}
	}
}

func NewRemote(cs *settings.ClaudeSettings, options ...RemoteOption) (*Remote, error) {
	if cs == nil {
		return nil, errors.New("claude settings are nil")
	}
	baseURL := cs.BaseURL
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	normalized, err := security.NormalizeBaseURL(baseURL, security.BaseURLOptions{
		AllowHTTP:          cs.AllowHTTP,
		AllowLocalNetworks: cs.AllowHTTP,
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid claude.base-url")
	}

	r := &Remote{
		baseURL:    normalized,
		apiVersion: cs.APIVersion,
		httpClient: &http.Client{Timeout: cs.Timeout},
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

func (r *Remote) client(credential sessions.Credential) *api.Client {
	return api.NewClient(credential.Reveal(), r.baseURL,
		api.WithHTTPClient(r.httpClient),
		api.WithAPIVersion(r.apiVersion),
	)
}

func (r *Remote) Send(ctx context.Context, credential sessions.Credential, req *api.MessageRequest) (*api.MessageResponse, error) {
	return r.client(credential).SendMessage(ctx, req)
}

func (r *Remote) ListModels(ctx context.Context, credential sessions.Credential) (*api.ModelList, error) {
	return r.client(credential).ListModels(ctx)
}
