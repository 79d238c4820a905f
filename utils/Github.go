package utils

import (
	"context"
	"os"

	"github.com/google/go-github/v50/github"
	"golang.org/x/oauth2"
)

type GithubApi interface {
	GetRepository(owner string, repo string) (*github.Repository, *github.Response, error)
}

type GithubApiClient struct {
	client *github.Client
}

func NewGithubApiClient() GithubApiClient {
	ctx := context.Background()
	token := os.Getenv("GITHUB_TOKEN")
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)
		return GithubApiClient{client: github.NewClient(tc)}
	}
	return GithubApiClient{client: github.NewClient(nil)}
}

// NewGithubApiClientWithToken builds a client around an explicit token,
// e.g. one looked up from SSM in Lambda mode.
func NewGithubApiClientWithToken(token string) GithubApiClient {
	if token == "" {
		return GithubApiClient{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return GithubApiClient{client: github.NewClient(tc)}
}

func (apiClient GithubApiClient) GetRepository(owner string, repo string) (*github.Repository, *github.Response, error) {
	return apiClient.client.Repositories.Get(context.Background(), owner, repo)
}
