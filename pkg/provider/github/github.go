// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/subzip/pkg/locator"
	"github.com/walteh/subzip/pkg/provider"
	"gitlab.com/tozd/go/errors"
)

const (
	Name        = "github"
	DefaultHost = "https://github.com"
)

func init() {
	provider.Register(Name, New)
}

// 🎯 Provider downloads repository zip archives from a GitHub web host
type Provider struct {
	host   string
	client *http.Client
}

// 🏭 New creates a new GitHub provider
func New(ctx context.Context, opts provider.Options) (provider.Provider, error) {
	host := strings.TrimSuffix(opts.Host, "/")
	if host == "" {
		host = DefaultHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Errorf("parsing host %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("host %q must include a scheme and a hostname", host)
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Provider{
		host:   host,
		client: client,
	}, nil
}

func (p *Provider) Name() string {
	return Name
}

// 📦 ArchiveURL returns {host}/{owner}/{repo}/archive/{ref}.zip
func (p *Provider) ArchiveURL(ref locator.Reference) string {
	return fmt.Sprintf("%s/%s/%s/archive/%s.zip",
		p.host,
		url.PathEscape(ref.Owner),
		url.PathEscape(ref.Repo),
		url.PathEscape(ref.Ref))
}

// 📥 DownloadArchive issues a single GET for the archive; any non-2xx status is a DownloadFailedError
func (p *Provider) DownloadArchive(ctx context.Context, ref locator.Reference, progress io.Writer) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	archiveURL := p.ArchiveURL(ref)

	logger.Debug().Str("url", archiveURL).Str("repo", ref.Repository()).Str("ref", ref.Ref).Msg("downloading archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("downloading archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := github.CheckResponse(resp)
		logger.Debug().Err(remoteErr).Int("status", resp.StatusCode).Msg("archive request rejected")
		return nil, errors.WithStack(&provider.DownloadFailedError{
			StatusCode: resp.StatusCode,
			URL:        archiveURL,
			Message:    remoteMessage(remoteErr),
		})
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = io.TeeReader(resp.Body, progress)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Errorf("reading archive body: %w", err)
	}

	logger.Debug().Int("bytes", len(data)).Msg("archive downloaded")

	return data, nil
}

// remoteMessage pulls the "message" field GitHub puts in JSON error bodies
func remoteMessage(err error) string {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr):
		return rateErr.Message
	case errors.As(err, &abuseErr):
		return abuseErr.Message
	case errors.As(err, &respErr):
		return respErr.Message
	}
	return ""
}
