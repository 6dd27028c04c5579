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

package github_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/subzip/pkg/locator"
	"github.com/walteh/subzip/pkg/provider"
	"github.com/walteh/subzip/pkg/provider/github"
	"gitlab.com/tozd/go/errors"
)

var widgetsRef = locator.Reference{
	Owner:      "acme",
	Repo:       "widgets",
	Ref:        "main",
	FolderPath: "src/lib",
}

func TestArchiveURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		ref  locator.Reference
		want string
	}{
		{
			name: "default_host",
			ref:  widgetsRef,
			want: "https://github.com/acme/widgets/archive/main.zip",
		},
		{
			name: "custom_host_trailing_slash",
			host: "http://127.0.0.1:9000/",
			ref:  widgetsRef,
			want: "http://127.0.0.1:9000/acme/widgets/archive/main.zip",
		},
		{
			name: "escaped_ref",
			ref:  locator.Reference{Owner: "acme", Repo: "widgets", Ref: "v1.0#beta", FolderPath: "src"},
			want: "https://github.com/acme/widgets/archive/v1.0%23beta.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := github.New(context.Background(), provider.Options{Host: tt.host})
			require.NoError(t, err, "creating provider should succeed")
			assert.Equal(t, tt.want, p.ArchiveURL(tt.ref))
		})
	}
}

func TestNewInvalidHost(t *testing.T) {
	_, err := github.New(context.Background(), provider.Options{Host: "github.com"})
	require.Error(t, err, "host without scheme should be rejected")
}

func TestRegistered(t *testing.T) {
	p, err := provider.Get(context.Background(), github.Name, provider.Options{})
	require.NoError(t, err, "github provider should be registered")
	assert.Equal(t, github.Name, p.Name())
	assert.Contains(t, provider.Names(), github.Name)

	_, err = provider.Get(context.Background(), "bitbucket", provider.Options{})
	require.Error(t, err, "unknown provider should fail")
	assert.Contains(t, err.Error(), "unknown provider: bitbucket (available: github)")
}

func TestDownloadArchive(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		header      map[string]string
		body        string
		wantErr     bool
		wantStatus  int
		wantMessage string
	}{
		{name: "ok", status: http.StatusOK, body: "PK-archive-bytes"},
		{name: "not_found", status: http.StatusNotFound, body: "Not Found", wantErr: true, wantStatus: http.StatusNotFound},
		{name: "forbidden_json", status: http.StatusForbidden, body: `{"message":"denied"}`, wantErr: true, wantStatus: http.StatusForbidden, wantMessage: "denied"},
		{
			name:        "rate_limited",
			status:      http.StatusForbidden,
			header:      map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1700000000"},
			body:        `{"message":"API rate limit exceeded"}`,
			wantErr:     true,
			wantStatus:  http.StatusForbidden,
			wantMessage: "API rate limit exceeded",
		},
		{name: "server_error", status: http.StatusBadGateway, body: "", wantErr: true, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			p, err := github.New(ctx, provider.Options{Host: srv.URL, HTTPClient: srv.Client()})
			require.NoError(t, err, "creating provider should succeed")

			progress := &bytes.Buffer{}
			data, err := p.DownloadArchive(ctx, widgetsRef, progress)

			assert.Equal(t, "/acme/widgets/archive/main.zip", gotPath, "request path should follow the archive template")
			assert.Empty(t, gotAuth, "no authorization header should be sent")

			if tt.wantErr {
				require.Error(t, err, "download should fail")
				var dlErr *provider.DownloadFailedError
				require.True(t, errors.As(err, &dlErr), "error should be a DownloadFailedError")
				assert.Equal(t, tt.wantStatus, dlErr.StatusCode, "status code should be reported")
				assert.Equal(t, srv.URL+"/acme/widgets/archive/main.zip", dlErr.URL)
				assert.Equal(t, tt.wantMessage, dlErr.Message, "remote message should be carried")
				if tt.wantMessage != "" {
					assert.Contains(t, err.Error(), tt.wantMessage, "error text should show the remote reason")
				}
				assert.Nil(t, data)
				return
			}

			require.NoError(t, err, "download should succeed")
			assert.Equal(t, tt.body, string(data))
			assert.Equal(t, tt.body, progress.String(), "progress writer should see every byte")
		})
	}
}

func TestDownloadFailedErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  *provider.DownloadFailedError
		want string
	}{
		{
			name: "status_only",
			err:  &provider.DownloadFailedError{StatusCode: 404, URL: "https://github.com/a/b/archive/x.zip"},
			want: "download failed: https://github.com/a/b/archive/x.zip returned status 404",
		},
		{
			name: "with_message",
			err:  &provider.DownloadFailedError{StatusCode: 403, URL: "https://github.com/a/b/archive/x.zip", Message: "denied"},
			want: "download failed: https://github.com/a/b/archive/x.zip returned status 403: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDownloadArchiveCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := github.New(context.Background(), provider.Options{Host: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.DownloadArchive(ctx, widgetsRef, nil)
	require.Error(t, err, "cancelled context should abort the download")
	assert.True(t, errors.Is(err, context.Canceled), "error should wrap context.Canceled")
}
