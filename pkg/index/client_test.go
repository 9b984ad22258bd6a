package index

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

// fakeOpener serves canned bodies keyed by URL.
type fakeOpener struct {
	bodies map[string]string
	errs   map[string]error
	opened []string
	last   *trackedBody
}

func (f *fakeOpener) Open(_ context.Context, url string) (io.ReadCloser, error) {
	f.opened = append(f.opened, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.ErrNotFound
	}
	f.last = &trackedBody{Reader: strings.NewReader(body)}
	return f.last, nil
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&fakeOpener{}, "", "")
	assert.Equal(t, "badge.team", c.Host())
	assert.Equal(t, "gameon", c.Basket())

	c = NewClient(&fakeOpener{}, "hatchery.example", "card10")
	assert.Equal(t, "https://hatchery.example/eggs/get/snake/json", c.MetadataURL("snake"))
	assert.Equal(t, "https://hatchery.example/eggs/get/..%2Fsnake%20game/json", c.MetadataURL("../snake game"))
	assert.Equal(t, "https://hatchery.example/basket/card10/list/json", c.ListURL())
	assert.Equal(t, "https://hatchery.example/basket/card10/search/flappy%20bird/json", c.SearchURL("flappy bird"))
}

func TestClient_GetMetadata(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		openErr error
		wantErr error
		wantVer string
	}{
		{
			name:    "valid metadata",
			body:    `{"info":{"version":"3"},"releases":{"3":[{"url":"https://badge.team/files/snake-3.tar.gz"}]}}`,
			wantVer: "3",
		},
		{
			name:    "missing version",
			body:    `{"info":{},"releases":{}}`,
			wantErr: errors.ErrProtocol,
		},
		{
			name:    "malformed json",
			body:    `{"info":`,
			wantErr: errors.ErrProtocol,
		},
		{
			name:    "not found",
			openErr: errors.ErrNotFound,
			wantErr: errors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const url = "https://badge.team/eggs/get/snake/json"
			opener := &fakeOpener{bodies: map[string]string{url: tt.body}}
			if tt.openErr != nil {
				opener.errs = map[string]error{url: tt.openErr}
			}

			meta, err := NewClient(opener, "", "").GetMetadata(context.Background(), "snake")
			assert.Equal(t, []string{url}, opener.opened)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantVer, meta.LatestVersion())
			}
			if opener.last != nil {
				assert.True(t, opener.last.closed, "body must be closed")
			}
		})
	}
}

func TestClient_ListAll(t *testing.T) {
	opener := &fakeOpener{bodies: map[string]string{
		"https://badge.team/basket/gameon/list/json": `[
			{"name":"Snake","slug":"snake","revision":"3","description":"eat apples"},
			{"name":"Clock","slug":"clock","revision":"12","description":"tick"}
		]`,
	}}

	got, err := NewClient(opener, "", "").ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "snake", got[0].Slug)
	assert.Equal(t, "12", got[1].Revision)
	assert.True(t, opener.last.closed)
}

func TestClient_ListAll_EmptyAndInvalid(t *testing.T) {
	const url = "https://badge.team/basket/gameon/list/json"

	opener := &fakeOpener{bodies: map[string]string{url: `[]`}}
	got, err := NewClient(opener, "", "").ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	opener = &fakeOpener{bodies: map[string]string{url: `[{"name":"no slug"}]`}}
	_, err = NewClient(opener, "", "").ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProtocol))
	assert.True(t, opener.last.closed)
}

func TestClient_Search(t *testing.T) {
	listURL := "https://badge.team/basket/gameon/list/json"
	searchURL := "https://badge.team/basket/gameon/search/sna%2Fke/json"
	opener := &fakeOpener{bodies: map[string]string{
		listURL:   `[{"name":"a","slug":"a","revision":"1","description":""}]`,
		searchURL: `[{"name":"Snake","slug":"snake","revision":"3","description":""}]`,
	}}
	c := NewClient(opener, "", "")

	tests := []struct {
		query    string
		wantURL  string
		wantSlug string
	}{
		{query: "sna/ke", wantURL: searchURL, wantSlug: "snake"},
		{query: "", wantURL: listURL, wantSlug: "a"},
		{query: "*", wantURL: listURL, wantSlug: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			opener.opened = nil
			got, err := c.Search(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantURL}, opener.opened)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantSlug, got[0].Slug)
		})
	}
}
