package report

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/assetview/internal/model"
)

// sliceFetcher pages over a fixed list of assets.
type sliceFetcher struct {
	assets []model.Asset
	calls  int
	failAt int
}

func (f *sliceFetcher) Fetch(_ context.Context, page, limit int, query string) (model.Page, error) {
	f.calls++
	if f.failAt == page {
		return model.Page{}, errors.New("boom")
	}
	var matched []model.Asset
	for _, a := range f.assets {
		if strings.Contains(a.Host, query) {
			matched = append(matched, a)
		}
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return model.Page{Records: matched[start:end], TotalCount: len(matched)}, nil
}

func inventory() []model.Asset {
	return []model.Asset{
		{ID: 1, Host: "web-01", Owner: "alice", IPs: []model.IP{{Address: "10.0.0.1"}}, Ports: []model.Port{{Port: 80}, {Port: 443}}},
		{ID: 2, Host: "web-02", Owner: "alice", IPs: []model.IP{{Address: "10.0.0.2"}}, Ports: []model.Port{{Port: 443}}},
		{ID: 3, Host: "db-01", Owner: "bob", Ports: []model.Port{{Port: 5432}}},
		{ID: 4, Host: "web-01", Owner: "", IPs: []model.IP{{Address: "10.0.0.9"}}},
		{ID: 5, Host: "cache", Owner: "carol", IPs: []model.IP{{Address: "10.0.1.1"}}, Ports: []model.Port{{Port: 6379}, {Port: 6379}}},
	}
}

func TestGenerateWalksAllPages(t *testing.T) {
	f := &sliceFetcher{assets: inventory()}
	g := NewGenerator(f, 2)

	data, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 3, f.calls)
	assert.Equal(t, 3, data.Pages)
	assert.Equal(t, 5, data.TotalAssets)
	assert.Len(t, data.Assets, 5)

	assert.Equal(t, []Count{{"alice", 2}, {"(none)", 1}, {"bob", 1}, {"carol", 1}}, data.Owners)
	assert.Equal(t, Count{"443", 2}, data.Ports[0])
	assert.Contains(t, data.Ports, Count{"6379", 1})
	assert.Equal(t, []Count{{"web-01", 2}}, data.DuplicateHosts)

	require.Len(t, data.WithoutIPs, 1)
	assert.Equal(t, 3, data.WithoutIPs[0].ID)
	require.Len(t, data.WithoutPorts, 1)
	assert.Equal(t, 4, data.WithoutPorts[0].ID)
}

func TestGenerateEmpty(t *testing.T) {
	f := &sliceFetcher{assets: inventory()}
	data, err := NewGenerator(f, 10).Generate(context.Background(), "nothing")
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, data.Pages)
	assert.Empty(t, data.Assets)
	assert.Contains(t, FormatMarkdown(data), "_No data found._")
}

func TestGenerateFailure(t *testing.T) {
	f := &sliceFetcher{assets: inventory(), failAt: 2}
	_, err := NewGenerator(f, 2).Generate(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestFormatMarkdown(t *testing.T) {
	f := &sliceFetcher{assets: inventory()}
	data, err := NewGenerator(f, 10).Generate(context.Background(), "web")
	require.NoError(t, err)
	data.GeneratedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	md := FormatMarkdown(data)
	assert.Contains(t, md, "# Asset Inventory Report")
	assert.Contains(t, md, "Generated: 2024-05-01 12:00:00")
	assert.Contains(t, md, "Host filter: `web`")
	assert.Contains(t, md, "| Assets | 3 |")
	assert.Contains(t, md, "| 1 | web-01 |  | alice | 10.0.0.1 | 80, 443 |")
	assert.Contains(t, md, "## Duplicate Hosts")
}

func TestWriteMarkdownFile(t *testing.T) {
	data := &ReportData{GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Pages: 1}

	path, err := WriteMarkdownFile(data, t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "assets-20240501-120000.md"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Asset Inventory Report")
}

func TestGenerateOwnershipDiagram(t *testing.T) {
	f := &sliceFetcher{assets: inventory()}
	data, err := NewGenerator(f, 10).Generate(context.Background(), "")
	require.NoError(t, err)

	d := GenerateOwnershipDiagram(data)
	assert.True(t, strings.HasPrefix(d, "```mermaid\nflowchart LR\n"))
	assert.Contains(t, d, `O1(["alice"]):::owner`)
	assert.Contains(t, d, `A3["db-01"]`)
	assert.Contains(t, d, "O1 --> A1")
	assert.Contains(t, d, "O2 --> A4", "assets without an owner hang off (none)")
	assert.Contains(t, FormatMarkdown(data), "## Ownership")
}

func TestShortenHostname(t *testing.T) {
	assert.Equal(t, "web-01", shortenHostname("web-01"))
	assert.Equal(t, "prod-host-001...", shortenHostname("prod-host-001.example.com"))
	assert.Equal(t, "abcdefghijklmnopq...", shortenHostname("abcdefghijklmnopqrstuvwxyz"))
}
