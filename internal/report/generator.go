// Package report generates asset inventory reports.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/user/assetview/internal/fetcher"
	"github.com/user/assetview/internal/model"
)

// PageFetcher retrieves one page of assets.
type PageFetcher interface {
	Fetch(ctx context.Context, page, limit int, query string) (model.Page, error)
}

// Generator creates inventory reports by walking every page of a query.
type Generator struct {
	fetcher PageFetcher
	limit   int
}

// NewGenerator creates a new report generator.
func NewGenerator(f PageFetcher, limit int) *Generator {
	if limit <= 0 {
		limit = 10
	}
	return &Generator{
		fetcher: f,
		limit:   limit,
	}
}

// ReportData holds all data for a report.
type ReportData struct {
	GeneratedAt time.Time
	Query       string
	Pages       int
	TotalAssets int

	Assets []model.Asset

	// Summary
	Owners         []Count
	Ports          []Count
	WithoutIPs     []model.Asset
	WithoutPorts   []model.Asset
	DuplicateHosts []Count
}

// Count is a value and how many assets carry it.
type Count struct {
	Value string
	Count int
}

// Generate fetches every page matching query and summarizes the result.
func (g *Generator) Generate(ctx context.Context, query string) (*ReportData, error) {
	data := &ReportData{
		GeneratedAt: time.Now(),
		Query:       query,
		Pages:       1,
	}

	for page := 1; page <= data.Pages; page++ {
		p, err := g.fetcher.Fetch(ctx, page, g.limit, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		// The server may report a different total while we walk.
		data.Pages = fetcher.TotalPages(p.TotalCount, g.limit)
		data.TotalAssets = p.TotalCount
		data.Assets = append(data.Assets, p.Records...)
	}

	g.summarize(data)
	return data, nil
}

func (g *Generator) summarize(data *ReportData) {
	owners := map[string]int{}
	ports := map[string]int{}
	hosts := map[string]int{}

	for _, a := range data.Assets {
		owner := a.Owner
		if owner == "" {
			owner = "(none)"
		}
		owners[owner]++
		hosts[a.Host]++

		seen := map[int]bool{}
		for _, p := range a.Ports {
			if !seen[p.Port] {
				seen[p.Port] = true
				ports[fmt.Sprintf("%d", p.Port)]++
			}
		}

		if len(a.IPs) == 0 {
			data.WithoutIPs = append(data.WithoutIPs, a)
		}
		if len(a.Ports) == 0 {
			data.WithoutPorts = append(data.WithoutPorts, a)
		}
	}

	data.Owners = sortedCounts(owners, 0)
	data.Ports = sortedCounts(ports, 0)
	data.DuplicateHosts = sortedCounts(hosts, 2)
}

// sortedCounts orders counts descending, then by value. Entries below min
// are dropped.
func sortedCounts(m map[string]int, min int) []Count {
	var out []Count
	for v, n := range m {
		if n >= min {
			out = append(out, Count{Value: v, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
