// Package model defines core data structures for assetview.
package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Asset represents an inventory record with its associated IPs and ports.
type Asset struct {
	ID        int    `json:"ID"`
	Host      string `json:"Host"`
	Comment   string `json:"Comment"`
	Owner     string `json:"Owner"`
	IPs       []IP   `json:"IPs"`
	Ports     []Port `json:"Ports"`
	Signature string `json:"Signature,omitempty"`
}

// IP represents an address associated with an asset.
type IP struct {
	Address   string `json:"Address"`
	Signature string `json:"Signature,omitempty"`
}

// Port represents a port number associated with an asset.
type Port struct {
	Port      int    `json:"Port"`
	Signature string `json:"Signature,omitempty"`
}

// Normalize replaces missing IP and port lists with empty ones.
func (a Asset) Normalize() Asset {
	if a.IPs == nil {
		a.IPs = []IP{}
	}
	if a.Ports == nil {
		a.Ports = []Port{}
	}
	return a
}

// IPList returns the asset's addresses joined for display.
func (a Asset) IPList() string {
	parts := make([]string, 0, len(a.IPs))
	for _, ip := range a.IPs {
		parts = append(parts, ip.Address)
	}
	return strings.Join(parts, ", ")
}

// PortList returns the asset's port numbers joined for display.
func (a Asset) PortList() string {
	parts := make([]string, 0, len(a.Ports))
	for _, p := range a.Ports {
		parts = append(parts, strconv.Itoa(p.Port))
	}
	return strings.Join(parts, ", ")
}

// PageQuery identifies one cacheable view of the dataset.
type PageQuery struct {
	Page  int
	Query string
}

// Key returns the cache fingerprint for the page query. The query is escaped
// so that no two distinct PageQuery values share a key.
func (q PageQuery) Key() string {
	return fmt.Sprintf("page=%d&searchQuery=%s", q.Page, url.QueryEscape(q.Query))
}

func (q PageQuery) String() string {
	return q.Key()
}

// CacheEntry is a fetched page of assets plus its derived page count.
type CacheEntry struct {
	Records    []Asset
	TotalPages int
}

// Page is the result of a single fetch against the asset endpoint.
type Page struct {
	Records    []Asset
	TotalCount int
}

// Phase is the coordinator's progress through one page load.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSorting
	PhaseReady
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseIdle:    "idle",
	PhaseLoading: "loading",
	PhaseSorting: "sorting",
	PhaseReady:   "ready",
	PhaseError:   "error",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Source records where the displayed page came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// ViewState is a snapshot of what the presentation layer should render.
type ViewState struct {
	CurrentPage int
	TotalPages  int
	Query       string
	Records     []Asset
	Loading     bool
	Sorting     bool
	Phase       Phase
	Source      Source
	Err         error
}

// PageQuery returns the page query the state currently points at.
func (s ViewState) PageQuery() PageQuery {
	return PageQuery{Page: s.CurrentPage, Query: s.Query}
}
