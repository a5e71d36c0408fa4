package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/assetview/internal/model"
)

func openTestDB(t *testing.T) *AssetStorage {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAssetStorage(db)
}

func TestSaveAndGetAsset(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	asset := model.Asset{
		Host:    "web-01",
		Comment: "frontend",
		Owner:   "alice",
		IPs:     []model.IP{{Address: "10.0.0.1"}, {Address: "10.0.0.2"}},
		Ports:   []model.Port{{Port: 443}, {Port: 80}},
	}
	require.NoError(t, s.SaveAsset(ctx, &asset))
	require.NotZero(t, asset.ID)

	got, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "web-01", got.Host)
	assert.Equal(t, "10.0.0.1, 10.0.0.2", got.IPList())
	assert.Equal(t, "443, 80", got.PortList())
	assert.Equal(t, digest("web-01frontendalice"), got.Signature)
	assert.Equal(t, digest("10.0.0.1"), got.IPs[0].Signature)
	assert.Equal(t, digest("443"), got.Ports[0].Signature)
}

func TestGetAssetMissing(t *testing.T) {
	s := openTestDB(t)

	got, err := s.GetAsset(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAssetsPagination(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, 25))

	assets, total, err := s.ListAssets(ctx, ListOptions{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, assets, 5)
	assert.Equal(t, 21, assets[0].ID)

	assets, total, err = s.ListAssets(ctx, ListOptions{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestListAssetsDefaults(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, 12))

	assets, _, err := s.ListAssets(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, assets, DefaultLimit)
	assert.Equal(t, 1, assets[0].ID)
}

func TestListAssetsHostFilter(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	for _, host := range []string{"db-primary", "web-01", "db-replica", "cache"} {
		a := model.Asset{Host: host}
		require.NoError(t, s.SaveAsset(ctx, &a))
	}

	assets, total, err := s.ListAssets(ctx, ListOptions{Page: 1, Limit: 10, Host: "db"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, assets, 2)
	assert.Equal(t, "db-primary", assets[0].Host)
	assert.Equal(t, "db-replica", assets[1].Host)

	// Assets without children still come back with empty lists.
	assert.NotNil(t, assets[0].IPs)
	assert.NotNil(t, assets[0].Ports)
}

func TestSeed(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Seed(ctx, 0), ErrInvalidSeed)

	require.NoError(t, s.Seed(ctx, 10))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	a, err := s.GetAsset(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Len(t, a.IPs, 2)
	assert.Len(t, a.Ports, 2)
}

func TestSignDoesNotMutate(t *testing.T) {
	in := model.Asset{Host: "h", IPs: []model.IP{{Address: "1.1.1.1"}}, Ports: []model.Port{{Port: 22}}}

	out := Sign(in)

	assert.Empty(t, in.Signature)
	assert.Empty(t, in.IPs[0].Signature)
	assert.Len(t, out.Signature, 64)
	assert.Equal(t, digest("22"), out.Ports[0].Signature)
}
