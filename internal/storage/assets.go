package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/user/assetview/internal/model"
)

// DefaultLimit is the page size used when a caller does not ask for one.
const DefaultLimit = 10

// ListOptions selects one page of assets.
type ListOptions struct {
	Page  int
	Limit int
	// Host filters by substring match on the host name.
	Host string
}

func (o ListOptions) normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// AssetStorage handles asset persistence.
type AssetStorage struct {
	db *DB
}

// NewAssetStorage creates a new asset storage handler.
func NewAssetStorage(db *DB) *AssetStorage {
	return &AssetStorage{db: db}
}

// SaveAsset inserts an asset together with its IPs and ports and sets its ID.
func (s *AssetStorage) SaveAsset(ctx context.Context, asset *model.Asset) error {
	return s.db.WithLock(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		result, err := tx.ExecContext(ctx,
			"INSERT INTO assets (host, comment, owner) VALUES (?, ?, ?)",
			asset.Host, asset.Comment, asset.Owner)
		if err != nil {
			return fmt.Errorf("failed to save asset: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read asset id: %w", err)
		}

		for _, ip := range asset.IPs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO ips (asset_id, address) VALUES (?, ?)", id, ip.Address); err != nil {
				return fmt.Errorf("failed to save ip: %w", err)
			}
		}
		for _, p := range asset.Ports {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO ports (asset_id, port) VALUES (?, ?)", id, p.Port); err != nil {
				return fmt.Errorf("failed to save port: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit asset: %w", err)
		}
		asset.ID = int(id)
		return nil
	})
}

// ListAssets returns one page of signed assets ordered by ID and the number
// of assets matching the filter across all pages.
func (s *AssetStorage) ListAssets(ctx context.Context, opts ListOptions) ([]model.Asset, int, error) {
	opts = opts.normalize()

	where := ""
	args := []any{}
	if opts.Host != "" {
		where = " WHERE host LIKE ?"
		args = append(args, "%"+opts.Host+"%")
	}

	var assets []model.Asset
	var total int
	err := s.db.WithRLock(func() error {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets"+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count assets: %w", err)
		}

		query := "SELECT id, host, comment, owner FROM assets" + where + " ORDER BY id LIMIT ? OFFSET ?"
		pageArgs := append(append([]any{}, args...), opts.Limit, (opts.Page-1)*opts.Limit)
		var err error
		assets, err = s.queryAssets(ctx, query, pageArgs...)
		if err != nil {
			return err
		}
		return s.loadChildren(ctx, assets)
	})
	if err != nil {
		return nil, 0, err
	}

	for i := range assets {
		assets[i] = Sign(assets[i])
	}
	return assets, total, nil
}

// GetAsset returns a signed asset by ID, or nil if it does not exist.
func (s *AssetStorage) GetAsset(ctx context.Context, id int) (*model.Asset, error) {
	var assets []model.Asset
	err := s.db.WithRLock(func() error {
		var err error
		assets, err = s.queryAssets(ctx, "SELECT id, host, comment, owner FROM assets WHERE id = ?", id)
		if err != nil {
			return err
		}
		return s.loadChildren(ctx, assets)
	})
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, nil
	}
	asset := Sign(assets[0])
	return &asset, nil
}

// Count returns the total number of assets.
func (s *AssetStorage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.WithRLock(func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets").Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return n, nil
}

func (s *AssetStorage) queryAssets(ctx context.Context, query string, args ...any) ([]model.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Host, &a.Comment, &a.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a.Normalize())
	}
	return assets, rows.Err()
}

// loadChildren fills in IPs and ports for the given assets in insertion order.
func (s *AssetStorage) loadChildren(ctx context.Context, assets []model.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	index := make(map[int]int, len(assets))
	ids := make([]any, 0, len(assets))
	for i, a := range assets {
		index[a.ID] = i
		ids = append(ids, a.ID)
	}
	in := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	err := s.eachRow(ctx, "SELECT asset_id, address FROM ips WHERE asset_id IN ("+in+") ORDER BY id", ids,
		func(rows *sql.Rows) error {
			var assetID int
			var ip model.IP
			if err := rows.Scan(&assetID, &ip.Address); err != nil {
				return err
			}
			i := index[assetID]
			assets[i].IPs = append(assets[i].IPs, ip)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load ips: %w", err)
	}

	err = s.eachRow(ctx, "SELECT asset_id, port FROM ports WHERE asset_id IN ("+in+") ORDER BY id", ids,
		func(rows *sql.Rows) error {
			var assetID int
			var p model.Port
			if err := rows.Scan(&assetID, &p.Port); err != nil {
				return err
			}
			i := index[assetID]
			assets[i].Ports = append(assets[i].Ports, p)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load ports: %w", err)
	}
	return nil
}

func (s *AssetStorage) eachRow(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ErrInvalidSeed is returned when Seed is asked for a non-positive count.
var ErrInvalidSeed = errors.New("seed count must be positive")

// Seed inserts n deterministic sample assets.
func (s *AssetStorage) Seed(ctx context.Context, n int) error {
	if n <= 0 {
		return ErrInvalidSeed
	}
	owners := []string{"alice", "bob", "carol", "dave"}
	envs := []string{"prod", "staging", "dev"}

	for i := 1; i <= n; i++ {
		asset := model.Asset{
			Host:    fmt.Sprintf("%s-host-%03d.example.com", envs[i%len(envs)], i),
			Comment: fmt.Sprintf("sample asset %d", i),
			Owner:   owners[i%len(owners)],
			IPs: []model.IP{
				{Address: fmt.Sprintf("10.0.%d.%d", i/256, i%256)},
			},
			Ports: []model.Port{{Port: 22}, {Port: 80 + i%3}},
		}
		if i%5 == 0 {
			asset.IPs = append(asset.IPs, model.IP{Address: fmt.Sprintf("192.168.%d.%d", i/256, i%256)})
		}
		if err := s.SaveAsset(ctx, &asset); err != nil {
			return fmt.Errorf("failed to seed asset %d: %w", i, err)
		}
	}
	return nil
}
