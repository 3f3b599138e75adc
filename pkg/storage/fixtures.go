package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Fixtures is the JSON seed format of a local network.
type Fixtures struct {
	Accounts   []*types.Account   `json:"accounts"`
	Blocks     []*types.Block     `json:"blocks"`
	Extrinsics []*types.Extrinsic `json:"extrinsics"`
	Events     []*types.Event     `json:"events"`
}

// Entities flattens the fixtures
func (f *Fixtures) Entities() []types.Entity {
	out := make([]types.Entity, 0, len(f.Accounts)+len(f.Blocks)+len(f.Extrinsics)+len(f.Events))
	for _, a := range f.Accounts {
		out = append(out, a)
	}
	for _, b := range f.Blocks {
		out = append(out, b)
	}
	for _, e := range f.Extrinsics {
		out = append(out, e)
	}
	for _, e := range f.Events {
		out = append(out, e)
	}
	return out
}

// LoadFixtures decodes fixtures from r and stores them under network.
// It returns the number of stored entities.
func (s *PebbleStore) LoadFixtures(ctx context.Context, network string, r io.Reader) (int, error) {
	var f Fixtures
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return 0, fmt.Errorf("failed to decode fixtures: %w", err)
	}

	entities := f.Entities()
	if err := s.Put(ctx, network, entities...); err != nil {
		return 0, err
	}

	s.logger.Info("loaded fixtures",
		zap.String("network", network),
		zap.Int("accounts", len(f.Accounts)),
		zap.Int("blocks", len(f.Blocks)),
		zap.Int("extrinsics", len(f.Extrinsics)),
		zap.Int("events", len(f.Events)),
	)
	return len(entities), nil
}

// LoadFixturesFile loads fixtures from a JSON file
func (s *PebbleStore) LoadFixturesFile(ctx context.Context, network, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer file.Close()
	return s.LoadFixtures(ctx, network, file)
}
