package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// CurrentVersion is the schema version this build writes and expects.
const CurrentVersion = "v2.1.1"

// versionChain lists every schema version in upgrade order. A migration step
// always moves between adjacent entries; skipping is not supported.
var versionChain = []string{"v2-rc1", "v2-rc2", "v2", "v2.1", "v2.1.1"}

func versionIndex(v string) int {
	for i, candidate := range versionChain {
		if candidate == v {
			return i
		}
	}
	return -1
}

// Migrator drives an adapter's schema from whatever version its database
// reports up to CurrentVersion, one step at a time. The adapter supplies the
// version marker accessors and the per-step work; the sequencing rules live
// here so all three backends migrate identically:
//
//   - the marker advances only after its step's work succeeds, so a failed
//     step is retried from the same point on the next run
//   - a database reporting no version at all is treated as empty and
//     stamped with CurrentVersion (StartUp creates current-shape schema)
//   - a database reporting a version not in the chain is assumed to already
//     be current, with a warning, rather than refused
//
// Steps must be idempotent: a crash between a step's work and its marker
// write means the work runs again on the next start.
type Migrator struct {
	Log zerolog.Logger

	// GetVersion returns the stored schema version, or "" when the
	// database has never been stamped.
	GetVersion func(ctx context.Context) (string, error)

	// SetVersion records v as the stored schema version.
	SetVersion func(ctx context.Context, v string) error

	// Steps maps a target version to the work that upgrades the previous
	// version to it. A version absent from the map needs no schema work;
	// only the marker advances.
	Steps map[string]func(ctx context.Context) error
}

// Run upgrades the schema to CurrentVersion. It returns nil when the schema
// is already current.
func (m *Migrator) Run(ctx context.Context) error {
	stored, err := m.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if stored == "" {
		m.Log.Debug().Str("version", CurrentVersion).Msg("stamping schema version on empty database")
		if err := m.SetVersion(ctx, CurrentVersion); err != nil {
			return fmt.Errorf("stamping schema version: %w", err)
		}
		return nil
	}

	if stored == CurrentVersion {
		return nil
	}

	from := versionIndex(stored)
	if from < 0 {
		m.Log.Warn().Str("version", stored).Msg("unrecognized schema version; assuming current")
		if err := m.SetVersion(ctx, CurrentVersion); err != nil {
			return fmt.Errorf("stamping schema version: %w", err)
		}
		return nil
	}

	for i := from + 1; i < len(versionChain); i++ {
		prev, next := versionChain[i-1], versionChain[i]
		m.Log.Info().Str("from", prev).Str("to", next).Msg("migrating schema")
		if step := m.Steps[next]; step != nil {
			if err := step(ctx); err != nil {
				return &MigrationError{From: prev, To: next, Err: err}
			}
		}
		if err := m.SetVersion(ctx, next); err != nil {
			return &MigrationError{From: prev, To: next, Err: fmt.Errorf("advancing version marker: %w", err)}
		}
	}
	return nil
}
