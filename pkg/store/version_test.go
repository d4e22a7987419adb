package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVersionStore is an in-memory version marker plus a record of which
// migration steps ran.
type fakeVersionStore struct {
	version string
	ran     []string
	failAt  string
}

func (f *fakeVersionStore) migrator() *Migrator {
	steps := map[string]func(ctx context.Context) error{}
	for _, v := range versionChain[1:] {
		v := v
		steps[v] = func(ctx context.Context) error {
			if f.failAt == v {
				return errors.New("disk full")
			}
			f.ran = append(f.ran, v)
			return nil
		}
	}
	return &Migrator{
		Log:        zerolog.Nop(),
		GetVersion: func(ctx context.Context) (string, error) { return f.version, nil },
		SetVersion: func(ctx context.Context, v string) error { f.version = v; return nil },
		Steps:      steps,
	}
}

func TestMigratorEmptyDatabaseStampsCurrent(t *testing.T) {
	f := &fakeVersionStore{}
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Equal(t, CurrentVersion, f.version)
	assert.Empty(t, f.ran, "no steps run on an empty database")
}

func TestMigratorAlreadyCurrentIsNoOp(t *testing.T) {
	f := &fakeVersionStore{version: CurrentVersion}
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Empty(t, f.ran)
}

func TestMigratorFullChain(t *testing.T) {
	f := &fakeVersionStore{version: "v2-rc1"}
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Equal(t, []string{"v2-rc2", "v2", "v2.1", "v2.1.1"}, f.ran)
	assert.Equal(t, CurrentVersion, f.version)
}

func TestMigratorPartialChain(t *testing.T) {
	f := &fakeVersionStore{version: "v2.1"}
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Equal(t, []string{"v2.1.1"}, f.ran)
	assert.Equal(t, CurrentVersion, f.version)
}

func TestMigratorFailedStepDoesNotAdvanceMarker(t *testing.T) {
	f := &fakeVersionStore{version: "v2-rc1", failAt: "v2.1"}
	err := f.migrator().Run(context.Background())
	require.Error(t, err)

	var me *MigrationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "v2", me.From)
	assert.Equal(t, "v2.1", me.To)

	// The marker stopped at the last completed step, so the next run
	// resumes exactly where this one failed.
	assert.Equal(t, "v2", f.version)
	assert.Equal(t, []string{"v2-rc2", "v2"}, f.ran)

	f.failAt = ""
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Equal(t, CurrentVersion, f.version)
	assert.Equal(t, []string{"v2-rc2", "v2", "v2.1", "v2.1.1"}, f.ran)
}

func TestMigratorUnknownVersionAssumesCurrent(t *testing.T) {
	f := &fakeVersionStore{version: "v3-beta"}
	require.NoError(t, f.migrator().Run(context.Background()))
	assert.Equal(t, CurrentVersion, f.version)
	assert.Empty(t, f.ran, "no steps run for an unrecognized version")
}

func TestMigratorStepWithoutWorkAdvancesMarkerOnly(t *testing.T) {
	f := &fakeVersionStore{version: "v2.1"}
	m := f.migrator()
	delete(m.Steps, "v2.1.1")
	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, CurrentVersion, f.version)
	assert.Empty(t, f.ran)
}

func TestMigratorGetVersionErrorPropagates(t *testing.T) {
	m := &Migrator{
		Log:        zerolog.Nop(),
		GetVersion: func(ctx context.Context) (string, error) { return "", errors.New("connection refused") },
		SetVersion: func(ctx context.Context, v string) error { return nil },
	}
	assert.Error(t, m.Run(context.Background()))
}
