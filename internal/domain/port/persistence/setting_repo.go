package persistence

import (
	"context"
)

// SettingKeyUsageCosts is the fixed key under which the usage-cost override
// table is stored
const SettingKeyUsageCosts = "usage_costs"

// SettingRepository stores versioned opaque JSON documents keyed by name.
// The cost resolver and the admin configuration surface are its only readers
// and writers.
type SettingRepository interface {
	// Get returns the raw JSON value and version for a key
	//
	// Possible errors:
	// - ErrCostConfigMissing: If the key has never been written
	// - ErrDatabaseConnection: If database connection fails
	Get(ctx context.Context, key string) ([]byte, int64, error)

	// Set writes the value for a key, bumping its version. Creates the row if
	// it does not exist.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	Set(ctx context.Context, key string, value []byte) (int64, error)
}
