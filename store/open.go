package store

import "fmt"

// Open returns the snapshot store for driver: "memory", "file" or "postgres".
func Open(driver, dataDir, databaseURL string) (SnapshotStore, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(dataDir)
	case "postgres":
		return OpenPostgres(databaseURL)
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q", driver)
	}
}
