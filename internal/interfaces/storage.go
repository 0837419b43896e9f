package interfaces

// StorageManager owns the database and hands out the storages built on it
type StorageManager interface {
	RunStorage() RunStorage
	Close() error
}
