package storage

// Service provides high-level operations for the card metadata cache and
// point list snapshots.
type Service struct {
	db *DB
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{db: db}
}

// OpenService opens the database at path, migrating it, and wraps it in a
// Service.
func OpenService(path string) (*Service, error) {
	db, err := Open(DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return NewService(db), nil
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}
