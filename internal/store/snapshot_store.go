package store

import (
	"path/filepath"
	"sync"
	"time"

	"pricedex/internal/models"
)

// snapshotFile is the on-disk shape of one provider's last-good scrape.
type snapshotFile struct {
	Provider  string             `json:"provider"`
	ScrapedAt time.Time          `json:"scraped_at"`
	Records   []models.RawRecord `json:"records"`
}

// SnapshotStore keeps the last successful raw extraction per scraped
// provider under dataDir/snapshots, one file per provider.
type SnapshotStore struct {
	dir string
	mu  sync.Mutex
}

// NewSnapshotStore creates a snapshot store rooted at dataDir.
func NewSnapshotStore(dataDir string) *SnapshotStore {
	return &SnapshotStore{dir: filepath.Join(dataDir, "snapshots")}
}

// SaveSnapshot replaces the stored snapshot for provider.
func (s *SnapshotStore) SaveSnapshot(provider string, records []models.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshotFile{
		Provider:  provider,
		ScrapedAt: time.Now().UTC(),
		Records:   records,
	}
	return writeFileAtomic(s.path(provider), &snap)
}

// LoadSnapshot returns the stored records for provider, or nil if none
// have been saved yet.
func (s *SnapshotStore) LoadSnapshot(provider string) ([]models.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap snapshotFile
	loaded, err := readFileJSON(s.path(provider), &snap)
	if err != nil || !loaded {
		return nil, err
	}
	return snap.Records, nil
}

func (s *SnapshotStore) path(provider string) string {
	return filepath.Join(s.dir, provider+".json")
}
