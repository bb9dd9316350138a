package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"crowdfund-sync/annotations"
	"crowdfund-sync/db"
)

// AnnotationRepository implements annotations.Repository on top of LevelDB.
// Keys are "<kind>:<campaign id>", values are JSON arrays of texts, so one
// campaign's list is always written and read as a whole.
type AnnotationRepository struct {
	db *db.LevelDB
}

// NewAnnotationRepository creates and returns a new AnnotationRepository instance
func NewAnnotationRepository(db *db.LevelDB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// PutList stores the full annotation list of one campaign
func (r *AnnotationRepository) PutList(kind annotations.Kind, campaignID uint64, texts []string) error {
	data, err := json.Marshal(texts)
	if err != nil {
		return err
	}
	return r.db.Put(key(kind, campaignID), data)
}

// AllLists retrieves every persisted annotation list of the given kind
func (r *AnnotationRepository) AllLists(kind annotations.Kind) (map[uint64][]string, error) {
	prefix := []byte(string(kind) + ":")
	iter := r.db.NewPrefixIterator(prefix)
	defer iter.Release()

	out := make(map[uint64][]string)
	for iter.Next() {
		k := string(iter.Key())
		campaignID, err := strconv.ParseUint(k[len(prefix):], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt annotation key %q: %w", k, err)
		}
		var texts []string
		if err := json.Unmarshal(iter.Value(), &texts); err != nil {
			return nil, fmt.Errorf("corrupt annotation list %q: %w", k, err)
		}
		out[campaignID] = texts
	}
	return out, iter.Error()
}

func key(kind annotations.Kind, campaignID uint64) []byte {
	return []byte(string(kind) + ":" + strconv.FormatUint(campaignID, 10))
}
