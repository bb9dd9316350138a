package annotations

import (
	"strings"
	"sync"

	"crowdfund-sync/logger"

	"go.uber.org/zap"
)

// Kind selects one of the two annotation sequences kept per campaign.
type Kind string

const (
	Update  Kind = "update"
	Comment Kind = "comment"
)

// Repository is an optional persistence backend for annotation lists. The
// ledger never stores annotations; without a repository they live only for
// the session.
type Repository interface {
	PutList(kind Kind, campaignID uint64, texts []string) error
	AllLists(kind Kind) (map[uint64][]string, error)
}

// Store keeps per-campaign ordered updates and comments. It enforces no
// authorization; whether the caller may post an update is decided outside
// via an opaque capability flag.
type Store struct {
	mu       sync.Mutex
	updates  map[uint64][]string
	comments map[uint64][]string
	repo     Repository
}

// NewStore creates a store, loading any previously persisted lists when a
// repository is supplied. A nil repository keeps the store session-scoped.
func NewStore(repo Repository) (*Store, error) {
	s := &Store{
		updates:  make(map[uint64][]string),
		comments: make(map[uint64][]string),
		repo:     repo,
	}
	if repo != nil {
		var err error
		if s.updates, err = repo.AllLists(Update); err != nil {
			return nil, err
		}
		if s.comments, err = repo.AllLists(Comment); err != nil {
			return nil, err
		}
		if s.updates == nil {
			s.updates = make(map[uint64][]string)
		}
		if s.comments == nil {
			s.comments = make(map[uint64][]string)
		}
	}
	return s, nil
}

// AddUpdate appends an update to the campaign's list. Empty or
// whitespace-only text is ignored.
func (s *Store) AddUpdate(campaignID uint64, text string) {
	s.add(Update, campaignID, text)
}

// AddComment appends a comment to the campaign's list. Empty or
// whitespace-only text is ignored.
func (s *Store) AddComment(campaignID uint64, text string) {
	s.add(Comment, campaignID, text)
}

func (s *Store) add(kind Kind, campaignID uint64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.bucket(kind)
	bucket[campaignID] = append(bucket[campaignID], text)

	if s.repo != nil {
		// persistence is best effort: the in-memory append already stands
		if err := s.repo.PutList(kind, campaignID, bucket[campaignID]); err != nil {
			logger.Logger.Warn("annotation persistence failed",
				zap.String("kind", string(kind)), zap.Uint64("campaign_id", campaignID), zap.Error(err))
		}
	}
}

// Updates returns the campaign's updates in insertion order.
func (s *Store) Updates(campaignID uint64) []string {
	return s.list(Update, campaignID)
}

// Comments returns the campaign's comments in insertion order.
func (s *Store) Comments(campaignID uint64) []string {
	return s.list(Comment, campaignID)
}

func (s *Store) list(kind Kind, campaignID uint64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := s.bucket(kind)[campaignID]
	out := make([]string, len(texts))
	copy(out, texts)
	return out
}

func (s *Store) bucket(kind Kind) map[uint64][]string {
	if kind == Update {
		return s.updates
	}
	return s.comments
}
