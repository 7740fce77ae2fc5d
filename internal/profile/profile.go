// Package profile serves player profile and catalog reads through TTL
// caches, so repeated lookups within the window never touch the remote
// API twice.
package profile

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/alexjbarnes/skport-sync/internal/cache"
	"github.com/alexjbarnes/skport-sync/internal/config"
	"github.com/alexjbarnes/skport-sync/skport"
)

// API is the slice of the game client the profile service reads from.
type API interface {
	Binding(ctx context.Context, session *skport.Session) ([]skport.Binding, error)
	CardDetail(ctx context.Context, session *skport.Session, role skport.GameRole) (skport.CardDetail, error)
	WikiCatalog(ctx context.Context, mainID, subID int) ([]skport.WikiItem, error)
}

// Service caches binding lists per user, card detail per role and the
// wiki catalogs globally.
type Service struct {
	api      API
	bindings *cache.Cache[[]skport.Binding]
	cards    *cache.Cache[skport.CardDetail]
	wiki     *cache.Cache[[]skport.WikiItem]
}

// NewService creates a Service with the TTLs from sched.
func NewService(api API, sched config.Schedule) *Service {
	return &Service{
		api:      api,
		bindings: cache.New[[]skport.Binding](sched.CatalogTTL),
		cards:    cache.New[skport.CardDetail](sched.CardDetailTTL),
		wiki:     cache.New[[]skport.WikiItem](sched.WikiTTL),
	}
}

// Bindings returns the cached game role listing for the session's user.
func (s *Service) Bindings(ctx context.Context, session *skport.Session) ([]skport.Binding, error) {
	return s.bindings.GetOrSet(ctx, "bindings-"+session.UserID, func(ctx context.Context) ([]skport.Binding, error) {
		return s.api.Binding(ctx, session)
	})
}

func cardKey(roleID string) string {
	return "card-detail-" + roleID
}

func wikiKey(mainID, subID int) string {
	return "wiki-" + strconv.Itoa(mainID) + "-" + strconv.Itoa(subID)
}

// CardDetail returns the cached profile snapshot for the role, fetching
// it when absent or expired.
func (s *Service) CardDetail(ctx context.Context, session *skport.Session, role skport.GameRole) (skport.CardDetail, error) {
	return s.cards.GetOrSet(ctx, cardKey(role.RoleID), func(ctx context.Context) (skport.CardDetail, error) {
		return s.api.CardDetail(ctx, session, role)
	})
}

// InvalidateCardDetail drops the cached snapshot for the role so the
// next read refetches.
func (s *Service) InvalidateCardDetail(roleID string) {
	s.cards.Invalidate(cardKey(roleID))
}

// Operators returns the cached operator catalog.
func (s *Service) Operators(ctx context.Context) ([]skport.WikiItem, error) {
	return s.catalog(ctx, skport.WikiMainGame, skport.WikiSubOperators)
}

// Weapons returns the cached weapon catalog.
func (s *Service) Weapons(ctx context.Context) ([]skport.WikiItem, error) {
	return s.catalog(ctx, skport.WikiMainGame, skport.WikiSubWeapons)
}

func (s *Service) catalog(ctx context.Context, mainID, subID int) ([]skport.WikiItem, error) {
	return s.wiki.GetOrSet(ctx, wikiKey(mainID, subID), func(ctx context.Context) ([]skport.WikiItem, error) {
		return s.api.WikiCatalog(ctx, mainID, subID)
	})
}

// SearchOperators returns catalog operators whose name contains query,
// compared case-insensitively after Unicode compatibility normalization
// so full-width and decomposed input still matches.
func (s *Service) SearchOperators(ctx context.Context, query string) ([]skport.WikiItem, error) {
	items, err := s.Operators(ctx)
	if err != nil {
		return nil, err
	}

	return filterByName(items, query), nil
}

// SearchWeapons is SearchOperators over the weapon catalog.
func (s *Service) SearchWeapons(ctx context.Context, query string) ([]skport.WikiItem, error) {
	items, err := s.Weapons(ctx)
	if err != nil {
		return nil, err
	}

	return filterByName(items, query), nil
}

func filterByName(items []skport.WikiItem, query string) []skport.WikiItem {
	needle := fold(query)
	if needle == "" {
		return items
	}

	var matched []skport.WikiItem

	for _, item := range items {
		if strings.Contains(fold(item.Name), needle) {
			matched = append(matched, item)
		}
	}

	return matched
}

func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}
