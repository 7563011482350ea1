package company

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/internal/repository"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
)

const (
	cacheKeyCompanies = "companies:all"
	cacheTTL          = time.Minute
)

// Service owns company records. The full (small) collection is cached so the
// calendar can resolve company names per indicator without a query storm;
// any mutation invalidates the cache.
type Service struct {
	repo  repository.CompanyRepository
	cache *gocache.Cache
}

func NewService(repo repository.CompanyRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, 5*time.Minute),
	}
}

func (s *Service) CreateCompany(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error) {
	name := strings.TrimSpace(req.CompanyName)
	contact := strings.TrimSpace(req.ContactPerson)
	if name == "" {
		return nil, apperrors.BadRequest("company name is required", nil)
	}
	if contact == "" {
		return nil, apperrors.BadRequest("contact person is required", nil)
	}

	status := req.Status
	if status == "" {
		status = model.CompanyStatusActive
	}

	company := &model.Company{
		CompanyName:   name,
		ContactPerson: contact,
		ClientType:    req.ClientType,
		Emails:        model.ContactList(req.Emails),
		Phones:        model.ContactList(req.Phones),
		Services:      model.ServiceSet(req.Services),
		Status:        status,
	}
	company.Normalize()

	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyCompanies)
	return company, nil
}

func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateCompany(ctx context.Context, id uuid.UUID, req *model.UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return nil, apperrors.BadRequest("company name is required", nil)
		}
		company.CompanyName = name
	}
	if req.ContactPerson != nil {
		contact := strings.TrimSpace(*req.ContactPerson)
		if contact == "" {
			return nil, apperrors.BadRequest("contact person is required", nil)
		}
		company.ContactPerson = contact
	}
	if req.ClientType != nil {
		company.ClientType = *req.ClientType
	}
	if req.Emails != nil {
		company.Emails = model.ContactList(req.Emails)
	}
	if req.Phones != nil {
		company.Phones = model.ContactList(req.Phones)
	}
	if req.Services != nil {
		company.Services = model.ServiceSet(req.Services)
	}
	if req.Status != nil {
		company.Status = *req.Status
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyCompanies)
	return company, nil
}

func (s *Service) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(cacheKeyCompanies)
	return nil
}

// ListCompanies returns the filtered collection, ordered by company name.
// Filtering happens in memory over the cached, normalized set.
func (s *Service) ListCompanies(ctx context.Context, filters *model.CompanyFilters) ([]*model.Company, error) {
	companies, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		return companies, nil
	}
	return FilterCompanies(companies, filters), nil
}

// Stats mirrors the tiles on the companies page.
func (s *Service) Stats(ctx context.Context) (*model.CompanyStats, error) {
	companies, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.CompanyStats{Total: len(companies)}
	for _, c := range companies {
		switch c.Status {
		case model.CompanyStatusActive:
			stats.Active++
		case model.CompanyStatusInactive:
			stats.Inactive++
		}
		if c.Services.Contains(model.ServiceTypeTesting) {
			stats.Testing++
		}
	}
	return stats, nil
}

// NameMap resolves company ids to display names for calendar rendering.
func (s *Service) NameMap(ctx context.Context) (map[uuid.UUID]string, error) {
	companies, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.CompanyName
	}
	return names, nil
}

func (s *Service) listAll(ctx context.Context) ([]*model.Company, error) {
	if cached, ok := s.cache.Get(cacheKeyCompanies); ok {
		return cached.([]*model.Company), nil
	}
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyCompanies, companies, cacheTTL)
	return companies, nil
}

// FilterCompanies applies search term, service and status filters. The
// search term matches company name, contact person, or any label/value in
// the multi-valued email and phone lists, case-insensitively.
func FilterCompanies(companies []*model.Company, filters *model.CompanyFilters) []*model.Company {
	term := strings.ToLower(strings.TrimSpace(filters.SearchTerm))

	matched := make([]*model.Company, 0, len(companies))
	for _, c := range companies {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		if filters.Service != "" && !c.Services.Contains(filters.Service) {
			continue
		}
		if term != "" && !matchesTerm(c, term) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

func matchesTerm(c *model.Company, term string) bool {
	if strings.Contains(strings.ToLower(c.CompanyName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(c.ContactPerson), term) {
		return true
	}
	for _, list := range []model.ContactList{c.Emails, c.Phones} {
		for _, entry := range list {
			if strings.Contains(strings.ToLower(entry.Value), term) ||
				strings.Contains(strings.ToLower(entry.Label), term) {
				return true
			}
		}
	}
	return false
}
