package company

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testra/backoffice-api/internal/model"
)

func company(name, contact string, opts ...func(*model.Company)) *model.Company {
	c := &model.Company{
		CompanyName:   name,
		ContactPerson: contact,
		ClientType:    model.ClientTypeCompany,
		Emails:        model.ContactList{},
		Phones:        model.ContactList{},
		Services:      model.ServiceSet{},
		Status:        model.CompanyStatusActive,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func TestFilterCompaniesSearchesLabeledContacts(t *testing.T) {
	acme := company("Acme Corp", "Jordan Reyes", func(c *model.Company) {
		c.Emails = model.ContactList{
			{Value: "front@acme.test", Label: "Front desk"},
			{Value: "billing@acme.test", Label: "Billing"},
		}
	})
	globex := company("Globex", "Pat Kim", func(c *model.Company) {
		c.Phones = model.ContactList{{Value: "+15550100", Label: "Warehouse"}}
	})
	companies := []*model.Company{acme, globex}

	// Match on a non-primary email value.
	got := FilterCompanies(companies, &model.CompanyFilters{SearchTerm: "BILLING@"})
	assert.Equal(t, []*model.Company{acme}, got)

	// Match on a phone label.
	got = FilterCompanies(companies, &model.CompanyFilters{SearchTerm: "warehouse"})
	assert.Equal(t, []*model.Company{globex}, got)

	// Match on contact person.
	got = FilterCompanies(companies, &model.CompanyFilters{SearchTerm: "jordan"})
	assert.Equal(t, []*model.Company{acme}, got)

	got = FilterCompanies(companies, &model.CompanyFilters{SearchTerm: "no such thing"})
	assert.Empty(t, got)
}

func TestFilterCompaniesByServiceAndStatus(t *testing.T) {
	testing_ := company("Testing Co", "A", func(c *model.Company) {
		c.Services = model.ServiceSet{model.ServiceTypeTesting}
	})
	web := company("Web Co", "B", func(c *model.Company) {
		c.Services = model.ServiceSet{model.ServiceTypeWeb}
		c.Status = model.CompanyStatusInactive
	})
	companies := []*model.Company{testing_, web}

	got := FilterCompanies(companies, &model.CompanyFilters{Service: model.ServiceTypeTesting})
	assert.Equal(t, []*model.Company{testing_}, got)

	got = FilterCompanies(companies, &model.CompanyFilters{Status: model.CompanyStatusInactive})
	assert.Equal(t, []*model.Company{web}, got)

	got = FilterCompanies(companies, &model.CompanyFilters{
		Service: model.ServiceTypeWeb,
		Status:  model.CompanyStatusActive,
	})
	assert.Empty(t, got)
}

func TestNormalizeLegacyMultipleExpandsToAllServices(t *testing.T) {
	legacy := "multiple"
	email := "old@legacy.test"
	c := &model.Company{
		CompanyName:       "Legacy Co",
		LegacyServiceType: &legacy,
		LegacyEmail:       &email,
	}

	c.Normalize()

	assert.Equal(t, model.ServiceSet{
		model.ServiceTypeTesting,
		model.ServiceTypeWeb,
		model.ServiceTypeIT,
	}, c.Services)
	assert.Equal(t, model.ContactList{{Value: "old@legacy.test"}}, c.Emails)
	assert.Nil(t, c.LegacyServiceType)
	assert.Nil(t, c.LegacyEmail)

	// Idempotent on an already-canonical record.
	c.Normalize()
	assert.Len(t, c.Services, 3)
	assert.Len(t, c.Emails, 1)
}

func TestNormalizeSingleLegacyTag(t *testing.T) {
	legacy := "web"
	c := &model.Company{LegacyServiceType: &legacy}
	c.Normalize()
	assert.Equal(t, model.ServiceSet{model.ServiceTypeWeb}, c.Services)
}

func TestNormalizeDoesNotOverrideCanonicalFields(t *testing.T) {
	legacy := "it"
	email := "ignored@legacy.test"
	c := &model.Company{
		Services:          model.ServiceSet{model.ServiceTypeTesting},
		Emails:            model.ContactList{{Value: "kept@acme.test", Label: "Main"}},
		LegacyServiceType: &legacy,
		LegacyEmail:       &email,
	}

	c.Normalize()

	assert.Equal(t, model.ServiceSet{model.ServiceTypeTesting}, c.Services)
	assert.Equal(t, model.ContactList{{Value: "kept@acme.test", Label: "Main"}}, c.Emails)
}
