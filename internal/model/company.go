package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "active"
	CompanyStatusInactive CompanyStatus = "inactive"
)

type ClientType string

const (
	ClientTypeCompany    ClientType = "company"
	ClientTypeIndividual ClientType = "individual"
)

// ContactEntry is one labeled value in a multi-valued contact field,
// e.g. {"billing@acme.test", "Billing"} or {"+15550100", "Mobile"}.
type ContactEntry struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// ContactList persists as a JSONB array, preserving entry order.
type ContactList []ContactEntry

func (c ContactList) Value() (driver.Value, error) {
	if c == nil {
		c = ContactList{}
	}
	return json.Marshal(c)
}

func (c *ContactList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = ContactList{}
		return nil
	default:
		return fmt.Errorf("unsupported contact list column type %T", src)
	}
}

// ServiceSet persists as a JSONB array of service tags.
type ServiceSet []ServiceType

func (s ServiceSet) Value() (driver.Value, error) {
	if s == nil {
		s = ServiceSet{}
	}
	return json.Marshal(s)
}

func (s *ServiceSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = ServiceSet{}
		return nil
	default:
		return fmt.Errorf("unsupported service set column type %T", src)
	}
}

// Contains reports whether the set carries the given service tag.
func (s ServiceSet) Contains(t ServiceType) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// Company is a client record. Contact fields are deliberately multi-valued:
// each email/phone entry is independently labeled. Older records carried a
// single legacy service_type scalar and scalar email/phone columns; those
// shapes are normalized into the canonical form at the repository boundary
// (see Normalize) so nothing above the data layer ever sees legacy shape.
type Company struct {
	Base
	CompanyName   string        `json:"company_name" db:"company_name"`
	ContactPerson string        `json:"contact_person" db:"contact_person"`
	ClientType    ClientType    `json:"client_type" db:"client_type"`
	Emails        ContactList   `json:"emails" db:"emails"`
	Phones        ContactList   `json:"phones" db:"phones"`
	Services      ServiceSet    `json:"services" db:"services"`
	Status        CompanyStatus `json:"status" db:"status"`

	// Legacy columns, read-only. Never written by new code.
	LegacyServiceType *string `json:"-" db:"legacy_service_type"`
	LegacyEmail       *string `json:"-" db:"legacy_email"`
	LegacyPhone       *string `json:"-" db:"legacy_phone"`
}

// Normalize folds any legacy shape into the canonical one. A legacy
// service_type of "multiple" expands to all three service tags; a known
// single tag becomes a one-element set. Legacy scalar email/phone become
// single unlabeled entries. Idempotent on already-canonical records.
func (c *Company) Normalize() {
	if len(c.Services) == 0 && c.LegacyServiceType != nil {
		switch ServiceType(*c.LegacyServiceType) {
		case "multiple":
			c.Services = ServiceSet{ServiceTypeTesting, ServiceTypeWeb, ServiceTypeIT}
		case ServiceTypeTesting, ServiceTypeWeb, ServiceTypeIT:
			c.Services = ServiceSet{ServiceType(*c.LegacyServiceType)}
		}
	}
	if c.Services == nil {
		c.Services = ServiceSet{}
	}
	if len(c.Emails) == 0 && c.LegacyEmail != nil && *c.LegacyEmail != "" {
		c.Emails = ContactList{{Value: *c.LegacyEmail}}
	}
	if len(c.Phones) == 0 && c.LegacyPhone != nil && *c.LegacyPhone != "" {
		c.Phones = ContactList{{Value: *c.LegacyPhone}}
	}
	if c.Emails == nil {
		c.Emails = ContactList{}
	}
	if c.Phones == nil {
		c.Phones = ContactList{}
	}
	c.LegacyServiceType = nil
	c.LegacyEmail = nil
	c.LegacyPhone = nil
}

type CreateCompanyRequest struct {
	CompanyName   string         `json:"company_name" binding:"required"`
	ContactPerson string         `json:"contact_person" binding:"required"`
	ClientType    ClientType     `json:"client_type" binding:"required,oneof=company individual"`
	Emails        []ContactEntry `json:"emails" binding:"omitempty,dive"`
	Phones        []ContactEntry `json:"phones" binding:"omitempty,dive"`
	Services      []ServiceType  `json:"services" binding:"omitempty,dive,oneof=testing web it"`
	Status        CompanyStatus  `json:"status" binding:"omitempty,oneof=active inactive"`
}

type UpdateCompanyRequest struct {
	CompanyName   *string        `json:"company_name"`
	ContactPerson *string        `json:"contact_person"`
	ClientType    *ClientType    `json:"client_type" binding:"omitempty,oneof=company individual"`
	Emails        []ContactEntry `json:"emails" binding:"omitempty,dive"`
	Phones        []ContactEntry `json:"phones" binding:"omitempty,dive"`
	Services      []ServiceType  `json:"services" binding:"omitempty,dive,oneof=testing web it"`
	Status        *CompanyStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type CompanyFilters struct {
	SearchTerm string
	Service    ServiceType
	Status     CompanyStatus
}

// CompanyStats mirrors the tiles on the companies page.
type CompanyStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Testing  int `json:"testing"`
}
