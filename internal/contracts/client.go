package contracts

import (
	"github.com/wonny/clientwatch/internal/calendar"
)

// ClientRecord is the read-only input to the engine
// ⭐ SSOT: client data shape shared by alerts, compliance and the stores
type ClientRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	DateOfBirth calendar.Date `json:"date_of_birth"`

	Policies      []Policy         `json:"policies"`
	FollowUps     []FollowUp       `json:"follow_ups"`
	Concerns      []Concern        `json:"concerns"`
	RiskProfile   RiskProfile      `json:"risk_profile"`
	Interactions  []Interaction    `json:"interactions"`
	Compliance    ComplianceRecord `json:"compliance"`
	FamilyMembers []FamilyMember   `json:"family_members"`
	LifeEvents    []LifeEvent      `json:"life_events"`
}

// PolicyType classifies a financial product
type PolicyType string

const (
	PolicyPension          PolicyType = "pension"
	PolicyISA              PolicyType = "isa"
	PolicyGIA              PolicyType = "gia"
	PolicyLifeInsurance    PolicyType = "life_insurance"
	PolicyCriticalIllness  PolicyType = "critical_illness"
	PolicyIncomeProtection PolicyType = "income_protection"
	PolicyMortgage         PolicyType = "mortgage"
	PolicyAnnuity          PolicyType = "annuity"
)

// Policy is a financial product held by the client
type Policy struct {
	ID           string        `json:"id"`
	Type         PolicyType    `json:"type"`
	Provider     string        `json:"provider,omitempty"`
	RenewalDate  calendar.Date `json:"renewal_date"`
	MaturityDate calendar.Date `json:"maturity_date"`
}

// FollowUp is a commitment made to the client
type FollowUp struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	DueDate     calendar.Date `json:"due_date"`
	Completed   bool          `json:"completed"`
}

// Severity of a client concern
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConcernStatus is active or resolved
type ConcernStatus string

const (
	ConcernActive   ConcernStatus = "active"
	ConcernResolved ConcernStatus = "resolved"
)

// Concern is a client worry the advisor should revisit
type Concern struct {
	Topic         string        `json:"topic"`
	Severity      Severity      `json:"severity"`
	Status        ConcernStatus `json:"status"`
	LastDiscussed calendar.Date `json:"last_discussed"`
}

// RiskProfile holds the last risk assessment date (zero = never assessed)
type RiskProfile struct {
	LastAssessed calendar.Date `json:"last_assessed"`
}

// Interaction is one past advisor-client contact
type Interaction struct {
	Date    calendar.Date `json:"date"`
	Channel string        `json:"channel,omitempty"`
}

// ValueEvent is a logged instance of value delivered to the client
type ValueEvent struct {
	Date        calendar.Date `json:"date"`
	Description string        `json:"description"`
}

// ComplianceRecord tracks Consumer Duty obligations
type ComplianceRecord struct {
	LastAnnualReview      calendar.Date `json:"last_annual_review"`
	SuitabilityConfirmed  bool          `json:"suitability_confirmed"`
	DocumentationComplete bool          `json:"documentation_complete"`
	ValueDelivered        []ValueEvent  `json:"value_delivered"`
}

// FamilyMember is a relative tracked for birthday detection
type FamilyMember struct {
	Name         string        `json:"name"`
	Relationship string        `json:"relationship"`
	DateOfBirth  calendar.Date `json:"date_of_birth"`
}

// LifeEventType classifies a life event
type LifeEventType string

const (
	LifeEventWedding     LifeEventType = "wedding"
	LifeEventAnniversary LifeEventType = "anniversary"
	LifeEventRetirement  LifeEventType = "retirement"
	LifeEventBirth       LifeEventType = "birth"
	LifeEventOther       LifeEventType = "other"
)

// IsAnniversary reports whether the event recurs yearly as an anniversary
func (t LifeEventType) IsAnniversary() bool {
	return t == LifeEventWedding || t == LifeEventAnniversary
}

// LifeEvent is a dated event in the client's life
type LifeEvent struct {
	Type          LifeEventType `json:"type"`
	Date          calendar.Date `json:"date"`
	Description   string        `json:"description,omitempty"`
	RelatedPerson string        `json:"related_person,omitempty"`
}

// Normalized returns a copy whose collections are empty rather than nil
func (c ClientRecord) Normalized() ClientRecord {
	if c.Policies == nil {
		c.Policies = []Policy{}
	}
	if c.FollowUps == nil {
		c.FollowUps = []FollowUp{}
	}
	if c.Concerns == nil {
		c.Concerns = []Concern{}
	}
	if c.Interactions == nil {
		c.Interactions = []Interaction{}
	}
	if c.Compliance.ValueDelivered == nil {
		c.Compliance.ValueDelivered = []ValueEvent{}
	}
	if c.FamilyMembers == nil {
		c.FamilyMembers = []FamilyMember{}
	}
	if c.LifeEvents == nil {
		c.LifeEvents = []LifeEvent{}
	}
	return c
}

// LastContact returns the most recent interaction on or before asOf, zero if none.
// Interactions dated after asOf are ignored so past evaluations stay reproducible.
func (c ClientRecord) LastContact(asOf calendar.Date) calendar.Date {
	var last calendar.Date
	for _, it := range c.Interactions {
		if it.Date.IsZero() || it.Date.After(asOf) {
			continue
		}
		if it.Date.After(last) {
			last = it.Date
		}
	}
	return last
}
