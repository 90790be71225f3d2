package ingest

import (
	"fmt"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
)

// Reason is a machine-readable rejection code for one record.
type Reason string

const (
	ReasonOutOfRange        Reason = "OutOfRange"
	ReasonNegativeAmount    Reason = "NegativeAmount"
	ReasonDuplicateID       Reason = "DuplicateId"
	ReasonDanglingReference Reason = "DanglingReference"
	ReasonInvalidEnum       Reason = "InvalidEnum"
	ReasonMissingField      Reason = "MissingField"
)

// RecordError describes why a single record was excluded from scoring. It is
// a value, not a Go error: per-record failures are collected and returned
// alongside the validated records, never thrown mid-pass.
type RecordError struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   Reason `json:"reason"`
	Detail   string `json:"detail"`
}

// RawAccount is an unvalidated account record as received from the CRM feed.
type RawAccount struct {
	AccountID              string             `json:"account_id"`
	CompanyName            string             `json:"company_name"`
	Industry               string             `json:"industry,omitempty"`
	Region                 string             `json:"region,omitempty"`
	AssignedRep            string             `json:"assigned_rep,omitempty"`
	AnnualRevenue          float64            `json:"annual_revenue"`
	PaymentTimeliness      float64            `json:"payment_timeliness"`
	CommunicationSentiment float64            `json:"communication_sentiment"`
	OrderVolumeTrend       float64            `json:"order_volume_trend"`
	ProductAdoptionRate    float64            `json:"product_adoption_rate"`
	CompetitiveThreat      string             `json:"competitive_threat,omitempty"`
	ExpansionPotential     string             `json:"expansion_potential,omitempty"`
}

// RawOpportunity is an unvalidated opportunity record.
type RawOpportunity struct {
	OpportunityID     string    `json:"opportunity_id"`
	AccountID         string    `json:"account_id"`
	Name              string    `json:"opportunity_name,omitempty"`
	Value             float64   `json:"value"`
	Probability       float64   `json:"probability"`
	Stage             string    `json:"stage"`
	ExpectedCloseDate time.Time `json:"expected_close_date"`
}

// Result carries the validated entities of one batch plus every per-record
// rejection. A batch with rejections is not a failed batch.
type Result struct {
	Accounts      []domain.Account
	Opportunities []domain.Opportunity
	Errors        []RecordError
}

// Validator converts raw CRM records into validated domain entities. It is
// pure: input slices are never mutated.
type Validator struct{}

// NewValidator creates a new batch validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBatch validates accounts first, then opportunities against the set
// of accepted account IDs. An opportunity owned by a rejected account is a
// dangling reference: its owner does not exist in the validated batch.
// ID uniqueness is batch-wide: an ID is taken by its first occurrence even
// when that record was rejected, so a later duplicate never slips in on the
// back of its twin's rejection.
func (v *Validator) ValidateBatch(accounts []RawAccount, opportunities []RawOpportunity) Result {
	var res Result

	seenAccounts := make(map[string]bool, len(accounts))
	acceptedAccounts := make(map[string]bool, len(accounts))
	for _, raw := range accounts {
		errs := v.validateAccount(raw, seenAccounts)
		if raw.AccountID != "" {
			seenAccounts[raw.AccountID] = true
		}
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		acceptedAccounts[raw.AccountID] = true
		res.Accounts = append(res.Accounts, domain.Account{
			ID:                     raw.AccountID,
			Name:                   raw.CompanyName,
			Industry:               raw.Industry,
			Region:                 raw.Region,
			AssignedRep:            raw.AssignedRep,
			AnnualRevenue:          raw.AnnualRevenue,
			PaymentTimeliness:      raw.PaymentTimeliness,
			CommunicationSentiment: raw.CommunicationSentiment,
			OrderVolumeTrend:       raw.OrderVolumeTrend,
			ProductAdoptionRate:    raw.ProductAdoptionRate,
			CompetitiveThreat:      domain.ThreatLevel(raw.CompetitiveThreat),
			ExpansionPotential:     domain.ThreatLevel(raw.ExpansionPotential),
		})
	}

	seenOpportunities := make(map[string]bool, len(opportunities))
	for _, raw := range opportunities {
		errs := v.validateOpportunity(raw, acceptedAccounts, seenOpportunities)
		if raw.OpportunityID != "" {
			seenOpportunities[raw.OpportunityID] = true
		}
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		res.Opportunities = append(res.Opportunities, domain.Opportunity{
			ID:                raw.OpportunityID,
			AccountID:         raw.AccountID,
			Name:              raw.Name,
			Value:             raw.Value,
			Probability:       raw.Probability,
			Stage:             domain.PipelineStage(raw.Stage),
			ExpectedCloseDate: raw.ExpectedCloseDate,
		})
	}

	return res
}

func (v *Validator) validateAccount(raw RawAccount, seen map[string]bool) []RecordError {
	var errs []RecordError

	if raw.AccountID == "" {
		errs = append(errs, RecordError{
			RecordID: raw.CompanyName,
			Field:    "account_id",
			Reason:   ReasonMissingField,
			Detail:   "account_id must not be empty",
		})
		return errs
	}
	if seen[raw.AccountID] {
		errs = append(errs, RecordError{
			RecordID: raw.AccountID,
			Field:    "account_id",
			Reason:   ReasonDuplicateID,
			Detail:   "account_id already present in batch",
		})
		return errs
	}

	percentChecks := []struct {
		field string
		value float64
	}{
		{"payment_timeliness", raw.PaymentTimeliness},
		{"communication_sentiment", raw.CommunicationSentiment},
		{"product_adoption_rate", raw.ProductAdoptionRate},
	}
	for _, check := range percentChecks {
		field, value := check.field, check.value
		if value < 0 || value > 100 {
			errs = append(errs, RecordError{
				RecordID: raw.AccountID,
				Field:    field,
				Reason:   ReasonOutOfRange,
				Detail:   fmt.Sprintf("%s=%v outside [0,100]", field, value),
			})
		}
	}

	if raw.AnnualRevenue < 0 {
		errs = append(errs, RecordError{
			RecordID: raw.AccountID,
			Field:    "annual_revenue",
			Reason:   ReasonNegativeAmount,
			Detail:   fmt.Sprintf("annual_revenue=%v must not be negative", raw.AnnualRevenue),
		})
	}

	flagChecks := []struct {
		field string
		value string
	}{
		{"competitive_threat", raw.CompetitiveThreat},
		{"expansion_potential", raw.ExpansionPotential},
	}
	for _, check := range flagChecks {
		field, value := check.field, check.value
		if value != "" && !validThreatLevel(value) {
			errs = append(errs, RecordError{
				RecordID: raw.AccountID,
				Field:    field,
				Reason:   ReasonInvalidEnum,
				Detail:   fmt.Sprintf("%s=%q is not one of Low/Medium/High", field, value),
			})
		}
	}

	return errs
}

func (v *Validator) validateOpportunity(raw RawOpportunity, accounts, seen map[string]bool) []RecordError {
	var errs []RecordError

	if raw.OpportunityID == "" {
		errs = append(errs, RecordError{
			RecordID: raw.AccountID,
			Field:    "opportunity_id",
			Reason:   ReasonMissingField,
			Detail:   "opportunity_id must not be empty",
		})
		return errs
	}
	if seen[raw.OpportunityID] {
		errs = append(errs, RecordError{
			RecordID: raw.OpportunityID,
			Field:    "opportunity_id",
			Reason:   ReasonDuplicateID,
			Detail:   "opportunity_id already present in batch",
		})
		return errs
	}

	if !accounts[raw.AccountID] {
		errs = append(errs, RecordError{
			RecordID: raw.OpportunityID,
			Field:    "account_id",
			Reason:   ReasonDanglingReference,
			Detail:   fmt.Sprintf("account %q not found in batch", raw.AccountID),
		})
	}

	if raw.Probability < 0 || raw.Probability > 100 {
		errs = append(errs, RecordError{
			RecordID: raw.OpportunityID,
			Field:    "probability",
			Reason:   ReasonOutOfRange,
			Detail:   fmt.Sprintf("probability=%v outside [0,100]", raw.Probability),
		})
	}

	if raw.Value < 0 {
		errs = append(errs, RecordError{
			RecordID: raw.OpportunityID,
			Field:    "value",
			Reason:   ReasonNegativeAmount,
			Detail:   fmt.Sprintf("value=%v must not be negative", raw.Value),
		})
	}

	if !domain.PipelineStage(raw.Stage).Valid() {
		errs = append(errs, RecordError{
			RecordID: raw.OpportunityID,
			Field:    "stage",
			Reason:   ReasonInvalidEnum,
			Detail:   fmt.Sprintf("stage=%q is not a pipeline stage", raw.Stage),
		})
	}

	return errs
}

func validThreatLevel(s string) bool {
	switch domain.ThreatLevel(s) {
	case domain.ThreatLow, domain.ThreatMedium, domain.ThreatHigh:
		return true
	}
	return false
}
