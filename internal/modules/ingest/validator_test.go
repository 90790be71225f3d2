package ingest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawAccount(id string) RawAccount {
	return RawAccount{
		AccountID:              id,
		CompanyName:            "Golden Gate Grocers LLC",
		AnnualRevenue:          250000,
		PaymentTimeliness:      90,
		CommunicationSentiment: 70,
		OrderVolumeTrend:       5,
		ProductAdoptionRate:    60,
	}
}

func rawOpportunity(id, accountID string) RawOpportunity {
	return RawOpportunity{
		OpportunityID:     id,
		AccountID:         accountID,
		Value:             50000,
		Probability:       65,
		Stage:             "Proposal",
		ExpectedCloseDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateBatch_AllValid(t *testing.T) {
	v := NewValidator()

	res := v.ValidateBatch(
		[]RawAccount{rawAccount("ACC-1"), rawAccount("ACC-2")},
		[]RawOpportunity{rawOpportunity("OPP-1", "ACC-1")},
	)

	assert.Len(t, res.Accounts, 2)
	assert.Len(t, res.Opportunities, 1)
	assert.Empty(t, res.Errors)
}

func TestValidateBatch_RejectsDoesNotClamp(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		mutate     func(*RawAccount)
		wantReason Reason
		wantField  string
	}{
		{
			name:       "negative percentage",
			mutate:     func(a *RawAccount) { a.PaymentTimeliness = -5 },
			wantReason: ReasonOutOfRange,
			wantField:  "payment_timeliness",
		},
		{
			name:       "percentage above 100",
			mutate:     func(a *RawAccount) { a.CommunicationSentiment = 140 },
			wantReason: ReasonOutOfRange,
			wantField:  "communication_sentiment",
		},
		{
			name:       "negative revenue",
			mutate:     func(a *RawAccount) { a.AnnualRevenue = -100 },
			wantReason: ReasonNegativeAmount,
			wantField:  "annual_revenue",
		},
		{
			name:       "unknown threat flag",
			mutate:     func(a *RawAccount) { a.CompetitiveThreat = "Existential" },
			wantReason: ReasonInvalidEnum,
			wantField:  "competitive_threat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := rawAccount("ACC-BAD")
			tt.mutate(&acc)

			res := v.ValidateBatch([]RawAccount{acc}, nil)

			assert.Empty(t, res.Accounts, "invalid record must be excluded, not clamped")
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.wantReason, res.Errors[0].Reason)
			assert.Equal(t, tt.wantField, res.Errors[0].Field)
			assert.Equal(t, "ACC-BAD", res.Errors[0].RecordID)
		})
	}
}

func TestValidateBatch_PartialFailureIsolation(t *testing.T) {
	v := NewValidator()

	var accounts []RawAccount
	for i := 0; i < 10; i++ {
		accounts = append(accounts, rawAccount(fmt.Sprintf("ACC-%02d", i)))
	}
	bad := rawAccount("ACC-BAD")
	bad.ProductAdoptionRate = 140
	accounts = append(accounts, bad)

	res := v.ValidateBatch(accounts, nil)

	assert.Len(t, res.Accounts, 10, "one bad record must not take valid records with it")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "ACC-BAD", res.Errors[0].RecordID)
}

func TestValidateBatch_DuplicateIDs(t *testing.T) {
	v := NewValidator()

	res := v.ValidateBatch(
		[]RawAccount{rawAccount("ACC-1"), rawAccount("ACC-1")},
		[]RawOpportunity{rawOpportunity("OPP-1", "ACC-1"), rawOpportunity("OPP-1", "ACC-1")},
	)

	assert.Len(t, res.Accounts, 1, "first occurrence wins")
	assert.Len(t, res.Opportunities, 1)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, ReasonDuplicateID, res.Errors[0].Reason)
	assert.Equal(t, ReasonDuplicateID, res.Errors[1].Reason)
}

func TestValidateBatch_DuplicateOfRejectedRecord(t *testing.T) {
	v := NewValidator()

	t.Run("account", func(t *testing.T) {
		bad := rawAccount("ACC-DUP")
		bad.PaymentTimeliness = 140

		res := v.ValidateBatch([]RawAccount{bad, rawAccount("ACC-DUP")}, nil)

		assert.Empty(t, res.Accounts, "an ID is taken by its first occurrence even when rejected")
		require.Len(t, res.Errors, 2)
		assert.Equal(t, ReasonOutOfRange, res.Errors[0].Reason)
		assert.Equal(t, ReasonDuplicateID, res.Errors[1].Reason)
		assert.Equal(t, "ACC-DUP", res.Errors[1].RecordID)
	})

	t.Run("opportunity", func(t *testing.T) {
		bad := rawOpportunity("OPP-DUP", "ACC-1")
		bad.Probability = 300

		res := v.ValidateBatch(
			[]RawAccount{rawAccount("ACC-1")},
			[]RawOpportunity{bad, rawOpportunity("OPP-DUP", "ACC-1")},
		)

		assert.Empty(t, res.Opportunities)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, ReasonOutOfRange, res.Errors[0].Reason)
		assert.Equal(t, ReasonDuplicateID, res.Errors[1].Reason)
		assert.Equal(t, "OPP-DUP", res.Errors[1].RecordID)
	})
}

func TestValidateBatch_DanglingReference(t *testing.T) {
	v := NewValidator()

	t.Run("unknown account", func(t *testing.T) {
		res := v.ValidateBatch(
			[]RawAccount{rawAccount("ACC-1")},
			[]RawOpportunity{rawOpportunity("OPP-1", "ACC-MISSING")},
		)

		assert.Empty(t, res.Opportunities)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, ReasonDanglingReference, res.Errors[0].Reason)
		assert.Equal(t, "OPP-1", res.Errors[0].RecordID)
	})

	t.Run("owner was itself rejected", func(t *testing.T) {
		badOwner := rawAccount("ACC-1")
		badOwner.PaymentTimeliness = 400

		res := v.ValidateBatch(
			[]RawAccount{badOwner},
			[]RawOpportunity{rawOpportunity("OPP-1", "ACC-1")},
		)

		assert.Empty(t, res.Opportunities)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, ReasonOutOfRange, res.Errors[0].Reason)
		assert.Equal(t, ReasonDanglingReference, res.Errors[1].Reason)
	})
}

func TestValidateBatch_InvalidStage(t *testing.T) {
	v := NewValidator()

	opp := rawOpportunity("OPP-1", "ACC-1")
	opp.Stage = "Wishing"

	res := v.ValidateBatch([]RawAccount{rawAccount("ACC-1")}, []RawOpportunity{opp})

	assert.Empty(t, res.Opportunities)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ReasonInvalidEnum, res.Errors[0].Reason)
	assert.Equal(t, "stage", res.Errors[0].Field)
}

func TestValidateBatch_CollectsEveryProblemOnOneRecord(t *testing.T) {
	v := NewValidator()

	acc := rawAccount("ACC-MESS")
	acc.PaymentTimeliness = -5
	acc.AnnualRevenue = -1

	res := v.ValidateBatch([]RawAccount{acc}, nil)

	assert.Empty(t, res.Accounts)
	assert.Len(t, res.Errors, 2)
}
