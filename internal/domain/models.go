package domain

import "time"

// HealthStatus is the named band an account health score falls into.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "Excellent"
	HealthGood      HealthStatus = "Good"
	HealthFair      HealthStatus = "Fair"
	HealthPoor      HealthStatus = "Poor"
	HealthCritical  HealthStatus = "Critical"
)

// PipelineStage represents where an opportunity sits in the sales pipeline.
type PipelineStage string

const (
	StageProspecting   PipelineStage = "Prospecting"
	StageQualification PipelineStage = "Qualification"
	StageProposal      PipelineStage = "Proposal"
	StageNegotiation   PipelineStage = "Negotiation"
	StageClosedWon     PipelineStage = "ClosedWon"
	StageClosedLost    PipelineStage = "ClosedLost"
)

// Stages lists all pipeline stages in pipeline order.
var Stages = []PipelineStage{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// Valid reports whether the stage is one of the declared pipeline stages.
func (s PipelineStage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the opportunity can no longer move stages.
func (s PipelineStage) Terminal() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// AlertPriority is an ordered alert severity. Higher values are more urgent.
type AlertPriority int

const (
	PriorityLow AlertPriority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p AlertPriority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalText makes priorities render as names in JSON output.
func (p AlertPriority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ThreatLevel is a coarse Low/Medium/High flag carried on accounts for
// qualitative signals (competitive pressure, expansion potential).
type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "Low"
	ThreatMedium ThreatLevel = "Medium"
	ThreatHigh   ThreatLevel = "High"
)

// InsightKind categorizes an emitted insight.
type InsightKind string

const (
	KindChurnRisk            InsightKind = "ChurnRisk"
	KindGrowthOpportunity    InsightKind = "GrowthOpportunity"
	KindCompetitiveThreat    InsightKind = "CompetitiveThreat"
	KindSentimentAlert       InsightKind = "SentimentAlert"
	KindActionRecommendation InsightKind = "ActionRecommendation"
)

// Account is a validated customer account. Input fields are immutable once
// ingested; derived scores live on ScoredAccount.
type Account struct {
	ID                     string      `json:"account_id"`
	Name                   string      `json:"company_name"`
	Industry               string      `json:"industry,omitempty"`
	Region                 string      `json:"region,omitempty"`
	AssignedRep            string      `json:"assigned_rep,omitempty"`
	AnnualRevenue          float64     `json:"annual_revenue"`
	PaymentTimeliness      float64     `json:"payment_timeliness"`
	CommunicationSentiment float64     `json:"communication_sentiment"`
	OrderVolumeTrend       float64     `json:"order_volume_trend"`
	ProductAdoptionRate    float64     `json:"product_adoption_rate"`
	CompetitiveThreat      ThreatLevel `json:"competitive_threat,omitempty"`
	ExpansionPotential     ThreatLevel `json:"expansion_potential,omitempty"`
}

// ScoredAccount is an account plus its derived health and churn metrics.
type ScoredAccount struct {
	Account
	HealthScore    float64            `json:"health_score"`
	HealthStatus   HealthStatus       `json:"health_status"`
	ChurnRiskScore float64            `json:"churn_risk_score"`
	ChurnPriority  AlertPriority      `json:"churn_priority"`
	Components     map[string]float64 `json:"components"`
}

// Opportunity is a validated pipeline deal owned by exactly one account.
type Opportunity struct {
	ID                string        `json:"opportunity_id"`
	AccountID         string        `json:"account_id"`
	Name              string        `json:"opportunity_name,omitempty"`
	Value             float64       `json:"value"`
	Probability       float64       `json:"probability"`
	Stage             PipelineStage `json:"stage"`
	ExpectedCloseDate time.Time     `json:"expected_close_date"`
}

// ScoredOpportunity is an opportunity plus its derived priority score.
type ScoredOpportunity struct {
	Opportunity
	PriorityScore float64            `json:"priority_score"`
	Components    map[string]float64 `json:"components"`
}

// Insight is a generated, ranked recommendation about one subject. Insights
// carry no random identity: re-running a pass over unchanged inputs must
// produce identical insights, so identity is the (SubjectID, Kind) pair.
type Insight struct {
	SubjectID   string             `json:"subject_id"`
	Kind        InsightKind        `json:"kind"`
	Priority    AlertPriority      `json:"priority"`
	Confidence  float64            `json:"confidence"`
	Summary     string             `json:"summary,omitempty"`
	ScoreInputs map[string]float64 `json:"score_inputs"`
}
