// Package feed produces the simulated CRM feed the scoring engine runs
// against. Generation is seeded: the same seed and reference time always
// produce the same batch.
package feed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/ingest"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
)

var companyNames = []string{
	"Atlanta Bottling Partners", "Consolidated Beverages", "Swire Distribution USA",
	"Great Lakes Beverage Co", "Buffalo Rock Company", "Liberty Beverages",
	"Walmart Supercenters", "Target Corporation", "Kroger Grocery Chain",
	"Safeway Supermarkets", "Publix Super Markets", "Meijer Supercenters",
	"H-E-B Grocery Company", "Wegmans Food Markets", "Food Lion Supermarkets",
	"Burger Palace Chain", "Taco Fiesta Restaurants", "Pizza Corner",
	"Chicken Express", "Sandwich Station", "Quick Eats", "Drive-Thru Delights",
	"MovieMax Theaters", "CinemaWorld", "Starlight Cinemas", "Vista Cinemas",
	"Grand Theater Chain", "Screen Palace", "Mercedes-Benz Stadium",
	"Soldier Field Concessions", "Lambeau Field Concessions", "Arrowhead Stadium",
}

var industries = []string{
	"Bottling", "Grocery Retail", "Quick Service Restaurants",
	"Convenience Stores", "Entertainment Venues", "Stadiums & Arenas",
}

var regions = []string{
	"North America - East", "North America - Central", "North America - West",
	"North America - Southeast", "North America - Southwest", "North America - Northwest",
}

var reps = []string{
	"Jordan Hayes", "Casey Morgan", "Riley Bennett", "Avery Sullivan",
	"Quinn Fletcher", "Drew Callahan", "Taylor Brooks", "Morgan Reeves",
}

var opportunityNames = []string{
	"Annual Contract Renewal", "Q1 Volume Expansion", "Freestyle Installation",
	"New Product Line Introduction", "Promotional Campaign Partnership",
	"Category Reset Optimization", "Market Share Growth Initiative",
	"Summer Beverage Program", "Holiday Season Partnership",
	"Back-to-School Campaign", "Sports Season Sponsorship",
	"Premium Product Placement", "Portfolio Expansion",
	"Distribution Agreement", "Exclusive Partnership Deal",
}

// stage odds mirror a funnel: most open deals sit early, a tail is closed.
var stageOdds = []struct {
	stage  domain.PipelineStage
	weight int
}{
	{domain.StageProspecting, 25},
	{domain.StageQualification, 20},
	{domain.StageProposal, 18},
	{domain.StageNegotiation, 15},
	{domain.StageClosedWon, 12},
	{domain.StageClosedLost, 10},
}

// Generator produces seeded CRM batches.
type Generator struct {
	seed          int64
	accounts      int
	opportunities int
}

// NewGenerator creates a generator for fixed batch sizes.
func NewGenerator(seed int64, accounts, opportunities int) *Generator {
	return &Generator{seed: seed, accounts: accounts, opportunities: opportunities}
}

// Generate produces one raw CRM batch. The reference time anchors close
// dates; the seed anchors everything else.
func (g *Generator) Generate(asOf time.Time) ([]ingest.RawAccount, []ingest.RawOpportunity) {
	rng := rand.New(rand.NewSource(g.seed))

	rawAccounts := make([]ingest.RawAccount, 0, g.accounts)
	for i := 0; i < g.accounts; i++ {
		rawAccounts = append(rawAccounts, g.account(rng, i))
	}

	rawOpportunities := make([]ingest.RawOpportunity, 0, g.opportunities)
	for i := 0; i < g.opportunities; i++ {
		owner := rawAccounts[rng.Intn(len(rawAccounts))]
		rawOpportunities = append(rawOpportunities, g.opportunity(rng, i, owner.AccountID, asOf))
	}

	return rawAccounts, rawOpportunities
}

func (g *Generator) account(rng *rand.Rand, i int) ingest.RawAccount {
	// Each account sits on a health archetype so the portfolio spreads
	// across bands instead of clustering at the mean.
	base := 30 + rng.Float64()*65

	volumes := monthlyVolumes(rng, base)
	trend, err := OrderVolumeTrend(volumes)
	if err != nil {
		// monthlyVolumes always emits a full history.
		trend = 0
	}

	return ingest.RawAccount{
		AccountID:              fmt.Sprintf("ACC-%04d", i+1),
		CompanyName:            fmt.Sprintf("%s %s", companyNames[i%len(companyNames)], accountSuffix(i)),
		Industry:               industries[rng.Intn(len(industries))],
		Region:                 regions[rng.Intn(len(regions))],
		AssignedRep:            reps[rng.Intn(len(reps))],
		AnnualRevenue:          numbers.Round2(500_000 + rng.Float64()*49_500_000),
		PaymentTimeliness:      jitterPercent(rng, base, 15),
		CommunicationSentiment: jitterPercent(rng, base, 20),
		OrderVolumeTrend:       trend,
		ProductAdoptionRate:    jitterPercent(rng, base, 25),
		CompetitiveThreat:      threatLevel(rng),
		ExpansionPotential:     threatLevel(rng),
	}
}

func (g *Generator) opportunity(rng *rand.Rand, i int, accountID string, asOf time.Time) ingest.RawOpportunity {
	stage := pickStage(rng)

	var probability float64
	var closeOffsetDays int
	switch stage {
	case domain.StageClosedWon:
		probability = 100
		closeOffsetDays = -rng.Intn(90) - 1
	case domain.StageClosedLost:
		probability = 0
		closeOffsetDays = -rng.Intn(90) - 1
	case domain.StageNegotiation:
		probability = 60 + rng.Float64()*35
		closeOffsetDays = rng.Intn(45) + 1
	case domain.StageProposal:
		probability = 40 + rng.Float64()*35
		closeOffsetDays = rng.Intn(90) + 15
	case domain.StageQualification:
		probability = 20 + rng.Float64()*30
		closeOffsetDays = rng.Intn(120) + 30
	default:
		probability = 5 + rng.Float64()*25
		closeOffsetDays = rng.Intn(180) + 60
	}

	return ingest.RawOpportunity{
		OpportunityID:     fmt.Sprintf("OPP-%04d", i+1),
		AccountID:         accountID,
		Name:              opportunityNames[rng.Intn(len(opportunityNames))],
		Value:             numbers.Round2(25_000 + rng.Float64()*975_000),
		Probability:       numbers.Round2(probability),
		Stage:             string(stage),
		ExpectedCloseDate: asOf.AddDate(0, 0, closeOffsetDays).Truncate(24 * time.Hour),
	}
}

// monthlyVolumes emits 24 months of order volume, oldest first. Healthy
// archetypes drift upward over the second year, struggling ones decay.
func monthlyVolumes(rng *rand.Rand, base float64) []float64 {
	level := 1_000 + base*100
	drift := (base - 60) / 60 * 0.04

	volumes := make([]float64, trendMonths)
	for m := range volumes {
		level *= 1 + drift + (rng.Float64()-0.5)*0.06
		if level < 50 {
			level = 50
		}
		volumes[m] = numbers.Round2(level)
	}
	return volumes
}

func jitterPercent(rng *rand.Rand, base, spread float64) float64 {
	return numbers.Round2(numbers.ClampPercent(base + (rng.Float64()-0.5)*2*spread))
}

func threatLevel(rng *rand.Rand) string {
	switch rng.Intn(3) {
	case 0:
		return string(domain.ThreatLow)
	case 1:
		return string(domain.ThreatMedium)
	default:
		return string(domain.ThreatHigh)
	}
}

func pickStage(rng *rand.Rand) domain.PipelineStage {
	total := 0
	for _, s := range stageOdds {
		total += s.weight
	}
	pick := rng.Intn(total)
	for _, s := range stageOdds {
		if pick < s.weight {
			return s.stage
		}
		pick -= s.weight
	}
	return domain.StageProspecting
}

func accountSuffix(i int) string {
	suffixes := []string{"Inc", "LLC", "Group", "Holdings"}
	return suffixes[(i/len(companyNames))%len(suffixes)]
}
