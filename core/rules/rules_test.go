package rules

import (
	"testing"

	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

var (
	catchable   = schema.TimingFeasibility{Overall: true, Reason: "can develop."}
	uncatchable = schema.TimingFeasibility{Overall: false, Reason: "not recommended."}
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "60pcs 9 inch paper plates", NormalizeTitle("  60PCS  9\" Inch, Paper-Plates!! "))
	assert.Equal(t, "", NormalizeTitle(""))
}

func TestExtractUnitCount(t *testing.T) {
	tests := []struct {
		title string
		want  int
		ok    bool
	}{
		{"96pcs party plates", 96, true},
		{"pack of 96 pcs", 96, true},
		{"48 pieces set", 48, true},
		{"1 piece", 1, true},
		{"party plates", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractUnitCount(NormalizeTitle(tt.title))
		assert.Equal(t, tt.ok, ok, tt.title)
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestExtractSizeTokens(t *testing.T) {
	assert.Equal(t, []string{"9inch", "7inch"}, ExtractSizeTokens(NormalizeTitle("9inch and 7 inch plates")))
	assert.Equal(t, []string{"19inch"}, ExtractSizeTokens("19inches plates"))
	assert.Equal(t, []string{"9inch"}, ExtractSizeTokens(NormalizeTitle("Party Plates 60pcs 9inches Paper")))
	assert.Empty(t, ExtractSizeTokens("9inchplates"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{14.99, 14.99, true},
		{12, 12, true},
		{"$19.75", 19.75, true},
		{"USD 19.75 - 29.99", 19.75, true},
		{"19.75$", 19.75, true},
		{"free", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.in)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		table  PriceTable
		title  string
		price  any
		status RuleStatus
		reason string
	}{
		{"9inch meets threshold", PlatesPriceTable, "60pcs 9inch paper plates", 14.99, RulePassed, ReasonPassed},
		{"9inch below threshold", PlatesPriceTable, "60pcs 9inch paper plates", 13.00, RuleFailed, ReasonPriceTooLow},
		{"7inch uses its own threshold", PlatesPriceTable, "60 pcs 7 inch plates", "$12.00", RulePassed, ReasonPassed},
		{"plural inches", PlatesPriceTable, "Party Plates 60pcs 9inches Paper", 14.99, RulePassed, ReasonPassed},
		{"plural inches below threshold", PlatesPriceTable, "Party Plates 60pcs 9inches Paper", 13.00, RuleFailed, ReasonPriceTooLow},
		{"9inch preferred over 7inch", PlatesPriceTable, "60 Pcs Plates, 7 inch Dessert and 9 inch Dinner", "$13.00", RuleFailed, ReasonPriceTooLow},
		{"60 without size", PlatesPriceTable, "60pcs plates", 30.0, RuleMissingEntry, "no rule for 60 pcs"},
		{"flat threshold", PlatesPriceTable, "96 pieces plates", 15.99, RulePassed, ReasonPassed},
		{"missing entry", PlatesPriceTable, "500pcs plates", 99.0, RuleMissingEntry, "no rule for 500 pcs"},
		{"no table", nil, "96pcs plates", 20.0, RuleNotConfigured, ReasonNotConfigured},
		{"unit unparsed", PlatesPriceTable, "paper plates", 20.0, RuleUnitUnparsed, ReasonUnitUnparsed},
		{"price unparsed", PlatesPriceTable, "96pcs plates", "call us", RulePriceUnparsed, ReasonPriceUnparsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Check(tt.table, tt.title, tt.price)
			assert.Equal(t, tt.status, c.Status)
			assert.Equal(t, tt.reason, c.Reason)
			if tt.status != RuleUnitUnparsed {
				require.NotNil(t, c.UnitCount)
			} else {
				assert.Nil(t, c.UnitCount)
			}
		})
	}
}

func TestThresholdSizeKeys(t *testing.T) {
	assert.Equal(t, []string{"9inch", "7inch"}, PlatesPriceTable[60].SizeKeys())
	assert.Empty(t, PlatesPriceTable[96].SizeKeys())
}

func TestPriceTableUnitCounts(t *testing.T) {
	counts := PlatesPriceTable.UnitCounts()
	assert.Equal(t, 40, counts[0])
	assert.Equal(t, 350, counts[len(counts)-1])
	assert.Len(t, counts, 11)
}

func platesFacts(title string, price any, trend schema.PriceLabel, timing schema.TimingFeasibility, cycle [][]int) Facts {
	return Facts{
		MainCategory:   "Toys&Games",
		SubCategory:    "Plates",
		Title:          title,
		Price:          price,
		LastMonthSales: intPtr(120),
		HasSeries:      true,
		FlowType:       schema.StrongCyclicalFlow,
		Cycle:          cycle,
		Timing:         timing,
		PriceTrend:     trend,
	}
}

func with(f Facts, edit func(*Facts)) Facts {
	edit(&f)
	return f
}

func yearRound(f *Facts) { f.FlowType = schema.YearRoundFlow }

func TestSizeGatedDecide(t *testing.T) {
	cycle := [][]int{{11, 12}}

	tests := []struct {
		name    string
		facts   Facts
		verdict schema.Verdict
		rule    string
	}{
		{
			name:    "missing sales",
			facts:   with(platesFacts("96pcs", 20.0, schema.RisingPrice, catchable, cycle), func(f *Facts) { f.LastMonthSales = nil }),
			verdict: schema.UndeterminedVerdict,
			rule:    "missing-sales-or-price",
		},
		{
			name:    "unit unparsed and rising",
			facts:   platesFacts("paper plates", 20.0, schema.RisingPrice, catchable, cycle),
			verdict: schema.TrackVerdict,
			rule:    "unit-unparsed/rising",
		},
		{
			name:    "unit unparsed and volatile",
			facts:   platesFacts("paper plates", 20.0, schema.VolatilePrice, catchable, cycle),
			verdict: schema.RejectVerdict,
			rule:    "unit-unparsed/not-rising",
		},
		{
			name:    "unit unparsed and stable",
			facts:   platesFacts("paper plates", 20.0, schema.StablePrice, catchable, cycle),
			verdict: schema.UndeterminedVerdict,
			rule:    "unit-unparsed/insufficient",
		},
		{
			name:    "price unparsed",
			facts:   platesFacts("96pcs plates", "tbd", schema.RisingPrice, catchable, cycle),
			verdict: schema.UndeterminedVerdict,
			rule:    "price-unparsed",
		},
		{
			name:    "no demand data",
			facts:   with(platesFacts("96pcs", 20.0, schema.RisingPrice, catchable, cycle), func(f *Facts) { f.HasSeries = false }),
			verdict: schema.UndeterminedVerdict,
			rule:    "no-demand-data",
		},
		{
			name:    "missing entry with year-round falling",
			facts:   with(platesFacts("500pcs", 90.0, schema.FallingPrice, catchable, cycle), yearRound),
			verdict: schema.RejectVerdict,
			rule:    "no-rule/year-round-falling",
		},
		{
			name:    "price too low",
			facts:   platesFacts("60pcs 9inch plates", 13.00, schema.RisingPrice, catchable, cycle),
			verdict: schema.RejectVerdict,
			rule:    "price-too-low",
		},
		{
			name:    "passed without cycle and rising",
			facts:   platesFacts("60pcs 9inch plates", 14.99, schema.RisingPrice, schema.TimingFeasibility{Reason: "no cycle identified"}, nil),
			verdict: schema.TrackVerdict,
			rule:    "no-cycle/rising",
		},
		{
			name:    "passed without cycle and stable",
			facts:   platesFacts("60pcs 9inch plates", 14.99, schema.StablePrice, schema.TimingFeasibility{}, nil),
			verdict: schema.UndeterminedVerdict,
			rule:    "no-cycle/insufficient",
		},
		{
			name:    "passed but window missed and rising",
			facts:   platesFacts("96pcs", 16.0, schema.RisingPrice, uncatchable, cycle),
			verdict: schema.TrackVerdict,
			rule:    "cannot-catch/rising",
		},
		{
			name:    "passed but window missed and volatile",
			facts:   platesFacts("96pcs", 16.0, schema.VolatilePrice, uncatchable, cycle),
			verdict: schema.RejectVerdict,
			rule:    "cannot-catch/other",
		},
		{
			name:    "catchable and rising",
			facts:   platesFacts("96pcs", 16.0, schema.RisingPrice, catchable, cycle),
			verdict: schema.DevelopVerdict,
			rule:    "catchable/rising",
		},
		{
			name:    "catchable year-round falling",
			facts:   with(platesFacts("96pcs", 16.0, schema.FallingPrice, catchable, cycle), yearRound),
			verdict: schema.TrackVerdict,
			rule:    "catchable/year-round-falling",
		},
		{
			name:    "catchable and unknown trend",
			facts:   platesFacts("96pcs", 16.0, schema.UnknownPrice, catchable, cycle),
			verdict: schema.UndeterminedVerdict,
			rule:    "catchable/insufficient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.facts)
			assert.Equal(t, tt.verdict, d.Verdict)
			assert.Equal(t, tt.rule, d.Rule)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestSizeGatedReasons(t *testing.T) {
	d := Decide(platesFacts("60pcs 9inch plates", 13.00, schema.RisingPrice, catchable, [][]int{{5, 6}}))
	assert.Equal(t, "price too low (13.00 below 14.99)", d.Reason)
	require.NotNil(t, d.UnitCount)
	assert.Equal(t, 60, *d.UnitCount)

	d = Decide(platesFacts("500pcs plates", 90.0, schema.RisingPrice, catchable, [][]int{{5, 6}}))
	assert.Equal(t, "no fixed rule, rising price, keep tracking (no rule for 500 pcs)", d.Reason)
}

func TestUnconfiguredCategoryFallsBack(t *testing.T) {
	_, ok := Lookup("Home", "Mugs")
	assert.False(t, ok)

	f := platesFacts("96pcs mugs", 10.0, schema.RisingPrice, catchable, [][]int{{5, 6}})
	f.MainCategory, f.SubCategory = "Home", "Mugs"
	d := Decide(f)
	assert.Equal(t, schema.TrackVerdict, d.Verdict)
	assert.Contains(t, d.Reason, ReasonNotConfigured)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	p, ok := Lookup("  TOYS&GAMES ", "plates")
	require.True(t, ok)
	assert.Equal(t, "plates", p.Name())

	sg, ok := p.(*SizeGated)
	require.True(t, ok)
	assert.Equal(t, PlatesPriceTable, sg.Thresholds())
}

func TestVolumeGatedDecide(t *testing.T) {
	p := NewVolumeGated("banners", 50)
	facts := func(sales *int, trend schema.PriceLabel, timing schema.TimingFeasibility) Facts {
		return Facts{LastMonthSales: sales, PriceTrend: trend, Timing: timing, HasSeries: true}
	}

	tests := []struct {
		name    string
		facts   Facts
		verdict schema.Verdict
		rule    string
	}{
		{"missing sales", facts(nil, schema.RisingPrice, catchable), schema.UndeterminedVerdict, "missing-sales"},
		{"unknown trend", facts(intPtr(80), schema.UnknownPrice, catchable), schema.UndeterminedVerdict, "missing-trend"},
		{"empty trend", facts(intPtr(80), "", catchable), schema.UndeterminedVerdict, "missing-trend"},
		{"strong rising catchable", facts(intPtr(50), schema.RisingPrice, catchable), schema.DevelopVerdict, "strong/rising-catchable"},
		{"strong rising missed", facts(intPtr(80), schema.RisingPrice, uncatchable), schema.TrackVerdict, "strong/rising"},
		{"strong stable catchable", facts(intPtr(80), schema.StablePrice, catchable), schema.DevelopVerdict, "strong/stable-catchable"},
		{"strong volatile", facts(intPtr(80), schema.VolatilePrice, catchable), schema.TrackVerdict, "strong/stable-or-volatile"},
		{"strong falling", facts(intPtr(80), schema.FallingPrice, catchable), schema.TrackVerdict, "strong/falling"},
		{"weak falling", facts(intPtr(10), schema.FallingPrice, catchable), schema.RejectVerdict, "weak/falling"},
		{"weak rising catchable", facts(intPtr(49), schema.RisingPrice, catchable), schema.TrackVerdict, "weak/rising-catchable"},
		{"weak stable", facts(intPtr(0), schema.StablePrice, catchable), schema.RejectVerdict, "weak/other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Decide(tt.facts)
			assert.Equal(t, tt.verdict, d.Verdict)
			assert.Equal(t, tt.rule, d.Rule)
		})
	}
}

func TestVolumeGatedThreshold(t *testing.T) {
	assert.Equal(t, DefaultSalesThreshold, NewVolumeGated("b", 0).Threshold())

	r := NewRegistry(Options{SalesThreshold: 5})
	p, ok := r.Lookup("toys&games", "banners")
	require.True(t, ok)
	d := p.Decide(Facts{LastMonthSales: intPtr(6), PriceTrend: schema.RisingPrice, Timing: catchable})
	assert.Equal(t, schema.DevelopVerdict, d.Verdict)
	assert.Contains(t, d.Reason, "threshold 5")
}

// Every combination of optional inputs maps to a verdict with a reason.
func TestEveryCombinationHasVerdict(t *testing.T) {
	sales := []*int{nil, intPtr(0), intPtr(500)}
	pricesIn := []any{nil, "n/a", 5.0, 99.0}
	titles := []string{"", "plates", "60pcs 9inch", "96pcs", "777pcs"}
	trends := []schema.PriceLabel{"", schema.UnknownPrice, schema.RisingPrice, schema.FallingPrice, schema.StablePrice, schema.VolatilePrice}
	timings := []schema.TimingFeasibility{catchable, uncatchable}
	cycles := [][][]int{nil, {{3, 4}}}
	flows := []schema.FlowType{schema.YearRoundFlow, schema.UnknownFlow}
	categories := [][2]string{{"toys&games", "plates"}, {"toys&games", "banners"}, {"x", "y"}}

	for _, s := range sales {
		for _, pr := range pricesIn {
			for _, title := range titles {
				for _, trend := range trends {
					for _, tm := range timings {
						for _, cy := range cycles {
							for _, fl := range flows {
								for _, cat := range categories {
									for _, hasSeries := range []bool{true, false} {
										d := Decide(Facts{
											MainCategory:   cat[0],
											SubCategory:    cat[1],
											Title:          title,
											Price:          pr,
											LastMonthSales: s,
											HasSeries:      hasSeries,
											FlowType:       fl,
											Cycle:          cy,
											Timing:         tm,
											PriceTrend:     trend,
										})
										_, valid := schema.ValidVerdicts[d.Verdict]
										require.True(t, valid)
										require.NotEmpty(t, d.Reason)
										require.NotEmpty(t, d.Rule)
									}
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestTablesAreNamedAndUnique(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	policies := []Policy{r.Fallback()}
	for _, reg := range r.Registrations() {
		policies = append(policies, reg.Policy)
	}
	for _, p := range policies {
		seen := make(map[string]bool)
		for _, e := range p.Table() {
			assert.NotEmpty(t, e.Name)
			assert.NotNil(t, e.When)
			assert.False(t, seen[e.Name], "duplicate row %s in %s", e.Name, p.Name())
			seen[e.Name] = true
		}
	}
}
