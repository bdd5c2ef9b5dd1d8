package detector

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/numeric"
)

// Conformity labels the Benford MAD.
type Conformity string

const (
	ConformityNonconforming Conformity = "Nonconforming"
	ConformityMarginal      Conformity = "Marginal"
	ConformityAcceptable    Conformity = "Acceptable"
	ConformityClose         Conformity = "Close conformity"
)

const (
	madNonconforming = 0.015
	madMarginal      = 0.012
	madAcceptable    = 0.006

	rsfThreshold = 10.0
	rsfTopN      = 10

	zScoreThreshold = 3.0
	iqrMultiplier   = 1.5
	topOutliers     = 5

	benfordExplanation  = "Computes the first-digit distribution of positive amounts against Benford's law. A large mean absolute deviation suggests fabricated or manipulated figures."
	rsfExplanation      = "RSF divides an entity's largest transaction by the mean of its other transactions. Entities above 10 have a single outsized payment."
	outlierExplanation  = "Z-score (|z| > 3) and IQR fences (1.5 x IQR beyond Q1/Q3) flag extreme amounts. The two methods are reported separately."
	statisticalDescribe = "Statistical anomalies: Benford's law, relative size factor and Z-score/IQR outliers."
)

// StatisticalFinding is the result of the statistical detector.
type StatisticalFinding struct {
	Detector string        `json:"detector"`
	Benford  BenfordResult `json:"benford"`
	RSF      RSFResult     `json:"rsf"`
	Outliers OutlierResult `json:"outliers"`
}

func (f *StatisticalFinding) DetectorName() string { return f.Detector }

// BenfordResult compares observed and expected first-digit frequencies.
// Map keys are the digits "1" to "9".
type BenfordResult struct {
	Observed    map[string]float64 `json:"observed"`
	Expected    map[string]float64 `json:"expected"`
	MAD         float64            `json:"mad"`
	SampleSize  int                `json:"sample_size"`
	Conformity  Conformity         `json:"conformity"`
	Explanation string             `json:"explanation"`
}

// RSFEntity is one flagged entity.
type RSFEntity struct {
	Entity     string  `json:"entity"`
	RSF        float64 `json:"rsf"`
	Largest    float64 `json:"largest"`
	MeanOthers float64 `json:"mean_others"`
}

// RSFResult lists the entities whose RSF exceeds the threshold.
type RSFResult struct {
	EntitiesEvaluated int         `json:"entities_evaluated"`
	HighRisk          []RSFEntity `json:"high_risk_entities"`
	Explanation       string      `json:"explanation"`
}

// OutlierResult reports Z-score and IQR outliers independently.
type OutlierResult struct {
	ZScoreCount      int       `json:"zscore_outlier_count"`
	IQRCount         int       `json:"iqr_outlier_count"`
	TopZScoreAmounts []float64 `json:"top_zscore_amounts"`
	Mean             float64   `json:"mean"`
	StdDev           float64   `json:"std_dev"`
	Q1               float64   `json:"q1"`
	Q3               float64   `json:"q3"`
	IQR              float64   `json:"iqr"`
	LowerFence       float64   `json:"lower_fence"`
	UpperFence       float64   `json:"upper_fence"`
	Explanation      string    `json:"explanation"`
}

// StatisticalDetector runs Benford, RSF and outlier tests over the amount
// column.
type StatisticalDetector struct{}

func NewStatisticalDetector() *StatisticalDetector {
	return &StatisticalDetector{}
}

func (d *StatisticalDetector) Name() string {
	return NameStatistical
}

func (d *StatisticalDetector) Description() string {
	return statisticalDescribe
}

func (d *StatisticalDetector) Run(ctx context.Context, view *ledger.View) (Finding, error) {
	if err := view.Require(ledger.RoleAmount, ledger.RoleEntity); err != nil {
		return nil, err
	}
	exact, err := view.DecimalAmounts()
	if err != nil {
		return nil, err
	}
	amounts, err := view.Amounts()
	if err != nil {
		return nil, err
	}
	entities, err := view.Column(ledger.RoleEntity)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digits := make([]string, len(exact))
	for i, a := range exact {
		if a.IsPositive() {
			digits[i] = a.String()
		}
	}

	return &StatisticalFinding{
		Detector: d.Name(),
		Benford:  BenfordTest(digits),
		RSF:      RelativeSizeFactor(entities, amounts),
		Outliers: DetectOutliers(amounts),
	}, nil
}

// BenfordTest classifies the first-digit distribution of the given decimal
// strings. Blank, zero and non-numeric strings are excluded. With nothing
// left to test the MAD is 0.
func BenfordTest(values []string) BenfordResult {
	var counts [10]int
	total := 0
	for _, v := range values {
		digit, ok := numeric.LeadingDigit(v)
		if !ok {
			continue
		}
		counts[digit]++
		total++
	}

	observed := make(map[string]float64, 9)
	expected := make(map[string]float64, 9)
	deviation := 0.0
	for digit := 1; digit <= 9; digit++ {
		key := strconv.Itoa(digit)
		obs := 0.0
		if total > 0 {
			obs = float64(counts[digit]) / float64(total)
		}
		exp := numeric.BenfordExpected(digit)
		observed[key] = obs
		expected[key] = exp
		deviation += math.Abs(obs - exp)
	}
	mad := 0.0
	if total > 0 {
		mad = deviation / 9
	}

	return BenfordResult{
		Observed:    observed,
		Expected:    expected,
		MAD:         mad,
		SampleSize:  total,
		Conformity:  classifyMAD(mad),
		Explanation: benfordExplanation,
	}
}

func classifyMAD(mad float64) Conformity {
	switch {
	case mad > madNonconforming:
		return ConformityNonconforming
	case mad > madMarginal:
		return ConformityMarginal
	case mad > madAcceptable:
		return ConformityAcceptable
	default:
		return ConformityClose
	}
}

// RelativeSizeFactor computes largest/mean(others) per entity. Entities
// with fewer than two transactions are skipped; a zero mean of the others
// yields RSF 0.
func RelativeSizeFactor(entities []string, amounts []float64) RSFResult {
	order := make([]string, 0)
	groups := make(map[string][]float64)
	for i, e := range entities {
		if _, ok := groups[e]; !ok {
			order = append(order, e)
		}
		groups[e] = append(groups[e], amounts[i])
	}

	evaluated := 0
	flagged := make([]RSFEntity, 0)
	for _, entity := range order {
		values := groups[entity]
		if len(values) < 2 {
			continue
		}
		evaluated++

		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)
		largest := sorted[len(sorted)-1]
		meanOthers := numeric.Mean(sorted[:len(sorted)-1])

		rsf := 0.0
		if meanOthers != 0 {
			rsf = largest / meanOthers
		}
		if rsf > rsfThreshold {
			flagged = append(flagged, RSFEntity{
				Entity:     entity,
				RSF:        rsf,
				Largest:    largest,
				MeanOthers: meanOthers,
			})
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].RSF != flagged[j].RSF {
			return flagged[i].RSF > flagged[j].RSF
		}
		return flagged[i].Entity < flagged[j].Entity
	})
	if len(flagged) > rsfTopN {
		flagged = flagged[:rsfTopN]
	}

	return RSFResult{
		EntitiesEvaluated: evaluated,
		HighRisk:          flagged,
		Explanation:       rsfExplanation,
	}
}

// DetectOutliers runs the population Z-score and the IQR fence tests over
// amounts. A zero standard deviation flags nothing.
func DetectOutliers(amounts []float64) OutlierResult {
	mean := numeric.Mean(amounts)
	std := numeric.PopulationStdDev(amounts)
	q1 := numeric.Quantile(amounts, 0.25)
	q3 := numeric.Quantile(amounts, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr

	zFlagged := make([]float64, 0)
	iqrCount := 0
	for _, a := range amounts {
		if std > 0 && math.Abs((a-mean)/std) > zScoreThreshold {
			zFlagged = append(zFlagged, a)
		}
		if a < lower || a > upper {
			iqrCount++
		}
	}

	zCount := len(zFlagged)
	sort.Sort(sort.Reverse(sort.Float64Slice(zFlagged)))
	if len(zFlagged) > topOutliers {
		zFlagged = zFlagged[:topOutliers]
	}

	return OutlierResult{
		ZScoreCount:      zCount,
		IQRCount:         iqrCount,
		TopZScoreAmounts: zFlagged,
		Mean:             mean,
		StdDev:           std,
		Q1:               q1,
		Q3:               q3,
		IQR:              iqr,
		LowerFence:       lower,
		UpperFence:       upper,
		Explanation:      outlierExplanation,
	}
}
