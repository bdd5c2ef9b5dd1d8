package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

const (
	DefaultSampleRows = 500

	sampleSender     = "Treasury_Dept"
	rsfSpikeRow      = 50
	dumpingAfterRow  = 80
	benfordBiasEvery = 10
)

// SampleVendors are the payees of generated ledgers. The first two differ
// only by a doubled space.
var SampleVendors = []string{
	"PT. Maju Jaya",
	"PT. Maju  Jaya",
	"CV. Sumber Makmur",
	"PT. Berdikari",
	"Dinas Kesehatan",
}

// sampleNamespace scopes generated transaction and vendor ids.
var sampleNamespace = uuid.NewV5(uuid.NamespaceURL, "https://github.com/carson-networks/ledger-forensics/sample")

var (
	sampleStart  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dumpingDate  = time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC)
	rsfSpike     = decimal.NewFromInt(10_000_000)
	rsfSpikeName = "PT. Berdikari"
)

// SampleTransactions generates rows synthetic treasury payments with planted
// anomalies: every 10th amount starts with 5, row 50 is a 10M payment to
// PT. Berdikari and every row after 80 is a large payment on 28 December.
// The same seed always yields the same ledger.
func SampleTransactions(rows int, seed int64) []ledger.Transaction {
	rng := rand.New(rand.NewSource(seed))
	txs := make([]ledger.Transaction, 0, rows)

	for i := 0; i < rows; i++ {
		date := sampleStart.AddDate(0, 0, rng.Intn(361))
		amount := uniform(rng, 1000, 50000)
		vendor := SampleVendors[rng.Intn(len(SampleVendors))]

		if i%benfordBiasEvery == 0 {
			amount = decimal.NewFromInt(int64(500_000 + rng.Intn(10)*10_000 + rng.Intn(10)*1_000))
		}
		if i == rsfSpikeRow {
			amount = rsfSpike
			vendor = rsfSpikeName
		}
		if i > dumpingAfterRow {
			date = dumpingDate
			amount = uniform(rng, 500_000, 900_000)
		}

		txs = append(txs, ledger.Transaction{
			ID:         uuid.NewV5(sampleNamespace, fmt.Sprintf("%d/%d", seed, i)).String(),
			Timestamp:  date,
			Amount:     amount,
			EntityID:   vendorID(vendor),
			EntityName: vendor,
			SenderID:   sampleSender,
			ReceiverID: vendor,
		})
	}
	return txs
}

// Sample returns SampleTransactions flattened with the default mapping.
func Sample(rows int, seed int64) *ledger.Table {
	return ledger.FromTransactions(SampleTransactions(rows, seed), ledger.DefaultMapping())
}

func vendorID(name string) string {
	return uuid.NewV5(sampleNamespace, "vendor/"+name).String()
}

func uniform(rng *rand.Rand, lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(2)
}
