package api

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// Catalog is the in-memory record collection the fixture server serves.
// Links maps an item ID to the ID of its linked counterpart in the other
// collection; both directions are present for a linked pair.
type Catalog struct {
	Receipts     []browse.Item     `json:"receipts"`
	Transactions []browse.Item     `json:"transactions"`
	Links        map[string]string `json:"links"`
}

// LoadCatalog reads a catalog from a JSON fixture file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if c.Links == nil {
		c.Links = make(map[string]string)
	}
	return &c, nil
}

func (c *Catalog) items(scope browse.Scope) ([]browse.Item, bool) {
	switch scope {
	case browse.ScopeReceipts:
		return c.Receipts, true
	case browse.ScopeTransactions:
		return c.Transactions, true
	}
	return nil, false
}

func (c *Catalog) contains(id string) bool {
	for _, it := range c.Receipts {
		if it.ID == id {
			return true
		}
	}
	for _, it := range c.Transactions {
		if it.ID == id {
			return true
		}
	}
	return false
}

var demoMerchants = []string{
	"Blue Bottle Coffee", "Whole Foods Market", "Office Depot", "Shell",
	"Delta Air Lines", "Marriott Downtown", "Uber", "AWS", "GitHub",
	"Trader Joe's", "Home Depot", "Walgreens", "La Taqueria", "FedEx",
	"Ikea", "Best Buy", "Costco Wholesale", "Peet's Coffee",
}

var demoStatuses = []string{"pending", "processing", "processed", "failed"}
var demoCurrencies = []string{"USD", "USD", "USD", "EUR", "GBP"}
var demoProviders = []string{"textract", "textract", "tesseract", "manual"}

// DemoCatalog builds a deterministic demo data set: 120 receipts, 90
// transactions, with roughly two thirds of the receipts linked.
func DemoCatalog() *Catalog {
	c := &Catalog{Links: make(map[string]string)}
	base := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 120; i++ {
		id := fmt.Sprintf("R%04d", i+1)
		amount := float64(((i*37)%9500)+250) / 100
		c.Receipts = append(c.Receipts, browse.Item{
			ID:         id,
			Title:      demoMerchants[i%len(demoMerchants)],
			Date:       base.AddDate(0, 0, i*2).Format("2006-01-02"),
			Amount:     amount,
			Currency:   demoCurrencies[i%len(demoCurrencies)],
			Status:     demoStatuses[i%len(demoStatuses)],
			Provider:   demoProviders[i%len(demoProviders)],
			Confidence: float64(55+(i*7)%45) / 100,
		})
	}

	for i := 0; i < 90; i++ {
		id := fmt.Sprintf("T%04d", i+1)
		amount := float64(((i*53)%9500)+199) / 100
		c.Transactions = append(c.Transactions, browse.Item{
			ID:       id,
			Title:    demoMerchants[(i+7)%len(demoMerchants)],
			Date:     base.AddDate(0, 0, i*3).Format("2006-01-02"),
			Amount:   amount,
			Currency: demoCurrencies[i%len(demoCurrencies)],
			Status:   "settled",
		})
	}

	for i := 0; i < 80; i++ {
		if i%3 == 2 {
			continue
		}
		rid := fmt.Sprintf("R%04d", i+1)
		tid := fmt.Sprintf("T%04d", (i%90)+1)
		c.Links[rid] = tid
		c.Links[tid] = rid
	}

	return c
}
