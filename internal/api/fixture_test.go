package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/receiptdex/receiptdex/internal/browse"
)

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	data, err := json.Marshal(smallCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog error = %v", err)
	}
	if len(c.Receipts) != 4 || len(c.Transactions) != 2 {
		t.Errorf("catalog = %d receipts, %d transactions; want 4 and 2", len(c.Receipts), len(c.Transactions))
	}
	if c.Links["R1"] != "T1" {
		t.Errorf("Links[R1] = %q, want T1", c.Links["R1"])
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadCatalog should fail for a missing file")
	}
}

func TestLoadCatalogMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("LoadCatalog should fail for malformed JSON")
	}
}

func TestDemoCatalogIsDeterministic(t *testing.T) {
	a, b := DemoCatalog(), DemoCatalog()
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Error("DemoCatalog output differs between calls")
	}
}

func TestDemoCatalogLinksAreSymmetric(t *testing.T) {
	c := DemoCatalog()
	if len(c.Links) == 0 {
		t.Fatal("demo catalog has no links")
	}
	for from, to := range c.Links {
		if back := c.Links[to]; back != from {
			t.Errorf("Links[%s] = %s but Links[%s] = %s, want symmetry", from, to, to, back)
		}
		if !c.contains(from) || !c.contains(to) {
			t.Errorf("link %s -> %s references unknown items", from, to)
		}
	}
}

func TestDemoCatalogScopes(t *testing.T) {
	c := DemoCatalog()
	if items, ok := c.items(browse.ScopeReceipts); !ok || len(items) != 120 {
		t.Errorf("receipts scope = %d items, ok=%v; want 120", len(items), ok)
	}
	if items, ok := c.items(browse.ScopeTransactions); !ok || len(items) != 90 {
		t.Errorf("transactions scope = %d items, ok=%v; want 90", len(items), ok)
	}
	if _, ok := c.items("invoices"); ok {
		t.Error("unknown scope resolved")
	}
}
