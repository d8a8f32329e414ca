package idhash

import "testing"

func TestComputeLockID_Deterministic(t *testing.T) {
	a := ComputeLockID("asset1", "beneficiary", 1704067200000, "500000")
	b := ComputeLockID("asset1", "beneficiary", 1704067200000, "500000")

	if a != b {
		t.Errorf("same inputs produced different ids: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestComputeLockID_Distinct(t *testing.T) {
	base := ComputeLockID("asset1", "beneficiary", 1704067200000, "500000")

	variants := []string{
		ComputeLockID("asset2", "beneficiary", 1704067200000, "500000"),
		ComputeLockID("asset1", "other", 1704067200000, "500000"),
		ComputeLockID("asset1", "beneficiary", 1704067200001, "500000"),
		ComputeLockID("asset1", "beneficiary", 1704067200000, "500001"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id", i)
		}
	}
}

func TestComputeSettlementID_Deterministic(t *testing.T) {
	a := ComputeSettlementID("asset1", "trader", 7, 1704067200000)
	b := ComputeSettlementID("asset1", "trader", 7, 1704067200000)

	if a != b {
		t.Errorf("same inputs produced different ids: %s != %s", a, b)
	}
	if a == ComputeSettlementID("asset1", "trader", 8, 1704067200000) {
		t.Error("nonce change must change the id")
	}
}
