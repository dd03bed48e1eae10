package sha512

import (
	"encoding/hex"
	"testing"
)

func TestSumKnownAnswer(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
	if hex.EncodeToString(got[:]) != want {
		t.Fatalf("Sum(abc) = %x, want %s", got, want)
	}
}
