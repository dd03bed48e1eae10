package sha1

import (
	"encoding/hex"
	"testing"
)

func TestSumKnownAnswer(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "a9993e364706816aba3e25717850c26c9cd0d89d"
	if hex.EncodeToString(got[:]) != want {
		t.Fatalf("Sum(abc) = %x, want %s", got, want)
	}
}
