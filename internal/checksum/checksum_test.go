package checksum

import (
	"io"
	"strings"
	"testing"
)

func TestDigestMatchesSum(t *testing.T) {
	data := "P1\tOrg1\t2AB\nP2\tOrg2\tKL\n"
	d := NewDigest()
	if _, err := io.Copy(d, strings.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if got, want := d.Sum(), Sum([]byte(data)); got != want {
		t.Errorf("digest = %s, want %s", got, want)
	}
}

func TestSum_Empty(t *testing.T) {
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != emptySHA {
		t.Errorf("Sum(nil) = %s", got)
	}
}
