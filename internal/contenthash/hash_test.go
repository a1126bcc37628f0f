package contenthash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_KnownValues(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Hash("abc"))
}

func TestHash_Deterministic(t *testing.T) {
	texts := []string{"", "a", "The library opens at 9am.", "Grüße aus Neu-Ulm", "line\nbreak"}
	for _, text := range texts {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			assert.Equal(t, Hash(text), Hash(text))
			assert.True(t, Valid(Hash(text)))
		})
	}
}

func TestHash_Distinct(t *testing.T) {
	seen := make(map[string]string)
	for i := 0; i < 1000; i++ {
		text := fmt.Sprintf("chunk number %d", i)
		h := Hash(text)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, text)
		}
		seen[h] = text
	}
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
	assert.NotEqual(t, Hash("abc"), Hash("ABC"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Hash("x")))
	assert.False(t, Valid(""))
	assert.False(t, Valid("abc"))
	assert.False(t, Valid("E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"))
}
