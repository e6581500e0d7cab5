package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
)

func TestVerifyDomainRoundTrip(t *testing.T) {
	r, err := Score(DefaultCatalog(), DomainO, openness())
	require.NoError(t, err)

	v, err := VerifyDomain(*r)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, r.Audit.Nonce, v.Actual)

	// survives a JSON round trip
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded DomainResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	v, err = VerifyDomain(decoded)
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestVerifyDomainDetectsTampering(t *testing.T) {
	r, err := Score(DefaultCatalog(), DomainO, openness())
	require.NoError(t, err)

	tampered := *r
	tampered.Final.DomainMeanRaw = 4.1
	v, err := VerifyDomain(tampered)
	require.NoError(t, err, "a mismatch is an outcome, not an error")
	assert.False(t, v.Valid)
	assert.NotEqual(t, v.Expected, v.Actual)

	unsealed := *r
	unsealed.Audit = nil
	v, err = VerifyDomain(unsealed)
	require.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestNonceCoversPayloadWithoutAudit(t *testing.T) {
	r, err := Score(DefaultCatalog(), DomainO, openness())
	require.NoError(t, err)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	delete(generic, "audit")

	want, err := canonical.Hash(generic)
	require.NoError(t, err)
	assert.Equal(t, want, r.Audit.Nonce)
}

func TestPayloadShape(t *testing.T) {
	r, err := Score(DefaultCatalog(), DomainO, openness())
	require.NoError(t, err)

	s, err := canonical.String(r)
	require.NoError(t, err)
	assert.Contains(t, s, `"phase1":{"P":{`)
	assert.Contains(t, s, `"phase3":{"asked":[]}`)
	assert.Contains(t, s, `{"facet":"Imagination","idx":0,"value":5}`)
	assert.Contains(t, s, `"version":"gz-domainspec-1.3.0"`)

	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &generic))
	p1 := generic["phase1"].(map[string]any)
	assert.Len(t, p1["p"], 6, "indicators carry every facet")
	assert.Len(t, p1["t"], 6)
}

func TestRecompute(t *testing.T) {
	cat := DefaultCatalog()
	r, err := Score(cat, DomainO, openness())
	require.NoError(t, err)

	t.Run("consistent result", func(t *testing.T) {
		assert.NoError(t, Recompute(cat, *r))
	})

	t.Run("resealed result with edited bucket", func(t *testing.T) {
		forged := cloneResult(t, r)
		forged.Final.Bucket["Intellect"] = BucketHigh
		nonce, err := forged.Nonce()
		require.NoError(t, err)
		forged.Audit = &Audit{Nonce: nonce}

		v, err := VerifyDomain(forged)
		require.NoError(t, err)
		assert.True(t, v.Valid, "the seal alone cannot catch a resealed edit")

		err = Recompute(cat, forged)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("prior that does not follow from picks", func(t *testing.T) {
		forged := cloneResult(t, r)
		forged.Phase1.Prior["Intellect"] = 3
		assert.Error(t, Recompute(cat, forged))
	})

	t.Run("invalid pick counts", func(t *testing.T) {
		forged := cloneResult(t, r)
		forged.Phase1.P["Trust"] = 1
		forged.Phase1.P["Adventurousness"] = 1
		assert.True(t, dErrors.HasCode(Recompute(cat, forged), dErrors.CodeValidation))
	})
}

func cloneResult(t *testing.T, r *DomainResult) DomainResult {
	t.Helper()
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var out DomainResult
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
