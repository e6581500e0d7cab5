package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestScoreThenVerify(t *testing.T) {
	cat := assessment.DefaultCatalog()
	answers := assessmenttest.Answers(cat, assessment.DomainO, assessmenttest.Mixed())

	out, err := execute(t, mustJSON(t, answers), "score", "--domain", "o")
	require.NoError(t, err)

	var r assessment.DomainResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, assessment.DomainO, r.Domain)

	report, err := execute(t, out, "verify-domain", "-")
	require.NoError(t, err)
	assert.Contains(t, report, `"valid":true`)
}

func TestVerifyDomainMismatchExitsNonZero(t *testing.T) {
	r := assessmenttest.Domain(t, assessment.DefaultCatalog(), assessment.DomainA, assessmenttest.Constant(4))
	r.Final.DomainMeanRaw = 1

	report, err := execute(t, mustJSON(t, r), "verify-domain")
	assert.ErrorIs(t, err, errMismatch)
	assert.Contains(t, report, `"valid":false`)
}

func TestAssembleAndSuiteCommands(t *testing.T) {
	cat := assessment.DefaultCatalog()
	dir := t.TempDir()
	var paths []string
	for _, d := range assessment.DomainOrder {
		p := filepath.Join(dir, string(d)+".json")
		require.NoError(t, os.WriteFile(p, []byte(mustJSON(t, assessmenttest.Domain(t, cat, d, assessmenttest.Mixed()))), 0o600))
		paths = append(paths, p)
	}

	suiteJSON, err := execute(t, "", append([]string{"assemble"}, paths...)...)
	require.NoError(t, err)

	want := assessmenttest.Suite(t, cat, assessmenttest.Mixed())
	assert.Contains(t, suiteJSON, want.SuiteHash)

	report, err := execute(t, suiteJSON, "verify-suite")
	require.NoError(t, err)
	assert.Contains(t, report, `"valid":true`)

	cardsOut, err := execute(t, suiteJSON, "cards")
	require.NoError(t, err)
	var cards []map[string]any
	require.NoError(t, json.Unmarshal([]byte(cardsOut), &cards))
	assert.Len(t, cards, 5)

	sigOut, err := execute(t, suiteJSON, "signals")
	require.NoError(t, err)
	assert.Contains(t, sigOut, `"handoff"`)
	assert.Contains(t, sigOut, `"snapshot"`)
}

func TestScoreRejectsIncompleteAnswers(t *testing.T) {
	_, err := execute(t, `{"picks":["Imagination"]}`, "score", "-d", "O")
	require.Error(t, err)
}
