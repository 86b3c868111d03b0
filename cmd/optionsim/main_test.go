package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsimulator/internal/handlers"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestQuoteCommand(t *testing.T) {
	text := execute(t, "quote", "--json", "--valuation-date", "2022-06-01", "--asset-price", "70")

	var response handlers.QuoteResponse
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	assert.Equal(t, "2022-06-01", response.ValuationDate.String())
	assert.Equal(t, "2023-02-17", response.ExpirationDate.String())
	assert.True(t, response.Price.IsPositive())
}

func TestSimulateCommand(t *testing.T) {
	text := execute(t, "simulate", "--valuation-date", "2022-06-01", "--frames", "3", "--interval", "1ms", "--seed", "9")

	assert.Contains(t, text, "seed 9")
	assert.Contains(t, text, "tick    3")
	assert.Contains(t, text, "frame limit reached")
	assert.Contains(t, text, "Option price")
}
