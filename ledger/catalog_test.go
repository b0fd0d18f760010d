package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payout-ledger/ledger"
)

func TestCatalog_ResolveClub(t *testing.T) {
	c := ledger.DefaultCatalog()

	for _, input := range []string{"москвич", "МОСКВИЧ", "Москвич", " москвич "} {
		club, err := c.ResolveClub(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "Москвич", club)
	}

	club, err := c.ResolveClub("anora")
	require.NoError(t, err)
	assert.Equal(t, "Анора", club)

	_, err = c.ResolveClub("nowhere")
	assert.ErrorIs(t, err, ledger.ErrUnknownClub)
}

func TestCatalog_ResolveChannel(t *testing.T) {
	c := ledger.DefaultCatalog()

	cases := map[string]ledger.Channel{
		"нал":     ledger.ChannelCash,
		"безнал":  ledger.ChannelNonCash,
		"cash":    ledger.ChannelCash,
		"noncash": ledger.ChannelNonCash,
		"НАЛ":     ledger.ChannelCash,
	}
	for input, want := range cases {
		ch, err := c.ResolveChannel(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, ch, "input %q", input)
	}

	_, err := c.ResolveChannel("crypto")
	assert.ErrorIs(t, err, ledger.ErrUnknownChannel)
}

func TestCatalog_InjectableForTests(t *testing.T) {
	// Alternate deployments carry alternate sets; the catalog is plain
	// injected data, not process-global state.
	c := ledger.NewCatalog(
		map[string]string{"downtown": "Downtown"},
		map[string]ledger.Channel{"card": ledger.ChannelNonCash},
	)

	club, err := c.ResolveClub("DOWNTOWN")
	require.NoError(t, err)
	assert.Equal(t, "Downtown", club)

	assert.Equal(t, []string{"Downtown"}, c.Clubs())

	_, err = c.ResolveClub("москвич")
	assert.ErrorIs(t, err, ledger.ErrUnknownClub)
}
