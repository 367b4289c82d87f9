package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		// happy path, satu langkah maju
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},

		// cancel dari semua status non-terminal
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},

		// tidak boleh loncat atau mundur
		{StatusPending, StatusProcessing, false},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusPaid, false},

		// terminal states
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},

		// status tidak dikenal
		{Status("refunded"), StatusCancelled, false},
		{StatusPending, Status("refunded"), false},
	}
	for _, c := range cases {
		require.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		require.True(t, s.Valid(), string(s))
	}
	require.False(t, Status("refunded").Valid())
	require.False(t, Status("").Valid())
	require.False(t, Status("PENDING").Valid())
}
