package parcel_test

import (
	"fmt"
	"testing"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should keep zero value as Unknown", func(t *testing.T) {
		var s parcel.Status
		assert.Equal(t, parcel.Unknown, s)
		require.Error(t, s.Validate())
	})

	t.Run("should render stable names", func(t *testing.T) {
		expected := map[parcel.Status]string{
			parcel.Created:    "created",
			parcel.AtFacility: "at_facility",
			parcel.Claimed:    "claimed",
			parcel.InTransit:  "in_transit",
			parcel.Delivered:  "delivered",
			parcel.Cancelled:  "cancelled",
		}
		for status, name := range expected {
			assert.Equal(t, name, status.String())
		}
		assert.Equal(t, "unknown", parcel.Status(99).String())
	})
}

func TestParseStatus(t *testing.T) {
	for _, status := range parcel.Statuses() {
		t.Run(fmt.Sprintf("should round trip %s", status), func(t *testing.T) {
			parsed, err := parcel.ParseStatus(status.String())

			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		})
	}

	t.Run("should reject free-form statuses", func(t *testing.T) {
		for _, raw := range []string{"", "unknown", "lost", "Delivered"} {
			_, err := parcel.ParseStatus(raw)

			require.Error(t, err, raw)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, parcel.Delivered.IsTerminal())
	assert.True(t, parcel.Cancelled.IsTerminal())
	for _, s := range []parcel.Status{parcel.Created, parcel.AtFacility, parcel.Claimed, parcel.InTransit} {
		assert.False(t, s.IsTerminal(), s.String())
	}
}

func TestStatus_Next(t *testing.T) {
	transitions := map[string]parcel.Transition{
		"facility": parcel.NewRegisteredAtFacility("Dock 4"),
		"claim":    parcel.NewClaim("driver-7"),
		"depart":   parcel.NewDepart(),
		"scan":     parcel.NewScan(""),
		"deliver":  parcel.NewDeliver("photo-1", "porch"),
		"cancel":   parcel.NewCancel("sender request"),
	}

	// Cells missing from the table are ErrInvalidTransition.
	legal := map[parcel.Status]map[string]parcel.Status{
		parcel.Created:    {"facility": parcel.AtFacility, "cancel": parcel.Cancelled},
		parcel.AtFacility: {"claim": parcel.Claimed, "cancel": parcel.Cancelled},
		parcel.Claimed:    {"depart": parcel.InTransit, "deliver": parcel.Delivered, "cancel": parcel.Cancelled},
		parcel.InTransit:  {"scan": parcel.InTransit, "deliver": parcel.Delivered, "cancel": parcel.Cancelled},
		parcel.Delivered:  {},
		parcel.Cancelled:  {},
	}

	for from, row := range legal {
		for name, tr := range transitions {
			t.Run(fmt.Sprintf("%s from %s", name, from), func(t *testing.T) {
				next, err := from.Next(tr)

				want, ok := row[name]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}
				require.ErrorIs(t, err, parcel.ErrInvalidTransition)
				assert.Equal(t, parcel.Unknown, next)
			})
		}
	}

	t.Run("should require proof from every non-terminal state", func(t *testing.T) {
		for _, from := range []parcel.Status{parcel.Created, parcel.AtFacility, parcel.Claimed, parcel.InTransit} {
			_, err := from.Next(parcel.NewDeliver("  ", "porch"))

			require.ErrorIs(t, err, parcel.ErrMissingProof, from.String())
		}
	})

	t.Run("should report invalid transition before missing proof on terminal states", func(t *testing.T) {
		_, err := parcel.Delivered.Next(parcel.NewDeliver("", ""))

		require.ErrorIs(t, err, parcel.ErrInvalidTransition)
	})

	t.Run("should require an agent to claim", func(t *testing.T) {
		_, err := parcel.AtFacility.Next(parcel.NewClaim(""))

		require.ErrorIs(t, err, parcel.ErrMissingAgent)
	})

	t.Run("should reject the zero transition", func(t *testing.T) {
		_, err := parcel.Created.Next(parcel.Transition{})

		require.ErrorIs(t, err, parcel.ErrInvalidTransition)
	})

	t.Run("should reject transitions from Unknown", func(t *testing.T) {
		_, err := parcel.Unknown.Next(parcel.NewCancel(""))

		require.ErrorIs(t, err, parcel.ErrInvalidTransition)
	})
}

func TestParseTransitionKind(t *testing.T) {
	kind, err := parcel.ParseTransitionKind("registered_at_facility")
	require.NoError(t, err)
	assert.Equal(t, parcel.RegisteredAtFacility, kind)

	_, err = parcel.ParseTransitionKind("teleport")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
