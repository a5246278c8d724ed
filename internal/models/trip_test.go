package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatFare(t *testing.T) {
	base := 1500.0

	plain := Seat{SeatNumber: "A1"}
	assert.Equal(t, base, plain.Fare(base))

	override := 2200.0
	sleeper := Seat{SeatNumber: "S1", FareOverride: &override}
	assert.Equal(t, override, sleeper.Fare(base))
}
