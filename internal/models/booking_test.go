package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingCanBeCancelled(t *testing.T) {
	confirmed := Booking{Status: BookingStatusConfirmed}
	assert.True(t, confirmed.CanBeCancelled())

	cancelled := Booking{Status: BookingStatusCancelled}
	assert.False(t, cancelled.CanBeCancelled())
}

func TestPassengerDetailIsComplete(t *testing.T) {
	tests := []struct {
		name     string
		detail   PassengerDetail
		complete bool
	}{
		{"All Fields Present", PassengerDetail{SeatID: "s1", Name: "Nimal Perera", Age: 34, Gender: "M"}, true},
		{"Empty Name", PassengerDetail{SeatID: "s1", Name: "", Age: 34, Gender: "M"}, false},
		{"Whitespace Name", PassengerDetail{SeatID: "s1", Name: "   ", Age: 34, Gender: "M"}, false},
		{"Zero Age", PassengerDetail{SeatID: "s1", Name: "Nimal Perera", Age: 0, Gender: "M"}, false},
		{"Negative Age", PassengerDetail{SeatID: "s1", Name: "Nimal Perera", Age: -5, Gender: "M"}, false},
		{"Empty Gender", PassengerDetail{SeatID: "s1", Name: "Nimal Perera", Age: 34, Gender: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.complete, tt.detail.IsComplete())
		})
	}
}

func TestConfirmBookingRequestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := ConfirmBookingRequest{Passengers: []PassengerDetail{
			{SeatID: "s1", Name: "Nimal Perera", Age: 34, Gender: "M"},
			{SeatID: "s2", Name: "Kamala Perera", Age: 31, Gender: "F"},
		}}
		assert.NoError(t, req.Validate())
	})

	t.Run("No Passengers", func(t *testing.T) {
		req := ConfirmBookingRequest{}
		assert.Error(t, req.Validate())
	})

	t.Run("Missing Seat Reference", func(t *testing.T) {
		req := ConfirmBookingRequest{Passengers: []PassengerDetail{
			{SeatID: "", Name: "Nimal Perera", Age: 34, Gender: "M"},
		}}
		assert.Error(t, req.Validate())
	})

	t.Run("Duplicate Seat", func(t *testing.T) {
		req := ConfirmBookingRequest{Passengers: []PassengerDetail{
			{SeatID: "s1", Name: "Nimal Perera", Age: 34, Gender: "M"},
			{SeatID: "s1", Name: "Kamala Perera", Age: 31, Gender: "F"},
		}}
		assert.Error(t, req.Validate())
	})
}
