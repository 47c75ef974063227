package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNetPay(t *testing.T) {
	net := NetPay(decimal.RequireFromString("1500.00"), decimal.RequireFromString("200.50"), decimal.RequireFromString("120.25"))
	assert.Equal(t, "1580.25", net.StringFixed(2))
}

func TestWorkedHours(t *testing.T) {
	out := "17:30"
	a := Attendance{CheckIn: "08:00", CheckOut: &out}
	assert.Equal(t, 9.5, a.WorkedHours())

	open := Attendance{CheckIn: "08:00"}
	assert.Zero(t, open.WorkedHours())

	early := "07:00"
	inverted := Attendance{CheckIn: "08:00", CheckOut: &early}
	assert.Zero(t, inverted.WorkedHours())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ana López", Employee{FirstName: "Ana", LastName: "López"}.FullName())
	assert.Equal(t, "Ana", Employee{FirstName: "Ana"}.FullName())
}
