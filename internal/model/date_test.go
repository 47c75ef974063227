package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Fecha  Date  `json:"fecha"`
		Opcion *Date `json:"opcion"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"fecha":"2024-01-01","opcion":null}`), &payload))
	assert.Equal(t, "2024-01-01", payload.Fecha.String())

	out, err := json.Marshal(payload.Fecha)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-01"`, string(out))

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &bad))

	var stamp Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:11:12Z"`), &stamp))
	assert.Equal(t, "2024-03-05", stamp.String())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2023-12-31"))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2023-11-30 00:00:00+00:00")))
	assert.Equal(t, "2023-11-30", d.String())

	require.NoError(t, d.Scan(time.Date(2022, 5, 6, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2022-05-06", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2022-05-06", v)

	assert.Error(t, d.Scan(42))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 1, MustDate("2024-07-01").DaysUntil(MustDate("2024-07-01")))
	assert.Equal(t, 10, MustDate("2024-07-01").DaysUntil(MustDate("2024-07-10")))
}
