package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeCode(t *testing.T) {
	cases := map[string]string{
		"XRAY-01":            "XRAY-01",
		" xray-01 ":          "XRAY-01",
		"xray_room 01":       "XRAY-ROOM-01",
		"ct__scanner   main": "CT-SCANNER-MAIN",
		"--us--probe--":      "US-PROBE",
		"a - b":              "A-B",
		"   ":                "",
		"MRI\t2":             "MRI-2",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalizeCode(in), "input %q", in)
	}
}

func TestTrimmedPtr(t *testing.T) {
	assert.Nil(t, TrimmedPtr(nil))
	assert.Nil(t, TrimmedPtr(ToPtr("  ")))
	assert.Equal(t, "GE", *TrimmedPtr(ToPtr(" GE ")))
}
