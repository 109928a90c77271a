package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("admin@edu.az"))
	assert.True(t, IsValidEmail("mekteb.admin+import@edu.gov.az"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a@b"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+994501112233"))
	assert.True(t, IsValidPhone("+994 50 111-22-33"))
	assert.True(t, IsValidPhone("0501112233"))
	assert.False(t, IsValidPhone("12"))
	assert.False(t, IsValidPhone("abc"))
}

func TestIsValidRegionCode(t *testing.T) {
	assert.True(t, IsValidRegionCode("BAK"))
	assert.True(t, IsValidRegionCode("GA"))
	assert.False(t, IsValidRegionCode("B"))
	assert.False(t, IsValidRegionCode("bak"))
	assert.False(t, IsValidRegionCode("BAK1"))
}
