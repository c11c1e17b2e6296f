package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 ₫", FormatVND(0))
	assert.Equal(t, "999 ₫", FormatVND(999))
	assert.Equal(t, "10.000 ₫", FormatVND(10000))
	assert.Equal(t, "1.250.000 ₫", FormatVND(1250000))
	assert.Equal(t, "-120.500 ₫", FormatVND(-120500))
}
