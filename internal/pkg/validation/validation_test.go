package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPhone(t *testing.T) {
	valid := []string{
		"0912345678",
		"+84912345678",
		"0321234567",
		"0861234567",
		"02438251234",
		" 0987654321 ",
	}
	invalid := []string{
		"",
		"0112345678",
		"84912345678",
		"091234567",
		"091234567890",
		"09123abc78",
		"+8491234567890",
	}
	for _, p := range valid {
		assert.True(t, IsPhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, IsPhone(p), p)
	}
}

func TestIsFullName(t *testing.T) {
	assert.True(t, IsFullName("Nguyen An"))
	assert.True(t, IsFullName("  Tran  Thi   Bich "))
	assert.False(t, IsFullName("An"))
	assert.False(t, IsFullName("   "))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("an@example.vn"))
	assert.False(t, IsEmail("An <an@example.vn>"))
	assert.False(t, IsEmail("an@localhost"))
	assert.False(t, IsEmail("not-an-email"))
}

func TestMailboxTag(t *testing.T) {
	type form struct {
		Email string `validate:"required,mailbox"`
	}
	v := New()

	require.NoError(t, v.Struct(form{Email: "an@example.vn"}))
	for _, bad := range []string{"An <an@example.vn>", "an@localhost", "an@"} {
		details := Describe(v.Struct(form{Email: bad}))
		assert.Equal(t, map[string]string{"email": "must be a valid email address"}, details, bad)
	}
}

func TestStructTags(t *testing.T) {
	type form struct {
		Name  string `validate:"required,fullname"`
		Phone string `validate:"required,vnphone"`
	}
	v := New()

	require.NoError(t, v.Struct(form{Name: "Le Van C", Phone: "0901234567"}))

	err := v.Struct(form{Name: "Le", Phone: "123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullname")
	assert.Contains(t, err.Error(), "vnphone")
}

func TestDescribe(t *testing.T) {
	type form struct {
		FullName       string `binding:"required,fullname"`
		RecipientPhone string `binding:"required,vnphone"`
		Quantity       int    `binding:"min=1"`
	}

	details := Describe(NewBinding().Struct(form{FullName: "An", RecipientPhone: "0901234567"}))
	assert.Equal(t, map[string]string{
		"fullName": "must contain at least two words",
		"quantity": "must be at least 1",
	}, details)

	assert.Nil(t, Describe(assert.AnError))
}
