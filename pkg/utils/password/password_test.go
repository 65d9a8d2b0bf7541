package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/password"
)

func TestGenerate(t *testing.T) {
	first, err := password.Generate()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(first), 43)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "=")

	second, err := password.Generate()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
