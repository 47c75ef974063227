package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	data, err := Defaults()
	require.NoError(t, err)

	names := make([]string, 0, len(data.Roles))
	for _, r := range data.Roles {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"admin", "rrhh", "supervisor", "empleado"}, names)
	assert.NotEmpty(t, data.Accounts)

	admin := data.Roles[0]
	assert.Len(t, data.PermissionCodes(admin), len(data.Permissions))
}

func TestParseRejectsUnknownReferences(t *testing.T) {
	_, err := Parse([]byte(`
permissions: [{code: a.read, name: A, group: a}]
roles: [{name: r, permissions: [b.write]}]
`))
	assert.ErrorContains(t, err, "unknown permission")

	_, err = Parse([]byte(`
roles: [{name: r}]
accounts: [{email: x@y.z, password: secret1, role: ghost}]
`))
	assert.ErrorContains(t, err, "unknown role")
}
