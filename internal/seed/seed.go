// Package seed holds the default roles, permissions and example accounts.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AllPermissions grants a role every known permission
const AllPermissions = "*"

//go:embed defaults.yaml
var defaultsYAML []byte

type Permission struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
}

type Role struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	AccessLevel int      `yaml:"access_level"`
	Permissions []string `yaml:"permissions"`
}

type Department struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Account struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Data is the full seed document
type Data struct {
	Permissions []Permission `yaml:"permissions"`
	Roles       []Role       `yaml:"roles"`
	Departments []Department `yaml:"departments"`
	Accounts    []Account    `yaml:"accounts"`
}

// Defaults parses the embedded seed document
func Defaults() (*Data, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a seed document and checks role permissions reference
// declared codes.
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	known := make(map[string]bool, len(data.Permissions))
	for _, p := range data.Permissions {
		known[p.Code] = true
	}
	roles := make(map[string]bool, len(data.Roles))
	for _, r := range data.Roles {
		roles[r.Name] = true
		for _, code := range r.Permissions {
			if code != AllPermissions && !known[code] {
				return nil, fmt.Errorf("role %q references unknown permission %q", r.Name, code)
			}
		}
	}
	for _, a := range data.Accounts {
		if !roles[a.Role] {
			return nil, fmt.Errorf("account %q references unknown role %q", a.Email, a.Role)
		}
	}
	return &data, nil
}

// PermissionCodes expands a role's permission list
func (d *Data) PermissionCodes(r Role) []string {
	for _, code := range r.Permissions {
		if code == AllPermissions {
			all := make([]string, 0, len(d.Permissions))
			for _, p := range d.Permissions {
				all = append(all, p.Code)
			}
			return all
		}
	}
	return r.Permissions
}
