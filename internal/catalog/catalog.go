// Package catalog holds the fixed mapping from job role to required skill keywords.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"resumatch/internal/errors"
	"resumatch/internal/types"
)

// Role is one catalog entry; Skills keep their declared order
type Role struct {
	Name   string   `yaml:"name"`
	Skills []string `yaml:"skills"`
}

// Catalog is an immutable, ordered role table. It is safe for concurrent use.
type Catalog struct {
	roles []Role
	index map[string]int
}

var builtinRoles = []Role{
	{Name: "Data Analyst", Skills: []string{"python", "sql", "excel", "tableau", "powerbi", "machine learning"}},
	{Name: "Software Engineer", Skills: []string{"python", "java", "c++", "git", "docker", "kubernetes"}},
	{Name: "Data Scientist", Skills: []string{"python", "machine learning", "statistics", "r", "deep learning", "sql"}},
	{Name: "Product Manager", Skills: []string{"communication", "agile", "roadmap", "stakeholder", "leadership", "jira"}},
	{Name: "Python Developer", Skills: []string{"python", "django", "flask", "rest api", "sql", "git", "oop"}},
	{Name: "Machine Learning Engineer", Skills: []string{"python", "machine learning", "deep learning", "tensorflow", "pytorch", "data preprocessing", "model deployment"}},
}

var defaultCatalog = mustNew(builtinRoles)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// New validates roles and builds a catalog from them. Skills are trimmed and lowercased.
func New(roles []Role) (*Catalog, error) {
	if len(roles) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "catalog has no roles", nil)
	}

	c := &Catalog{
		roles: make([]Role, 0, len(roles)),
		index: make(map[string]int, len(roles)),
	}
	for _, r := range roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "catalog role has an empty name", nil)
		}
		if _, dup := c.index[name]; dup {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("duplicate catalog role %q", name), nil)
		}

		skills := make([]string, 0, len(r.Skills))
		for _, s := range r.Skills {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				skills = append(skills, s)
			}
		}
		if len(skills) == 0 {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("catalog role %q has no skills", name), nil)
		}

		c.index[name] = len(c.roles)
		c.roles = append(c.roles, Role{Name: name, Skills: skills})
	}
	return c, nil
}

func mustNew(roles []Role) *Catalog {
	c, err := New(roles)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a YAML list of roles from path. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("cannot read catalog file %s", path), err)
	}
	return Parse(data)
}

// Parse decodes a YAML role list.
func Parse(data []byte) (*Catalog, error) {
	var roles []Role
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&roles); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid catalog file", err)
	}
	return New(roles)
}

// Lookup returns a copy of the ordered skill list for role.
func (c *Catalog) Lookup(role string) ([]string, error) {
	i, ok := c.index[role]
	if !ok {
		return nil, errors.NewRoleNotFoundError(role)
	}
	return slices.Clone(c.roles[i].Skills), nil
}

// Has reports whether role is in the catalog.
func (c *Catalog) Has(role string) bool {
	_, ok := c.index[role]
	return ok
}

// Roles returns role names in catalog order.
func (c *Catalog) Roles() []string {
	names := make([]string, len(c.roles))
	for i, r := range c.roles {
		names[i] = r.Name
	}
	return names
}

// Entries returns every role with its skills, in catalog order.
func (c *Catalog) Entries() []types.RoleInfo {
	out := make([]types.RoleInfo, len(c.roles))
	for i, r := range c.roles {
		out[i] = types.RoleInfo{Name: r.Name, Skills: slices.Clone(r.Skills)}
	}
	return out
}
