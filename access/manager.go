// Package access is the role registry gating privileged ledger
// operations.
package access

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/types"
)

// Roles known to the ledger. RoleAdmin is the owner role and
// administers every role including itself.
const (
	RoleAdmin  = "ADMIN"
	RoleMinter = "MINTER"
)

var roles = map[string]string{
	RoleAdmin:  RoleAdmin,
	RoleMinter: RoleAdmin,
}

// AdminOf returns the role whose members may grant and revoke role.
func AdminOf(role string) (string, error) {
	admin, ok := roles[role]
	if !ok {
		return "", fmt.Errorf("%q: %w", role, types.ErrUnknownRole)
	}
	return admin, nil
}

// Manager stores role membership.
type Manager struct {
	database db.Database
	bucket   string
}

func NewManager(d db.Database) *Manager {
	m := &Manager{database: d, bucket: "ROLE"}
	if err := m.database.NewBucket(m.bucket); err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	return m
}

func (m *Manager) members(getter db.Getter, role string) (mapset.Set, error) {
	if _, err := AdminOf(role); err != nil {
		return nil, err
	}
	set := mapset.NewThreadUnsafeSet()
	b, err := getter.Get(m.bucket, []byte(role))
	if err != nil {
		return nil, fmt.Errorf("get role %s failed: %v", role, err)
	}
	if b == nil {
		return set, nil
	}
	rm, err := types.DecodeRoleMembers(b)
	if err != nil {
		return nil, fmt.Errorf("decode role %s failed: %v", role, err)
	}
	for _, member := range rm.Members {
		set.Add(member)
	}
	return set, nil
}

func (m *Manager) save(putter db.Putter, role string, set mapset.Set) error {
	rm := &types.RoleMembers{Role: role, Members: toSortedSlice(set)}
	b, err := types.Encode(rm)
	if err != nil {
		return fmt.Errorf("encode role %s failed: %v", role, err)
	}
	if err := putter.Put(m.bucket, []byte(role), b); err != nil {
		return fmt.Errorf("save role %s failed: %v", role, err)
	}
	return nil
}

// HasRole reports whether account holds role.
func (m *Manager) HasRole(getter db.Getter, role string, account string) (bool, error) {
	set, err := m.members(getter, role)
	if err != nil {
		return false, err
	}
	return set.Contains(account), nil
}

// RequireRole fails with ErrUnauthorized unless caller holds role.
func (m *Manager) RequireRole(getter db.Getter, role string, caller string) error {
	ok, err := m.HasRole(getter, role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s lacks role %s: %w", caller, role, types.ErrUnauthorized)
	}
	return nil
}

// RequireAdminOf fails with ErrUnauthorized unless caller may
// administer role.
func (m *Manager) RequireAdminOf(getter db.Getter, role string, caller string) error {
	admin, unknown := AdminOf(role)
	if unknown != nil {
		// nobody administers an unknown role, only admins learn it is unknown
		if err := m.RequireRole(getter, RoleAdmin, caller); err != nil {
			return err
		}
		return unknown
	}
	return m.RequireRole(getter, admin, caller)
}

// Add puts account into role and reports whether it was absent.
func (m *Manager) Add(dt db.Tx, role string, account string) (bool, error) {
	if account == "" {
		return false, types.ErrInvalidAccountID
	}
	set, err := m.members(dt, role)
	if err != nil {
		return false, err
	}
	if !set.Add(account) {
		return false, nil
	}
	return true, m.save(dt, role, set)
}

// Remove takes account out of role and reports whether it was present.
func (m *Manager) Remove(dt db.Tx, role string, account string) (bool, error) {
	set, err := m.members(dt, role)
	if err != nil {
		return false, err
	}
	if !set.Contains(account) {
		return false, nil
	}
	set.Remove(account)
	return true, m.save(dt, role, set)
}

// Members lists the holders of role in lexical order.
func (m *Manager) Members(getter db.Getter, role string) ([]string, error) {
	set, err := m.members(getter, role)
	if err != nil {
		return nil, err
	}
	return toSortedSlice(set), nil
}

func toSortedSlice(set mapset.Set) []string {
	var out []string
	for _, v := range set.ToSlice() {
		out = append(out, v.(string))
	}
	sort.Strings(out)
	return out
}
