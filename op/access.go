package op

import (
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
)

// GrantRole adds Account to Role. Caller must hold the admin role of Role.
type GrantRole struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Account string `json:"account"`
}

func (o *GrantRole) Type() string   { return "grant_role" }
func (o *GrantRole) Sender() string { return o.Caller }

func (o *GrantRole) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireAdminOf(dt, o.Role, o.Caller); err != nil {
		return err
	}
	added, err := env.Roles.Add(dt, o.Role, o.Account)
	if err != nil || !added {
		return err
	}
	return em.Emit(&event.RoleGranted{Role: o.Role, Account: o.Account, Sender: o.Caller})
}

// RevokeRole removes Account from Role. Caller must hold the admin role of Role.
type RevokeRole struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Account string `json:"account"`
}

func (o *RevokeRole) Type() string   { return "revoke_role" }
func (o *RevokeRole) Sender() string { return o.Caller }

func (o *RevokeRole) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireAdminOf(dt, o.Role, o.Caller); err != nil {
		return err
	}
	removed, err := env.Roles.Remove(dt, o.Role, o.Account)
	if err != nil || !removed {
		return err
	}
	return em.Emit(&event.RoleRevoked{Role: o.Role, Account: o.Account, Sender: o.Caller})
}

// RenounceRole removes Caller from Role.
type RenounceRole struct {
	Caller string `json:"caller"`
	Role   string `json:"role"`
}

func (o *RenounceRole) Type() string   { return "renounce_role" }
func (o *RenounceRole) Sender() string { return o.Caller }

func (o *RenounceRole) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	removed, err := env.Roles.Remove(dt, o.Role, o.Caller)
	if err != nil || !removed {
		return err
	}
	return em.Emit(&event.RoleRevoked{Role: o.Role, Account: o.Caller, Sender: o.Caller})
}
