package model

import (
	"sort"
)

// Params maps a step parameter name to its rendered value.
type Params map[string]string

// Keys returns the parameter names sorted alphabetically.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Invocation is everything a launcher needs to run one step.
type Invocation struct {
	Step       StepID
	URI        string
	EntryPoint string
	Params     Params
	// Env holds variables added to the sub-process environment.
	Env map[string]string
}

// EnvList returns Env as sorted KEY=VALUE pairs.
func (inv Invocation) EnvList() []string {
	res := make([]string, 0, len(inv.Env))
	for k, v := range inv.Env {
		res = append(res, k+"="+v)
	}

	sort.Strings(res)

	return res
}
