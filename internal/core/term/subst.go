// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package term

// Subst is a finite mapping from variables to terms. Substitutions compose
// and application is capture-avoiding: substituting into a binder first
// renames the binder to a fresh variable whenever the substitution's range
// mentions it, so a substituted term never captures a bound occurrence.
type Subst struct {
	bindings map[*Var]Term
}

// NewSubst constructs an empty substitution.
func NewSubst() Subst {
	return Subst{bindings: make(map[*Var]Term)}
}

// Single constructs a substitution mapping a single variable to a term.
func Single(v *Var, t Term) Subst {
	s := NewSubst()
	s.bindings[v] = t
	return s
}

// Extend returns a new substitution equal to this one, plus one additional
// binding. The receiver is left unmodified.
func (s Subst) Extend(v *Var, t Term) Subst {
	n := make(map[*Var]Term, len(s.bindings)+1)
	for k, val := range s.bindings {
		n[k] = val
	}
	n[v] = t
	return Subst{bindings: n}
}

// Lookup returns the term bound to v, if any.
func (s Subst) Lookup(v *Var) (Term, bool) {
	t, ok := s.bindings[v]
	return t, ok
}

// IsEmpty determines whether this substitution carries no bindings.
func (s Subst) IsEmpty() bool {
	return len(s.bindings) == 0
}

// Apply substitutes every free occurrence of a bound variable in t according
// to s, renaming binders as necessary to avoid capture.
func Apply(s Subst, t Term) Term {
	if s.IsEmpty() {
		return t
	}
	return apply(s, t)
}

func apply(s Subst, t Term) Term {
	switch n := t.(type) {
	case *Ref:
		if repl, ok := s.Lookup(n.Var); ok {
			return repl
		}
		return n
	case *Lam:
		param, body := renameBinder(s, n.Param, n.Body)
		return &Lam{Param: param, Body: body}
	case *App:
		return &App{Fn: apply(s, n.Fn), Arg: apply(s, n.Arg)}
	case *Pi:
		domain := apply(s, n.Param.Type)
		param, cod := renameBinder(s, n.Param.Name, n.Cod)
		return &Pi{Param: Param{Name: param, Type: domain}, Cod: cod}
	case *Sigma:
		return &Sigma{Params: applyTele(s, n.Params)}
	case *Proj:
		return &Proj{Pair: apply(s, n.Pair), Index: n.Index}
	case *Con:
		return &Con{Name: n.Name, Args: applyAll(s, n.Args)}
	case *Match:
		clauses := make([]Clause, len(n.Clauses))
		for i, c := range n.Clauses {
			clauses[i] = applyClause(s, c)
		}
		return &Match{Scrutinees: applyAll(s, n.Scrutinees), Clauses: clauses}
	case *MetaPat:
		if n.Ref.Solved() {
			return apply(s, n.Ref.Solution())
		}
		return n
	case *PLam:
		params, body := renameBinders(s, n.Params, n.Body)
		return &PLam{Params: params, Body: body}
	case *PApp:
		return &PApp{Fn: apply(s, n.Fn), Args: applyAll(s, n.Args), Cube: applyCube(s, n.Cube)}
	case Formula:
		return applyFormula(s, n)
	case *Partial:
		return &Partial{Elem: applyElem(s, n.Elem), RhsType: apply(s, n.RhsType)}
	case *PartialTy:
		return &PartialTy{Restr: applyFormula(s, n.Restr).(Restriction), Type: apply(s, n.Type)}
	case *Coe:
		return &Coe{Restr: applyFormula(s, n.Restr).(Restriction), Type: apply(s, n.Type)}
	case *Erased:
		return &Erased{Type: apply(s, n.Type)}
	case *PathTy:
		return &PathTy{A: apply(s, n.A), Lhs: apply(s, n.Lhs), Rhs: apply(s, n.Rhs)}
	case Universe:
		return n
	default:
		return t
	}
}

func applyAll(s Subst, ts []Term) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = apply(s, t)
	}
	return out
}

func applyTele(s Subst, params []Param) []Param {
	out := make([]Param, len(params))
	cur := s
	for i, p := range params {
		domain := apply(cur, p.Type)
		fresh := Fresh(p.Name.hint)
		cur = cur.Extend(p.Name, &Ref{Var: fresh})
		out[i] = Param{Name: fresh, Type: domain}
	}
	return out
}

func applyClause(s Subst, c Clause) Clause {
	return Clause{Patterns: c.Patterns, Body: apply(s, c.Body)}
}

func applyCube(s Subst, c Cube) Cube {
	params, typ := renameBinders(s, c.Interval, c.Type)
	return Cube{Interval: params, Type: typ, Elem: applyElem(s, c.Elem)}
}

func applyElem(s Subst, p PartialElem) PartialElem {
	switch e := p.(type) {
	case Const:
		return Const{Term: apply(s, e.Term)}
	case Split:
		clauses := make([]FaceClause, len(e.Clauses))
		for i, c := range e.Clauses {
			clauses[i] = FaceClause{Face: applyFormula(s, c.Face).(Restriction), Term: apply(s, c.Term)}
		}
		return Split{Clauses: clauses}
	default:
		return p
	}
}

// renameBinder substitutes into body under a single binder, renaming the
// binder to a fresh variable whenever the substitution's range could
// otherwise capture it.
func renameBinder(s Subst, param *Var, body Term) (*Var, Term) {
	fresh := Fresh(param.hint)
	inner := s.Extend(param, &Ref{Var: fresh})
	return fresh, apply(inner, body)
}

func renameBinders(s Subst, params []*Var, body Term) ([]*Var, Term) {
	fresh := make([]*Var, len(params))
	cur := s
	for i, p := range params {
		nv := Fresh(p.hint)
		fresh[i] = nv
		cur = cur.Extend(p, &Ref{Var: nv})
	}
	return fresh, apply(cur, body)
}
