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

import "sort"

// Formula is an interval expression built from the endpoints 0 and 1 and
// the operations ∧, ∨, ¬. Formula is itself a Term (it appears nested
// inside Coe, PartialTy and Cube), but it also has its own normal form: a
// canonical element of the free distributive lattice with involution on
// generators.
type Formula interface {
	Term
	isFormula()
}

// FZero is the interval endpoint 0 ("always false").
type FZero struct{}

// FOne is the interval endpoint 1 ("always true", i.e. Const(1)).
type FOne struct{}

// FVar is a reference to an interval variable.
type FVar struct {
	Var *Var
}

// FAnd is the conjunction of two formulas.
type FAnd struct {
	L, R Formula
}

// FOr is the disjunction of two formulas.
type FOr struct {
	L, R Formula
}

// FNot is the involution (negation) of a formula.
type FNot struct {
	Arg Formula
}

func (FZero) isTerm()    {}
func (FOne) isTerm()     {}
func (*FVar) isTerm()    {}
func (*FAnd) isTerm()    {}
func (*FOr) isTerm()     {}
func (*FNot) isTerm()    {}
func (FZero) isFormula() {}
func (FOne) isFormula()  {}
func (*FVar) isFormula() {}
func (*FAnd) isFormula() {}
func (*FOr) isFormula()  {}
func (*FNot) isFormula() {}

// Restriction is a disjunction of conjunctions of interval equations, i.e.
// a Formula in (canonical) disjunctive normal form. Const(1) denotes "this
// restriction is the total face".
type Restriction = Formula

// literal is one atom of a canonical conjunction: an interval variable,
// taken positively (Neg=false, meaning "=1") or negatively (Neg=true,
// meaning "=0").
type literal struct {
	v   *Var
	neg bool
}

func (l literal) less(o literal) bool {
	if l.v.ID() != o.v.ID() {
		return l.v.ID() < o.v.ID()
	}
	return !l.neg && o.neg
}

// conj is a canonically sorted, duplicate-free conjunction of literals. A
// nil/empty conj represents the always-true conjunction (the unit of ∧).
type conj []literal

// dnf is a canonically sorted, duplicate-free, absorption-reduced set of
// conjunctions. An empty dnf represents Const(0); a dnf containing only the
// empty conjunction represents Const(1).
type dnf []conj

// NormalizeFormula reduces f to its canonical normal form: negations are
// pushed to the literals (De Morgan), the result is converted to a
// disjunctive normal form, and that DNF is reduced by idempotence
// (duplicate conjunctions/literals are dropped) and absorption (a
// conjunction that is a superset of another disjunct is dropped). Per the
// interval lattice's laws this is a free distributive lattice with
// involution on generators, not a Boolean algebra: f∧¬f and f∨¬f are left
// unsimplified for a non-literal f, and only collapse when literal
// propagation makes them do so directly (e.g. f is itself 0 or 1).
func NormalizeFormula(f Formula) Formula {
	n := toNNF(f, false)
	d := toDNF(n)
	d = reduceDNF(d)
	return fromDNF(d)
}

func toNNF(f Formula, neg bool) Formula {
	switch n := f.(type) {
	case FZero:
		if neg {
			return FOne{}
		}
		return FZero{}
	case FOne:
		if neg {
			return FZero{}
		}
		return FOne{}
	case *FVar:
		if neg {
			return &FNot{Arg: n}
		}
		return n
	case *FAnd:
		l, r := toNNF(n.L, neg), toNNF(n.R, neg)
		if neg {
			return &FOr{L: l, R: r}
		}
		return &FAnd{L: l, R: r}
	case *FOr:
		l, r := toNNF(n.L, neg), toNNF(n.R, neg)
		if neg {
			return &FAnd{L: l, R: r}
		}
		return &FOr{L: l, R: r}
	case *FNot:
		return toNNF(n.Arg, !neg)
	default:
		panic("term: unknown formula shape")
	}
}

// toDNF converts a negation-normal-form formula (negations appear only
// directly on an FVar) into a dnf by distributing ∧ over ∨.
func toDNF(f Formula) dnf {
	switch n := f.(type) {
	case FZero:
		return dnf{}
	case FOne:
		return dnf{conj{}}
	case *FVar:
		return dnf{conj{{v: n.Var, neg: false}}}
	case *FNot:
		v, ok := n.Arg.(*FVar)
		if !ok {
			panic("term: formula not in negation normal form")
		}
		return dnf{conj{{v: v.Var, neg: true}}}
	case *FAnd:
		return crossProduct(toDNF(n.L), toDNF(n.R))
	case *FOr:
		return append(toDNF(n.L), toDNF(n.R)...)
	default:
		panic("term: unknown formula shape")
	}
}

func crossProduct(a, b dnf) dnf {
	if len(a) == 0 || len(b) == 0 {
		return dnf{}
	}
	out := make(dnf, 0, len(a)*len(b))
	for _, ca := range a {
		for _, cb := range b {
			out = append(out, unionConj(ca, cb))
		}
	}
	return out
}

func unionConj(a, b conj) conj {
	merged := make(conj, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].less(merged[j]) })
	out := merged[:0]
	for i, l := range merged {
		if i > 0 && out[len(out)-1] == l {
			continue
		}
		out = append(out, l)
	}
	return out
}

// reduceDNF dedupes conjunctions and drops any conjunction that is a
// (non-strict) superset of another, realising idempotence and absorption.
// If the empty (always-true) conjunction is present, every other disjunct
// is absorbed by it.
func reduceDNF(d dnf) dnf {
	sort.Slice(d, func(i, j int) bool { return len(d[i]) < len(d[j]) })

	var out dnf
	for _, c := range d {
		if len(c) == 0 {
			return dnf{conj{}}
		}
		subsumed := false
		for _, kept := range out {
			if isSubset(kept, c) {
				subsumed = true
				break
			}
		}
		if !subsumed && !containsConj(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func isSubset(small, big conj) bool {
	for _, l := range small {
		if !containsLit(big, l) {
			return false
		}
	}
	return true
}

func containsLit(c conj, l literal) bool {
	for _, x := range c {
		if x == l {
			return true
		}
	}
	return false
}

func containsConj(d dnf, c conj) bool {
	for _, x := range d {
		if len(x) == len(c) && isSubset(x, c) {
			return true
		}
	}
	return false
}

func fromDNF(d dnf) Formula {
	if len(d) == 0 {
		return FZero{}
	}

	disjuncts := make([]Formula, len(d))
	for i, c := range d {
		disjuncts[i] = fromConj(c)
	}

	f := disjuncts[0]
	for _, next := range disjuncts[1:] {
		f = &FOr{L: f, R: next}
	}
	return f
}

func fromConj(c conj) Formula {
	if len(c) == 0 {
		return FOne{}
	}

	var f Formula = literalFormula(c[0])
	for _, l := range c[1:] {
		f = &FAnd{L: f, R: literalFormula(l)}
	}
	return f
}

func literalFormula(l literal) Formula {
	if l.neg {
		return &FNot{Arg: &FVar{Var: l.v}}
	}
	return &FVar{Var: l.v}
}

// IsTrue determines whether f normalizes to Const(1), i.e. the total face.
func IsTrue(f Formula) bool {
	n := NormalizeFormula(f)
	_, ok := n.(FOne)
	return ok
}

// IsFalse determines whether f normalizes to Const(0).
func IsFalse(f Formula) bool {
	n := NormalizeFormula(f)
	_, ok := n.(FZero)
	return ok
}

func applyFormula(s Subst, f Formula) Formula {
	switch n := f.(type) {
	case FZero:
		return n
	case FOne:
		return n
	case *FVar:
		if repl, ok := s.Lookup(n.Var); ok {
			if rf, ok := repl.(Formula); ok {
				return rf
			}
			panic("term: substituting non-formula term into interval position")
		}
		return n
	case *FAnd:
		return &FAnd{L: applyFormula(s, n.L), R: applyFormula(s, n.R)}
	case *FOr:
		return &FOr{L: applyFormula(s, n.L), R: applyFormula(s, n.R)}
	case *FNot:
		return &FNot{Arg: applyFormula(s, n.Arg)}
	default:
		panic("term: unknown formula shape")
	}
}
