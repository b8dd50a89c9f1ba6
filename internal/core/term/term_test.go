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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Beta(t *testing.T) {
	// S1: App(Lam(x, Ref(x)), Ref(y)) -> Ref(y)
	x := Fresh("x")
	y := Fresh("y")
	in := &App{
		Fn:  &Lam{Param: x, Body: &Ref{Var: x}},
		Arg: &Ref{Var: y},
	}

	out := Normalize(in)

	ref, ok := out.(*Ref)
	assert.True(t, ok, "expected a Ref, got %T", out)
	assert.Same(t, y, ref.Var)
}

func TestNormalize_NestedBeta(t *testing.T) {
	// S2: App(App(Lam(x, Lam(y, Ref(x))), Ref(a)), Ref(b)) -> Ref(a)
	x := Fresh("x")
	y := Fresh("y")
	a := Fresh("a")
	b := Fresh("b")

	in := &App{
		Fn: &App{
			Fn:  &Lam{Param: x, Body: &Lam{Param: y, Body: &Ref{Var: x}}},
			Arg: &Ref{Var: a},
		},
		Arg: &Ref{Var: b},
	}

	out := Normalize(in)

	ref, ok := out.(*Ref)
	assert.True(t, ok, "expected a Ref, got %T", out)
	assert.Same(t, a, ref.Var)
}

func TestNormalize_CoeIdentity(t *testing.T) {
	// S3: Coe(restr=Const(1), type=Lam(i, U)) -> Lam(A, Ref(A))
	i := Fresh("i")
	in := &Coe{
		Restr: FOne{},
		Type:  &Lam{Param: i, Body: Universe{}},
	}

	out := Normalize(in)

	lam, ok := out.(*Lam)
	assert.True(t, ok, "expected a Lam, got %T", out)
	ref, ok := lam.Body.(*Ref)
	assert.True(t, ok, "expected body to be a Ref, got %T", lam.Body)
	assert.Same(t, lam.Param, ref.Var)
}

func TestNormalize_Idempotent(t *testing.T) {
	x := Fresh("x")
	y := Fresh("y")
	a := Fresh("a")

	cases := map[string]Term{
		"beta": &App{Fn: &Lam{Param: x, Body: &Ref{Var: x}}, Arg: &Ref{Var: y}},
		"stuck app": &App{
			Fn:  &Ref{Var: a},
			Arg: &Ref{Var: y},
		},
		"formula": &FAnd{L: &FOr{L: &FVar{Var: x}, R: &FVar{Var: x}}, R: &FNot{Arg: &FNot{Arg: &FVar{Var: y}}}},
		"pi":      &Pi{Param: Param{Name: x, Type: Universe{}}, Cod: &Ref{Var: x}},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			once := Normalize(in)
			twice := Normalize(once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestNormalizeFormula_Involution(t *testing.T) {
	x := Fresh("x")

	notNot := NormalizeFormula(&FNot{Arg: &FNot{Arg: &FVar{Var: x}}})
	assert.Equal(t, &FVar{Var: x}, notNot)
}

func TestNormalizeFormula_Idempotent(t *testing.T) {
	x := Fresh("x")

	f := NormalizeFormula(&FAnd{L: &FVar{Var: x}, R: &FVar{Var: x}})
	assert.Equal(t, &FVar{Var: x}, f)
}

func TestNormalizeFormula_ComplementOnlyForLiterals(t *testing.T) {
	// f ∨ ¬f only simplifies to ⊤ when both sides are literal endpoints,
	// not for an arbitrary generator.
	literalOr := NormalizeFormula(&FOr{L: FOne{}, R: &FNot{Arg: FOne{}}})
	assert.Equal(t, FOne{}, literalOr)

	x := Fresh("x")
	genOr := NormalizeFormula(&FOr{L: &FVar{Var: x}, R: &FNot{Arg: &FVar{Var: x}}})
	_, isTrue := genOr.(FOne)
	assert.False(t, isTrue, "generator ∨ ¬generator must not collapse to ⊤")
}

func TestNormalizeFormula_Idempotence_Property(t *testing.T) {
	x, y, z := Fresh("x"), Fresh("y"), Fresh("z")

	formulas := []Formula{
		&FAnd{L: &FVar{Var: x}, R: &FOr{L: &FVar{Var: y}, R: &FNot{Arg: &FVar{Var: z}}}},
		&FOr{L: &FNot{Arg: &FVar{Var: x}}, R: &FAnd{L: &FVar{Var: y}, R: &FVar{Var: y}}},
		FZero{},
		FOne{},
	}

	for _, f := range formulas {
		once := NormalizeFormula(f)
		twice := NormalizeFormula(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalize_ProjOfConstructor(t *testing.T) {
	a := Fresh("a")
	b := Fresh("b")

	pair := &Con{Name: "tuple", Args: []Term{&Ref{Var: a}, &Ref{Var: b}}}

	out0 := Normalize(&Proj{Pair: pair, Index: 0})
	out1 := Normalize(&Proj{Pair: pair, Index: 1})

	ref0, ok := out0.(*Ref)
	assert.True(t, ok)
	assert.Same(t, a, ref0.Var)

	ref1, ok := out1.(*Ref)
	assert.True(t, ok)
	assert.Same(t, b, ref1.Var)
}

func TestNormalize_MatchFirstClauseWins(t *testing.T) {
	a := Fresh("a")
	v := Fresh("v")

	scrut := &Con{Name: "some", Args: []Term{&Ref{Var: a}}}

	m := &Match{
		Scrutinees: []Term{scrut},
		Clauses: []Clause{
			{Patterns: []Pattern{PCon{Name: "none", Args: nil}}, Body: &Ref{Var: a}},
			{Patterns: []Pattern{PCon{Name: "some", Args: []Pattern{PVar{Var: v}}}}, Body: &Ref{Var: v}},
			{Patterns: []Pattern{PWild{}}, Body: &Ref{Var: a}},
		},
	}

	out := Normalize(m)

	ref, ok := out.(*Ref)
	assert.True(t, ok, "expected a Ref, got %T", out)
	assert.Same(t, a, ref.Var)
}

func TestNormalize_MatchStuckScrutinee(t *testing.T) {
	s := Fresh("s")
	v := Fresh("v")

	m := &Match{
		Scrutinees: []Term{&Ref{Var: s}},
		Clauses: []Clause{
			{Patterns: []Pattern{PCon{Name: "some", Args: []Pattern{PVar{Var: v}}}}, Body: &Ref{Var: v}},
		},
	}

	out := Normalize(m)

	_, stillMatch := out.(*Match)
	assert.True(t, stillMatch, "a stuck scrutinee must leave Match in place")
}

func TestFlatten_SplitSingleTotalFaceIsConst(t *testing.T) {
	a := Fresh("a")

	split := Split{Clauses: []FaceClause{{Face: FOne{}, Term: &Ref{Var: a}}}}

	flat := Flatten(split)
	c, ok := flat.(Const)
	assert.True(t, ok, "expected Const, got %T", flat)
	assert.Same(t, a, c.Term.(*Ref).Var)
}

func TestFlatten_NestedPartialMergesConst(t *testing.T) {
	a := Fresh("a")

	inner := &Partial{Elem: Const{Term: &Ref{Var: a}}, RhsType: Universe{}}
	outer := Const{Term: inner}

	flat := Flatten(outer)
	c, ok := flat.(Const)
	assert.True(t, ok, "expected Const, got %T", flat)
	assert.Same(t, a, c.Term.(*Ref).Var)
}

func TestNormalize_PartialTyCollapsesOnTotalFace(t *testing.T) {
	pt := &PartialTy{Restr: FOne{}, Type: Universe{}}

	out := Normalize(pt)

	_, ok := out.(Universe)
	assert.True(t, ok, "expected the underlying type with no wrapper, got %T", out)
}
