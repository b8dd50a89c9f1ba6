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

// Normalize reduces t to weak-head-normal form under the β- and cubical-β
// rules: the result is definitionally equal to t and admits no further
// reduction at any position the post-rule table covers. Normalize performs
// no I/O and emits no diagnostics; it is safe to call concurrently on
// disjoint term inputs, and is expected to terminate on well-typed input
// only (ill-typed input may diverge, exactly as the theory permits).
//
// The traversal is bottom-up: each case of the one type switch below
// normalizes that shape's subterms first, then applies the shape's rule to
// the result. This is the "tag-dispatched rewriting" design: one dispatch
// over the variant tag, rather than a method per shape.
func Normalize(t Term) Term {
	switch n := t.(type) {
	case *Ref:
		return n
	case *Lam:
		return &Lam{Param: n.Param, Body: Normalize(n.Body)}
	case *App:
		return normalizeApp(n)
	case *Pi:
		return &Pi{Param: Param{Name: n.Param.Name, Type: Normalize(n.Param.Type)}, Cod: Normalize(n.Cod)}
	case *Sigma:
		params := make([]Param, len(n.Params))
		for i, p := range n.Params {
			params[i] = Param{Name: p.Name, Type: Normalize(p.Type)}
		}
		return &Sigma{Params: params}
	case *Proj:
		return normalizeProj(n)
	case *Con:
		args := make([]Term, len(n.Args))
		for i, a := range n.Args {
			args[i] = Normalize(a)
		}
		return &Con{Name: n.Name, Args: args}
	case *Match:
		return normalizeMatch(n)
	case *MetaPat:
		if n.Ref.Solved() {
			return Normalize(n.Ref.Solution())
		}
		return n
	case *PLam:
		return &PLam{Params: n.Params, Body: Normalize(n.Body)}
	case *PApp:
		return normalizePApp(n)
	case Formula:
		return NormalizeFormula(n)
	case *Partial:
		return &Partial{Elem: normalizeElem(n.Elem), RhsType: Normalize(n.RhsType)}
	case *PartialTy:
		return normalizePartialTy(n)
	case *Coe:
		return normalizeCoe(n)
	case *Erased:
		return &Erased{Type: Normalize(n.Type)}
	case *PathTy:
		return &PathTy{A: Normalize(n.A), Lhs: Normalize(n.Lhs), Rhs: Normalize(n.Rhs)}
	case Universe:
		return n
	default:
		return t
	}
}

// normalizeApp implements: if f reduces to Lam(p, b), return
// normalize(b[p ↦ a]); otherwise leave as App. The single-shot β attempt is
// re-normalized only because substitution can expose a further redex at the
// root (e.g. nested application, S2); the recursion bottoms out once no
// shape matches, bounded by the number of nested redexes in the input.
func normalizeApp(n *App) Term {
	fn := Normalize(n.Fn)
	arg := Normalize(n.Arg)

	if lam, ok := fn.(*Lam); ok {
		return Normalize(Apply(Single(lam.Param, arg), lam.Body))
	}

	return &App{Fn: fn, Arg: arg}
}

// normalizeProj implements: if pair reduces to a constructor of a pair,
// yield the i-th component; otherwise leave in place.
func normalizeProj(n *Proj) Term {
	pair := Normalize(n.Pair)

	if con, ok := pair.(*Con); ok && n.Index >= 0 && n.Index < len(con.Args) {
		return Normalize(con.Args[n.Index])
	}

	return &Proj{Pair: pair, Index: n.Index}
}

// normalizeMatch implements: if every scrutinee matches some single
// clause's pattern, yield that clause's body under the pattern
// substitution; otherwise leave the Match intact. Clause order is
// significant, and a stuck (non-head-constructor) scrutinee blocks
// matching entirely: no later clause is tried.
func normalizeMatch(n *Match) Term {
	scruts := make([]Term, len(n.Scrutinees))
	for i, s := range n.Scrutinees {
		scruts[i] = Normalize(s)
	}

	for _, clause := range n.Clauses {
		if len(clause.Patterns) != len(scruts) {
			continue
		}

		s := NewSubst()
		matched := true

		for i, pat := range clause.Patterns {
			ok, stuck, next := matchPattern(pat, scruts[i], s)
			if stuck {
				return &Match{Scrutinees: scruts, Clauses: n.Clauses}
			}
			if !ok {
				matched = false
				break
			}
			s = next
		}

		if matched {
			return Normalize(Apply(s, clause.Body))
		}
	}

	return &Match{Scrutinees: scruts, Clauses: n.Clauses}
}

// matchPattern attempts to match pat against a normalized scrutinee,
// extending s with any bindings the pattern introduces. A scrutinee that is
// not a head constructor (and the pattern requires one) is stuck: it
// neither matches nor definitely fails, so the caller must not treat it as
// a successful match of some later clause either — matchPattern reports it
// as stuck, and normalizeMatch then leaves the Match in place.
func matchPattern(pat Pattern, scrut Term, s Subst) (ok bool, stuck bool, next Subst) {
	switch p := pat.(type) {
	case PWild:
		return true, false, s
	case PVar:
		return true, false, s.Extend(p.Var, scrut)
	case PCon:
		con, isCon := scrut.(*Con)
		if !isCon {
			return false, true, s
		}
		if con.Name != p.Name || len(con.Args) != len(p.Args) {
			return false, false, s
		}
		for i, sub := range p.Args {
			ok, stuck, next := matchPattern(sub, con.Args[i], s)
			if !ok {
				return false, stuck, s
			}
			s = next
		}
		return true, false, s
	default:
		return false, false, s
	}
}

// normalizePApp implements the three cases of PApp in order: an erased
// function of path type stays erased at the substituted endpoint type; a
// literal path abstraction β-reduces; otherwise the accompanying partial
// element is flattened, and either its total value is returned or the
// PApp is rebuilt around the flattened (still-Split) partial.
func normalizePApp(n *PApp) Term {
	fn := Normalize(n.Fn)
	args := make([]Term, len(n.Args))
	for i, a := range n.Args {
		args[i] = Normalize(a)
	}

	if _, ok := fn.(*Erased); ok {
		s := substFor(n.Cube.Interval, args)
		return &Erased{Type: Normalize(Apply(s, n.Cube.Type))}
	}

	if plam, ok := fn.(*PLam); ok && len(plam.Params) == len(args) {
		s := substFor(plam.Params, args)
		return Normalize(Apply(s, plam.Body))
	}

	flat := normalizeElem(n.Cube.Elem)
	if u, ok := AsConst(flat); ok {
		return Normalize(u)
	}

	return &PApp{Fn: fn, Args: args, Cube: Cube{Interval: n.Cube.Interval, Type: n.Cube.Type, Elem: flat}}
}

func substFor(vars []*Var, terms []Term) Subst {
	s := NewSubst()
	for i, v := range vars {
		if i < len(terms) {
			s = s.Extend(v, terms[i])
		}
	}
	return s
}

func normalizeElem(p PartialElem) PartialElem {
	switch e := p.(type) {
	case Const:
		return Flatten(Const{Term: Normalize(e.Term)})
	case Split:
		clauses := make([]FaceClause, len(e.Clauses))
		for i, c := range e.Clauses {
			clauses[i] = FaceClause{Face: NormalizeFormula(c.Face), Term: Normalize(c.Term)}
		}
		return Flatten(Split{Clauses: clauses})
	default:
		return p
	}
}

// normalizePartialTy implements: normalize the face restriction; if it
// reduces to the total face, the result is the underlying type with no
// wrapper.
func normalizePartialTy(n *PartialTy) Term {
	restr := NormalizeFormula(n.Restr)
	typ := Normalize(n.Type)

	if IsTrue(restr) {
		return typ
	}

	return &PartialTy{Restr: restr, Type: typ}
}

// normalizeCoe implements the four-way dispatch on Coe's codomain shape.
// Restr is normalized first: when it is the total face the coercion is the
// identity regardless of what it transports along. Otherwise the
// normalizer peeks at the family's body (Type applied at its own bound
// interval variable, without consuming it) and dispatches on that shape:
// a path type is left irreducible, a Pi or Sigma family expands to the
// corresponding componentwise coercion, a universe family is the identity
// on types, and anything else (an opaque or stuck family) is left as an
// unreduced Coe.
func normalizeCoe(n *Coe) Term {
	restr := NormalizeFormula(n.Restr)
	typ := Normalize(n.Type)

	if IsTrue(restr) {
		a := Fresh("a")
		return &Lam{Param: a, Body: &Ref{Var: a}}
	}

	i, body := asFamily(typ)
	shape := Normalize(body)

	switch s := shape.(type) {
	case *Pi:
		return coePi(restr, i, s)
	case *Sigma:
		return coeSigma(restr, i, s)
	case Universe:
		a := Fresh("A")
		return &Lam{Param: a, Body: &Ref{Var: a}}
	default:
		return &Coe{Restr: restr, Type: typ}
	}
}

// asFamily reports the interval variable a type family abstracts over and
// its body, when Type is literally a one-parameter PLam. A Type that is not
// itself indexed by an interval variable denotes a constant family; asFamily
// then returns a nil variable and Type unchanged.
func asFamily(t Term) (*Var, Term) {
	if pl, ok := t.(*PLam); ok && len(pl.Params) == 1 {
		return pl.Params[0], pl.Body
	}
	return nil, t
}

// coePi implements the Π-coercion rule: transporting a function along a
// family of Pi types produces a function that, given an argument, coerces
// that argument backward along the domain family (so it can be fed to the
// original function at its original endpoint) and coerces the result
// forward along the codomain family, which itself depends on the
// backward-coerced argument.
func coePi(restr Restriction, i *Var, pi *Pi) Term {
	if i == nil {
		i = Fresh("i")
	}
	f := Fresh("f")
	a := Fresh("a")

	domFamily := &PLam{Params: []*Var{i}, Body: pi.Param.Type}
	argBack := &App{Fn: &Coe{Restr: &FNot{Arg: restr}, Type: domFamily}, Arg: &Ref{Var: a}}

	codFamily := &PLam{Params: []*Var{i}, Body: Apply(Single(pi.Param.Name, argBack), pi.Cod)}
	applied := &App{Fn: &Ref{Var: f}, Arg: argBack}

	body := &App{Fn: &Coe{Restr: restr, Type: codFamily}, Arg: applied}
	return &Lam{Param: f, Body: &Lam{Param: a, Body: body}}
}

// coeSigma implements the Σ-coercion rule: transporting a pair along a
// family of Sigma types coerces each component in turn, substituting the
// already-coerced earlier components into the types of the later ones
// (each later component's domain may depend on the earlier ones).
func coeSigma(restr Restriction, i *Var, sig *Sigma) Term {
	if i == nil {
		i = Fresh("i")
	}
	p := Fresh("p")

	args := make([]Term, len(sig.Params))
	s := NewSubst()

	for idx, param := range sig.Params {
		compFamily := &PLam{Params: []*Var{i}, Body: Apply(s, param.Type)}
		proj := &Proj{Pair: &Ref{Var: p}, Index: idx}
		coerced := &App{Fn: &Coe{Restr: restr, Type: compFamily}, Arg: proj}
		args[idx] = coerced
		s = s.Extend(param.Name, coerced)
	}

	return &Lam{Param: p, Body: &Con{Name: "tuple", Args: args}}
}
