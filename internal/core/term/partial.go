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

// PartialElem is a term defined only on a face: either a single total
// element (Const) or a set of per-face clauses (Split).
type PartialElem interface {
	isPartialElem()
}

// Const is a partial element total on the whole cube.
type Const struct {
	Term Term
}

// FaceClause is one arm of a Split: the face on which Term applies.
type FaceClause struct {
	Face Restriction
	Term Term
}

// Split is a partial element given by a set of per-face clauses, expected
// to cover some restriction.
type Split struct {
	Clauses []FaceClause
}

func (Const) isPartialElem() {}
func (Split) isPartialElem() {}

// Flatten normalizes a partial element: a Split whose only clause covers
// the total face (Const(1)) collapses to Const; a Split clause whose own
// term is itself a partial element (Partial<Partial<T>>) has its nested
// Const merged into this level. A Split that still has more than one
// clause, or whose single clause is not total, is returned unchanged
// (modulo recursively flattened clause bodies).
func Flatten(p PartialElem) PartialElem {
	switch e := p.(type) {
	case Const:
		return Const{Term: unwrapConst(e.Term)}
	case Split:
		clauses := make([]FaceClause, 0, len(e.Clauses))
		for _, c := range e.Clauses {
			clauses = append(clauses, FaceClause{Face: c.Face, Term: unwrapConst(c.Term)})
		}
		if len(clauses) == 1 && IsTrue(clauses[0].Face) {
			return Const{Term: clauses[0].Term}
		}
		return Split{Clauses: clauses}
	default:
		return p
	}
}

// unwrapConst merges a nested Partial(Const(u), _) term into u directly,
// implementing the Partial<Partial<T>> flattening law. Any other term is
// returned unchanged.
func unwrapConst(t Term) Term {
	if p, ok := t.(*Partial); ok {
		if c, ok := Flatten(p.Elem).(Const); ok {
			return c.Term
		}
	}
	return t
}

// AsConst reports whether a (flattened) partial element is total, and if
// so returns its term.
func AsConst(p PartialElem) (Term, bool) {
	if c, ok := Flatten(p).(Const); ok {
		return c.Term, true
	}
	return nil, false
}
