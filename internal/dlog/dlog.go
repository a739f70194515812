/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package dlog recovers discrete logarithms of group elements whose
// exponents are known to be small, either in the multiplicative group
// of integers modulo a prime or in the BN256 pairing target group.
package dlog

import (
	"fmt"
	"math/big"

	"github.com/fentec-project/bn256"
)

// ErrNotFound is reported when the discrete logarithm does not lie
// within the configured search bound.
var ErrNotFound = fmt.Errorf("failed to find the discrete logarithm within bound")

// MaxBound caps the search interval for discrete logarithms so a
// misconfigured bound cannot exhaust time and memory. Calculators
// configured with a larger bound are clamped to it.
var MaxBound = big.NewInt(15000000000)

// Calc builds discrete logarithm calculators for the supported
// groups.
type Calc struct{}

// NewCalc returns a builder of discrete logarithm calculators.
func NewCalc() *Calc {
	return &Calc{}
}

// CalcZp computes discrete logarithms in the group Z_p^*.
type CalcZp struct {
	p     *big.Int
	bound *big.Int
	m     *big.Int
	neg   bool
}

// InZp configures calculation modulo prime p in a subgroup of the
// given order. A nil order stands for the full group order p-1, in
// which case p is checked for primality.
func (*Calc) InZp(p, order *big.Int) (*CalcZp, error) {
	if p == nil {
		return nil, fmt.Errorf("group modulus p cannot be nil")
	}

	bound := order
	if bound == nil {
		if !p.ProbablyPrime(20) {
			return nil, fmt.Errorf("group modulus p must be prime")
		}
		bound = new(big.Int).Sub(p, big.NewInt(1))
	}

	return &CalcZp{
		p:     p,
		bound: bound,
		m:     sqrtCeil(bound),
	}, nil
}

// WithBound limits the search so that every exponent in [0, bound] (or
// [-bound, bound] combined with WithNeg) is found; exponents somewhat
// past bound may also be found. A nil bound leaves the calculator
// unchanged.
func (c *CalcZp) WithBound(bound *big.Int) *CalcZp {
	if bound == nil {
		return c
	}

	return &CalcZp{
		p:     c.p,
		bound: bound,
		m:     sqrtCeil(bound),
		neg:   c.neg,
	}
}

// WithNeg extends the search to negative exponents.
func (c *CalcZp) WithNeg() *CalcZp {
	return &CalcZp{
		p:     c.p,
		bound: c.bound,
		m:     c.m,
		neg:   true,
	}
}

// BabyStepGiantStep finds x with h = g^x mod p. When the calculator
// was configured with WithNeg, two searches run concurrently, one on g
// and one on its inverse, and the sign of the result is set by which
// of them succeeded.
func (c *CalcZp) BabyStepGiantStep(h, g *big.Int) (*big.Int, error) {
	resChan := make(chan *big.Int)
	errChan := make(chan error)

	go c.babyStepGiantStep(h, g, resChan, errChan)
	if c.neg {
		gInv := new(big.Int).ModInverse(g, c.p)
		go c.babyStepGiantStep(h, gInv, resChan, errChan)
	}

	res := <-resChan
	err := <-errChan
	// one search can exhaust its range before the other succeeds
	if c.neg && err != nil {
		res = <-resChan
		err = <-errChan
	}
	if err != nil {
		return nil, err
	}

	// the result is negative when the inverted-generator search found it
	if c.neg && new(big.Int).Exp(g, res, c.p).Cmp(h) != 0 {
		res.Neg(res)
	}

	return res, nil
}

// babyStepGiantStep searches for x with h = g^x mod p, writing the
// result (or an error) to the given channels. The table of baby steps
// is grown in powers of two so that small exponents are found quickly
// without paying for the full bound.
func (c *CalcZp) babyStepGiantStep(h, g *big.Int, resChan chan *big.Int, errChan chan error) {
	one := big.NewInt(1)
	two := big.NewInt(2)

	// big.Int is not comparable, so table keys are raw bytes
	T := make(map[string]*big.Int)

	x := big.NewInt(1)
	y := new(big.Int).Set(h)
	z := new(big.Int).ModInverse(g, c.p)
	z.Exp(z, two, c.p)

	T[string(x.Bytes())] = big.NewInt(0)
	x.Mod(x.Mul(x, g), c.p)

	j := big.NewInt(0)
	giantStep := new(big.Int)
	searched := new(big.Int)
	for i := int64(0); i < int64(c.m.BitLen()); i++ {
		giantStep.Exp(two, big.NewInt(i+1), nil)
		if giantStep.Cmp(c.m) > 0 {
			giantStep.Set(c.m)
			z.ModInverse(g, c.p)
			z.Exp(z, c.m, c.p)
		}

		// extend the baby-step table to the current giant step
		for k := new(big.Int).Exp(two, big.NewInt(i), nil); k.Cmp(giantStep) < 0; k.Add(k, one) {
			T[string(x.Bytes())] = new(big.Int).Set(k)
			x.Mod(x.Mul(x, g), c.p)
		}

		// take giant steps through the doubled search interval
		searched.Exp(two, big.NewInt(2*(i+1)), nil)
		for ; j.Cmp(searched) < 0; j.Add(j, giantStep) {
			if e, ok := T[string(y.Bytes())]; ok {
				resChan <- new(big.Int).Add(j, e)
				errChan <- nil
				return
			}
			y.Mod(y.Mul(y, z), c.p)
		}
		z.Mul(z, z)
		z.Mod(z, c.p)
	}

	resChan <- nil
	errChan <- ErrNotFound
}

// CalcBN256 computes discrete logarithms in the BN256 target group.
type CalcBN256 struct {
	bound *big.Int
	m     *big.Int
	neg   bool
	// Precomp caches baby steps between calls of BabyStepGiantStepStd
	Precomp map[string]*big.Int
}

// InBN256 configures calculation in bn256.GT with the maximal allowed
// bound.
func (*Calc) InBN256() *CalcBN256 {
	return &CalcBN256{
		bound: MaxBound,
		m:     sqrtCeil(MaxBound),
	}
}

// WithBound restricts the search bound; bounds beyond MaxBound are
// clamped.
func (c *CalcBN256) WithBound(bound *big.Int) *CalcBN256 {
	if bound == nil || bound.Cmp(MaxBound) >= 0 {
		return c
	}

	return &CalcBN256{
		bound:   bound,
		m:       sqrtCeil(bound),
		neg:     c.neg,
		Precomp: c.Precomp,
	}
}

// WithNeg extends the search to negative exponents.
func (c *CalcBN256) WithNeg() *CalcBN256 {
	return &CalcBN256{
		bound:   c.bound,
		m:       c.m,
		neg:     true,
		Precomp: c.Precomp,
	}
}

// precompute fills the baby-step table for generator g.
func (c *CalcBN256) precompute(g *bn256.GT) {
	one := big.NewInt(1)

	T := make(map[string]*big.Int)
	x := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i := big.NewInt(0); i.Cmp(c.m) < 0; i.Add(i, one) {
		T[x.String()] = new(big.Int).Set(i)
		x = new(bn256.GT).Add(x, g)
	}

	c.Precomp = T
}

// BabyStepGiantStepStd finds x with h = g^x in bn256.GT (operations
// written multiplicatively) using the classical two-phase method with
// a reusable precomputed table of baby steps.
func (c *CalcBN256) BabyStepGiantStepStd(h, g *bn256.GT) (*big.Int, error) {
	one := big.NewInt(1)

	if c.Precomp == nil {
		c.precompute(g)
	}
	// a table carried over from a previous calculator determines the
	// effective giant step
	precompLen := big.NewInt(int64(len(c.Precomp)))
	if c.m.Cmp(precompLen) != 0 {
		c.m.Set(precompLen)
	}

	z := new(bn256.GT).Neg(new(bn256.GT).ScalarMult(g, c.m))
	x := new(bn256.GT).Set(h)
	for i := big.NewInt(0); i.Cmp(c.m) < 0; i.Add(i, one) {
		if e, ok := c.Precomp[x.String()]; ok {
			return new(big.Int).Add(new(big.Int).Mul(i, c.m), e), nil
		}
		x.Add(x, z)
	}

	return nil, ErrNotFound
}

// BabyStepGiantStep finds x with h = g^x in bn256.GT. When the
// calculator was configured with WithNeg, two searches run
// concurrently, one on g and one on its inverse.
func (c *CalcBN256) BabyStepGiantStep(h, g *bn256.GT) (*big.Int, error) {
	resChan := make(chan *big.Int)
	errChan := make(chan error)

	go c.babyStepGiantStep(h, g, resChan, errChan)
	if c.neg {
		gInv := new(bn256.GT).Neg(g)
		go c.babyStepGiantStep(h, gInv, resChan, errChan)
	}

	res := <-resChan
	err := <-errChan
	if c.neg && err != nil {
		res = <-resChan
		err = <-errChan
	}
	if err != nil {
		return nil, err
	}

	if c.neg && h.String() != new(bn256.GT).ScalarMult(g, res).String() {
		res.Neg(res)
	}

	return res, nil
}

// babyStepGiantStep searches for x with h = g^x in bn256.GT, growing
// the baby-step table in powers of two as in the Z_p variant.
func (c *CalcBN256) babyStepGiantStep(h, g *bn256.GT, resChan chan *big.Int, errChan chan error) {
	one := big.NewInt(1)
	two := big.NewInt(2)

	T := make(map[string]*big.Int)

	x := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	y := new(bn256.GT).Set(h)
	z := new(bn256.GT).Neg(g)
	z.ScalarMult(z, two)

	T[x.String()] = big.NewInt(0)
	x.Add(x, g)

	j := big.NewInt(0)
	giantStep := new(big.Int)
	searched := new(big.Int)
	for i := int64(0); i < int64(c.m.BitLen()); i++ {
		giantStep.Exp(two, big.NewInt(i+1), nil)
		if giantStep.Cmp(c.m) > 0 {
			giantStep.Set(c.m)
			z.Neg(g)
			z.ScalarMult(z, c.m)
		}

		for k := new(big.Int).Exp(two, big.NewInt(i), nil); k.Cmp(giantStep) < 0; k.Add(k, one) {
			T[x.String()] = new(big.Int).Set(k)
			x.Add(x, g)
		}

		searched.Exp(two, big.NewInt(2*(i+1)), nil)
		for ; j.Cmp(searched) < 0; j.Add(j, giantStep) {
			if e, ok := T[y.String()]; ok {
				resChan <- new(big.Int).Add(j, e)
				errChan <- nil
				return
			}
			y.Add(y, z)
		}
		z.Add(z, z)
	}

	resChan <- nil
	errChan <- ErrNotFound
}

// sqrtCeil returns ceil(sqrt(x)).
func sqrtCeil(x *big.Int) *big.Int {
	m := new(big.Int).Sqrt(x)

	return m.Add(m, big.NewInt(1))
}
